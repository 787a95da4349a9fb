package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	database "hrportal_backend/internals/databases"
	userService "hrportal_backend/internals/features/users/user/service"
	"hrportal_backend/internals/seeds"
	users "hrportal_backend/internals/seeds/users"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := bootstrap()
			if err != nil {
				return err
			}
			defer done()
			return database.AutoMigrateAll(database.DB)
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the initial accounts (existing emails are skipped)",
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := bootstrap()
			if err != nil {
				return err
			}
			defer done()
			return seeds.RunAllSeeds(database.DB, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", seeds.DefaultUsersFile, "JSON file with the accounts to seed")
	return cmd
}

func createSuperuserCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create a super_admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := bootstrap()
			if err != nil {
				return err
			}
			defer done()

			u, err := users.CreateSuperuser(database.DB, email, password, name)
			if err != nil {
				return err
			}
			logAudit("superuser created", zap.String("user_id", u.ID.String()), zap.String("email", u.Email))
			fmt.Printf("✅ Superuser %s created\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func syncPermissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-permissions",
		Short: "Copy the role permission table onto every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := bootstrap()
			if err != nil {
				return err
			}
			defer done()

			n, err := userService.SyncAllPermissions(database.DB)
			if err != nil {
				return err
			}
			logAudit("permissions synced", zap.Int("users", n))
			log.Printf("✅ Permissions synced for %d user(s)", n)
			return nil
		},
	}
}
