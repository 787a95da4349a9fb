package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	database "hrportal_backend/internals/databases"
	"hrportal_backend/internals/helpers/secure"
)

func main() {
	root := &cobra.Command{
		Use:           "hrportal",
		Short:         "HR portal backend: biodata intake, employees and training",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		createSuperuserCmd(),
		syncPermissionsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// bootstrap loads env, logging, field encryption, the role table and the DB.
// The returned func flushes the audit logger and closes the pool.
func bootstrap() (func(), error) {
	configs.LoadEnv()

	audit, err := configs.InitAuditLogger(false)
	if err != nil {
		return nil, fmt.Errorf("init audit logger: %w", err)
	}
	if err := secure.LoadKeyFromEnv(); err != nil {
		return nil, err
	}
	if path := configs.GetEnv("ROLE_PERMISSIONS_FILE"); path != "" {
		if err := constants.LoadRolePermissionsFile(path); err != nil {
			return nil, err
		}
		log.Printf("✅ Role permissions loaded from %s", path)
	}

	database.ConnectDB()
	return func() {
		_ = audit.Sync()
		database.Close()
	}, nil
}

func logAudit(msg string, fields ...zap.Field) {
	configs.Audit().Info(msg, fields...)
}
