package seeds

import (
	"log"

	"gorm.io/gorm"

	users "hrportal_backend/internals/seeds/users"
)

const DefaultUsersFile = "internals/seeds/users/data_users.json"

func RunAllSeeds(db *gorm.DB, usersFile string) error {
	if usersFile == "" {
		usersFile = DefaultUsersFile
	}

	//* Users
	n, err := users.SeedUsersFromJSON(db, usersFile)
	if err != nil {
		return err
	}
	log.Printf("✅ Seeding finished, %d user(s) created", n)
	return nil
}
