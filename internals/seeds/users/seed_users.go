package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	authHelper "hrportal_backend/internals/features/users/auth/helper"
	"hrportal_backend/internals/features/users/user/model"
)

type UserSeed struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// SeedUsersFromJSON inserts the accounts listed in filePath. Existing emails
// are skipped. Returns how many users were created.
func SeedUsersFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Reading user seed file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var inputs []UserSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	created := 0
	for _, data := range inputs {
		if !constants.IsValidRole(data.Role) {
			log.Printf("⚠️ Unknown role %q for '%s', skipped.", data.Role, data.Email)
			continue
		}
		var n int64
		if err := db.Model(&model.UserModel{}).Where("email = ?", model.NormalizeEmail(data.Email)).Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			log.Printf("ℹ️ User '%s' already exists, skipped.", data.Email)
			continue
		}

		hashedPassword, err := authHelper.HashPassword(data.Password)
		if err != nil {
			log.Printf("❌ Failed to hash password for '%s': %v", data.Email, err)
			continue
		}
		u := model.UserModel{
			FullName:   strings.TrimSpace(data.FullName),
			Email:      data.Email,
			Password:   hashedPassword,
			Phone:      data.Phone,
			Department: data.Department,
		}
		u.ApplyRole(data.Role)
		if err := db.Create(&u).Error; err != nil {
			log.Printf("❌ Failed to insert user '%s': %v", data.Email, err)
			continue
		}
		log.Printf("✅ Inserted user '%s'", data.Email)
		created++
	}
	return created, nil
}

var ErrEmailTaken = errors.New("a user with this email already exists")

// CreateSuperuser creates one active super_admin account.
func CreateSuperuser(db *gorm.DB, email, password, fullName string) (*model.UserModel, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < authHelper.MinPasswordLength {
		return nil, authHelper.ErrPasswordTooShort
	}
	var n int64
	if err := db.Model(&model.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := authHelper.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.UserModel{Email: email, Password: hashed, FullName: strings.TrimSpace(fullName)}
	u.ApplyRole(constants.RoleSuperAdmin)
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}
