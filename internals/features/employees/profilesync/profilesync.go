// Package profilesync copies the shared fields between an account and its
// linked biodata. Callers run it inside the same transaction as the edit.
package profilesync

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	userModel "hrportal_backend/internals/features/users/user/model"
)

// Field names accepted by the two push functions.
const (
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldDepartment = "department"
)

// SplitFullName maps "A B C D" to first "A", middle "B C", last "D".
func SplitFullName(full string) (first, middle, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], " "), parts[len(parts)-1]
	}
}

// PushUserToBiodata writes the given user fields onto the biodata linked to u.
// It reports whether a linked biodata existed.
func PushUserToBiodata(tx *gorm.DB, u *userModel.UserModel, fields ...string) (bool, error) {
	updates := map[string]any{}
	for _, f := range fields {
		switch f {
		case FieldName:
			if strings.TrimSpace(u.FullName) == "" {
				continue
			}
			first, middle, last := SplitFullName(u.FullName)
			updates["biodata_first_name"] = first
			updates["biodata_middle_name"] = middle
			updates["biodata_last_name"] = last
		case FieldPhone:
			if strings.TrimSpace(u.Phone) != "" {
				updates["biodata_contact_number"] = u.Phone
			}
		case FieldDepartment:
			updates["biodata_department"] = u.Department
		}
	}

	var b biodataModel.BioDataModel
	res := tx.Where("biodata_user_id = ?", u.ID).Limit(1).Find(&b)
	if res.Error != nil {
		return false, fmt.Errorf("load linked biodata: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if len(updates) == 0 {
		return true, nil
	}
	if err := tx.Model(&b).Updates(updates).Error; err != nil {
		return true, fmt.Errorf("sync biodata from user: %w", err)
	}
	return true, nil
}

// PushBiodataToUser writes the given biodata fields onto its linked account.
// It reports whether a linked account existed.
func PushBiodataToUser(tx *gorm.DB, b *biodataModel.BioDataModel, fields ...string) (bool, error) {
	if b.UserID == nil {
		return false, nil
	}
	updates := map[string]any{}
	for _, f := range fields {
		switch f {
		case FieldName:
			if name := b.FullName(); name != "" {
				updates["full_name"] = name
			}
		case FieldPhone:
			updates["phone"] = b.ContactNumber
		case FieldDepartment:
			updates["department"] = b.Department
		}
	}
	if len(updates) == 0 {
		return true, nil
	}
	res := tx.Model(&userModel.UserModel{}).Where("id = ?", *b.UserID).Updates(updates)
	if res.Error != nil {
		return true, fmt.Errorf("sync user from biodata: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
