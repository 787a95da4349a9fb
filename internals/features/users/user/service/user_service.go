package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/profilesync"
	notifService "hrportal_backend/internals/features/notifications/service"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	authHelper "hrportal_backend/internals/features/users/auth/helper"
	authModel "hrportal_backend/internals/features/users/auth/model"
	"hrportal_backend/internals/features/users/user/dto"
	"hrportal_backend/internals/features/users/user/model"
)

var (
	ErrEmailExists  = errors.New("Email already exists.")
	ErrUserNotFound = errors.New("User not found.")
	ErrSelfDelete   = errors.New("You cannot delete your own account.")
)

// Actor is the signed-in user performing a change.
type Actor struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

func (a Actor) Display() string {
	if n := strings.TrimSpace(a.FullName); n != "" {
		return n
	}
	return a.Email
}

func LoadActor(db *gorm.DB, id uuid.UUID) (Actor, error) {
	var u model.UserModel
	if err := db.Select("id", "email", "full_name").First(&u, "id = ?", id).Error; err != nil {
		return Actor{}, err
	}
	return Actor{ID: u.ID, Email: u.Email, FullName: u.FullName}, nil
}

// CreateUser stores the account, links an approved biodata when asked and
// notifies admins. Link problems are returned as warnings, not errors.
func CreateUser(db *gorm.DB, actor Actor, req *dto.CreateUserRequest) (*model.UserModel, []string, error) {
	user := req.ToModel()
	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	var warnings []string
	err = db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.UserModel{}).Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailExists
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return err
		}

		if user.Role == constants.RoleEmployee && req.BioDataID != nil {
			w, err := linkBiodata(tx, user, *req.BioDataID)
			if err != nil {
				return err
			}
			if w != "" {
				warnings = append(warnings, w)
			}
		}

		msg := fmt.Sprintf("%s (%s) created by %s.", user.Email, constants.RoleLabel(user.Role), actor.Email)
		_, err := notifService.NotifyAdmins(tx, constants.NotifUserCreated, "New User Created", msg, "", false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	configs.Audit().Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("actor", actor.Email),
	)
	return user, warnings, nil
}

func linkBiodata(tx *gorm.DB, user *model.UserModel, rawID string) (string, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "Selected biodata not found or not approved.", nil
	}
	var bio biodataModel.BioDataModel
	res := tx.Where("biodata_id = ? AND biodata_status = ?", id, biodataModel.StatusApproved).Limit(1).Find(&bio)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "Selected biodata not found or not approved.", nil
	}
	if bio.UserID != nil {
		return "Biodata already linked to another user.", nil
	}
	if err := tx.Model(&bio).Update("biodata_user_id", user.ID).Error; err != nil {
		return "", err
	}
	return "", nil
}

// UpdateUser applies a partial edit. Permissions are always re-copied from the
// (possibly new) role, and name/phone/department changes reach the linked biodata.
func UpdateUser(db *gorm.DB, actor Actor, id uuid.UUID, req *dto.UpdateUserRequest) (*model.UserModel, error) {
	var user model.UserModel
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var synced []string
		if req.FullName != nil && *req.FullName != user.FullName {
			user.FullName = *req.FullName
			synced = append(synced, profilesync.FieldName)
		}
		if req.Phone != nil && *req.Phone != user.Phone {
			user.Phone = *req.Phone
			synced = append(synced, profilesync.FieldPhone)
		}
		if req.Department != nil && *req.Department != user.Department {
			user.Department = *req.Department
			synced = append(synced, profilesync.FieldDepartment)
		}
		role := user.Role
		if req.Role != nil {
			role = *req.Role
		}
		user.ApplyRole(role)
		if req.Status != nil {
			user.SetStatus(*req.Status)
		}

		if err := tx.Model(&user).Select("full_name", "phone", "department", "role", "permissions", "status", "is_active").
			Updates(&user).Error; err != nil {
			return err
		}
		if len(synced) > 0 {
			if _, err := profilesync.PushUserToBiodata(tx, &user, synced...); err != nil {
				return err
			}
		}

		return notifService.Create(tx, user.ID, constants.NotifUserUpdated, "Your Profile Was Updated",
			fmt.Sprintf("Your account details were updated by %s.", actor.Display()),
			configs.AppURL("/profile"))
	})
	if err != nil {
		return nil, err
	}

	configs.Audit().Info("user updated",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
		zap.String("status", user.Status),
		zap.String("actor", actor.Email),
	)
	return &user, nil
}

// DeleteUser removes the account and everything hanging off it. A linked
// biodata stays, with its user link cleared.
func DeleteUser(db *gorm.DB, actor Actor, id uuid.UUID) error {
	if id == actor.ID {
		return ErrSelfDelete
	}

	var user model.UserModel
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&biodataModel.BioDataModel{}).Where("biodata_user_id = ?", id).
			Update("biodata_user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&biodataModel.BioDataModel{}).Where("biodata_approved_by_id = ?", id).
			Update("biodata_approved_by_id", nil).Error; err != nil {
			return err
		}
		for _, table := range []string{batchModel.TableBatchTrainers, batchModel.TableBatchEmployees} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", id).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&authModel.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM notifications WHERE notification_recipient_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("User %s (%s) was deleted by %s.", user.Email, constants.RoleLabel(user.Role), actor.Display())
		_, err := notifService.NotifyAdmins(tx, constants.NotifUserDeleted, "User Deleted", msg, "", true)
		return err
	})
	if err != nil {
		return err
	}

	configs.Audit().Info("user deleted",
		zap.String("user_id", id.String()),
		zap.String("email", user.Email),
		zap.String("actor", actor.Email),
	)
	return nil
}

// SyncAllPermissions re-copies the role table onto every user.
func SyncAllPermissions(db *gorm.DB) (int, error) {
	var users []model.UserModel
	if err := db.Select("id", "role").Find(&users).Error; err != nil {
		return 0, err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range users {
			users[i].ApplyRole(users[i].Role)
			if err := tx.Model(&users[i]).Update("permissions", users[i].Permissions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return len(users), err
}
