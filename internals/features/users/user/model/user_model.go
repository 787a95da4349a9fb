package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
)

// UserModel is the account table. Permissions are a copy of the role table
// taken when the user is created or edited.
type UserModel struct {
	ID                uuid.UUID                                  `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string                                     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password          string                                     `gorm:"not null" json:"-"`
	FullName          string                                     `gorm:"size:150" json:"full_name"`
	Phone             string                                     `gorm:"size:20" json:"phone"`
	Department        string                                     `gorm:"size:30" json:"department"`
	Role              string                                     `gorm:"size:20;not null;default:'employee';index" json:"role"`
	Status            string                                     `gorm:"size:10;not null;default:'active'" json:"status"`
	IsActive          bool                                       `gorm:"not null" json:"is_active"`
	Permissions       datatypes.JSONType[constants.PermissionMap] `gorm:"column:permissions;not null" json:"permissions"`
	SessionsRevokedAt *time.Time                                 `gorm:"column:sessions_revoked_at" json:"-"`
	LastLoginAt       *time.Time                                 `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt         time.Time                                  `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt         time.Time                                  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Status == "" {
		u.Status = constants.StatusActive
	}
	u.IsActive = u.Status == constants.StatusActive
	if u.Permissions.Data() == nil {
		u.ApplyRole(u.Role)
	}
	return nil
}

// ApplyRole sets the role and re-copies its permission entry.
func (u *UserModel) ApplyRole(role string) {
	u.Role = role
	u.Permissions = datatypes.NewJSONType(constants.PermissionsForRole(role))
}

// SetStatus keeps is_active in step with status.
func (u *UserModel) SetStatus(status string) {
	u.Status = status
	u.IsActive = status == constants.StatusActive
}

func (u *UserModel) PermissionMap() constants.PermissionMap {
	if p := u.Permissions.Data(); p != nil {
		return p
	}
	return constants.PermissionMap{}
}

// DisplayName falls back to the email when full_name is blank.
func (u *UserModel) DisplayName() string {
	if n := strings.TrimSpace(u.FullName); n != "" {
		return n
	}
	return u.Email
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
