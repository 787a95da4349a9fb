package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hrportal_backend/internals/constants"
	uModel "hrportal_backend/internals/features/users/user/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

type CreateUserRequest struct {
	Email      string  `json:"email" validate:"required,email,max=255"`
	Password   string  `json:"password" validate:"required,min=8"`
	FullName   string  `json:"full_name" validate:"max=150"`
	Phone      string  `json:"phone" validate:"max=20"`
	Department string  `json:"department" validate:"omitempty,oneof=software-dev hr finance operations training"`
	Role       string  `json:"role" validate:"required,oneof=super_admin admin scrum_master trainer employee"`
	Status     string  `json:"status" validate:"omitempty,oneof=active inactive"`
	BioDataID  *string `json:"bio_data_id,omitempty" validate:"omitempty,uuid"`
}

func (r *CreateUserRequest) Normalize() {
	r.Email = uModel.NormalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Department = strings.TrimSpace(r.Department)
	r.Role = strings.TrimSpace(r.Role)
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = constants.StatusActive
	}
	if r.BioDataID != nil && strings.TrimSpace(*r.BioDataID) == "" {
		r.BioDataID = nil
	}
}

// ToModel leaves Password untouched; the service hashes it.
func (r *CreateUserRequest) ToModel() *uModel.UserModel {
	m := &uModel.UserModel{
		Email:      r.Email,
		Password:   r.Password,
		FullName:   r.FullName,
		Phone:      r.Phone,
		Department: r.Department,
	}
	m.ApplyRole(r.Role)
	m.SetStatus(r.Status)
	return m
}

// UpdateUserRequest is a partial update; email is read-only.
type UpdateUserRequest struct {
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,max=150"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Department *string `json:"department,omitempty" validate:"omitempty,oneof=software-dev hr finance operations training"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin scrum_master trainer employee"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (r *UpdateUserRequest) Normalize() {
	for _, p := range []*string{r.FullName, r.Phone, r.Department, r.Role, r.Status} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	ID              uuid.UUID               `json:"id"`
	Email           string                  `json:"email"`
	FullName        string                  `json:"full_name"`
	Phone           string                  `json:"phone"`
	Department      string                  `json:"department"`
	DepartmentLabel string                  `json:"department_label"`
	Role            string                  `json:"role"`
	RoleLabel       string                  `json:"role_label"`
	Status          string                  `json:"status"`
	IsActive        bool                    `json:"is_active"`
	DateJoined      time.Time               `json:"date_joined"`
	LastLoginAt     *time.Time              `json:"last_login_at,omitempty"`
	Permissions     constants.PermissionMap `json:"permissions"`
}

func FromModel(u *uModel.UserModel) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Phone:           u.Phone,
		Department:      u.Department,
		DepartmentLabel: constants.DepartmentLabel(u.Department),
		Role:            u.Role,
		RoleLabel:       constants.RoleLabel(u.Role),
		Status:          u.Status,
		IsActive:        u.IsActive,
		DateJoined:      u.CreatedAt,
		LastLoginAt:     u.LastLoginAt,
		Permissions:     u.PermissionMap(),
	}
}
