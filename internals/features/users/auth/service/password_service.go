package service

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	authHelper "hrportal_backend/internals/features/users/auth/helper"
	authRepo "hrportal_backend/internals/features/users/auth/repository"
	helper "hrportal_backend/internals/helpers"
)

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ========================== CHANGE PASSWORD ==========================
func ChangePassword(db *gorm.DB, c *fiber.Ctx) error {
	var input ChangePasswordRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if fe := helper.ValidateStruct(&input); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	user, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User not found")
	}

	if err := authHelper.CheckPasswordHash(user.Password, input.CurrentPassword); err != nil {
		return helper.JsonValidationError(c, map[string][]string{
			"current_password": {"Current password is incorrect"},
		})
	}
	if err := authHelper.ValidateNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
		field := "new_password"
		if errors.Is(err, authHelper.ErrPasswordMismatch) {
			field = "confirm_password"
		}
		return helper.JsonValidationError(c, map[string][]string{field: {err.Error()}})
	}

	newHash, err := authHelper.HashPassword(input.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash new password")
	}
	if err := authRepo.UpdateUserPassword(db, userID, newHash); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update password")
	}

	configs.Audit().Info("password changed", zap.String("user_id", userID.String()))
	return helper.JsonUpdated(c, "Password changed successfully", nil)
}
