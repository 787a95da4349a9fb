package service

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	authHelper "hrportal_backend/internals/features/users/auth/helper"
	authRepo "hrportal_backend/internals/features/users/auth/repository"
	userModel "hrportal_backend/internals/features/users/user/model"
	helpers "hrportal_backend/internals/helpers"
)

const msgInvalidCredentials = "Invalid email or password."

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

/* ==========================
   LOGIN (email + password)
========================== */

func Login(db *gorm.DB, c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Email = userModel.NormalizeEmail(input.Email)
	if fe := helpers.ValidateStruct(&input); !fe.Empty() {
		return helpers.JsonValidationError(c, fe)
	}

	user, err := authRepo.FindUserByEmail(db, input.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("[ERROR] login lookup:", err)
		}
		return helpers.JsonError(c, fiber.StatusUnauthorized, msgInvalidCredentials)
	}
	if err := authHelper.CheckPasswordHash(user.Password, input.Password); err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, msgInvalidCredentials)
	}
	if user.Status == constants.StatusInactive || !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Account is inactive.")
	}

	tokens, err := issueTokens(c, db, *user)
	if err != nil {
		return err
	}
	if err := authRepo.TouchLastLogin(db, user.ID, tokens.Now); err != nil {
		log.Println("[WARN] last_login_at not updated:", err)
	}
	user.LastLoginAt = &tokens.Now

	log.Printf("[SUCCESS] login %s (%s)\n", user.Email, user.Role)
	return helpers.JsonOK(c, "Login successful", fiber.Map{
		"user":          buildUserResponse(*user),
		"permissions":   user.PermissionMap(),
		"home":          HomeFor(user.Role),
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

/* ==========================
   LOGOUT
========================== */

func Logout(db *gorm.DB, c *fiber.Ctx) error {
	accessToken, _ := c.Locals("access_token").(string)
	if accessToken != "" {
		if err := authRepo.BlacklistToken(db, accessToken, resolveBlacklistTTL(accessToken)); err != nil {
			log.Printf("[WARN] failed to blacklist token: %v", err)
		}
	}

	if rt := strings.TrimSpace(c.Cookies("refresh_token")); rt != "" {
		if secret, err := getRefreshSecret(); err == nil {
			_ = authRepo.DeleteRefreshTokenByHash(db, computeRefreshHash(rt, secret))
		}
	}

	clearAuthCookies(c)
	return helpers.JsonOK(c, "Logout successful", nil)
}

/* ==========================
   ME
========================== */

func Me(db *gorm.DB, c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	user, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	return helpers.JsonOK(c, "Current user", fiber.Map{
		"user":        buildUserResponse(*user),
		"permissions": user.PermissionMap(),
		"home":        HomeFor(user.Role),
	})
}

/* ==========================
   SESSIONS
========================== */

// GET /api/auth/sessions: devices holding a live refresh token.
func Sessions(db *gorm.DB, c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	rows, err := authRepo.ListActiveRefreshTokens(db, userID)
	if err != nil {
		log.Println("[ERROR] list sessions:", err)
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to load sessions")
	}

	out := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		out = append(out, fiber.Map{
			"id":         r.ID,
			"user_agent": r.UserAgent,
			"ip":         r.IP,
			"created_at": r.CreatedAt,
			"expires_at": r.ExpiresAt,
		})
	}
	return helpers.JsonOK(c, "Active sessions", out)
}

// POST /api/auth/signout-all
func SignOutAll(db *gorm.DB, c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	now := nowUTC()

	var revoked int64
	err = db.Transaction(func(tx *gorm.DB) error {
		n, err := authRepo.RevokeAllRefreshTokens(tx, userID, now)
		if err != nil {
			return err
		}
		revoked = n
		return tx.Model(&userModel.UserModel{}).Where("id = ?", userID).
			Update("sessions_revoked_at", now).Error
	})
	if err != nil {
		log.Println("[ERROR] signout-all:", err)
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to sign out sessions")
	}

	if tok, _ := c.Locals("access_token").(string); tok != "" {
		if err := authRepo.BlacklistToken(db, tok, resolveBlacklistTTL(tok)); err != nil {
			log.Printf("[WARN] failed to blacklist token: %v", err)
		}
	}
	clearAuthCookies(c)

	configs.Audit().Info("sessions revoked",
		zap.String("user_id", userID.String()),
		zap.Int64("refresh_tokens", revoked),
	)
	return helpers.JsonOK(c, "Signed out from all sessions", fiber.Map{"revoked": revoked})
}
