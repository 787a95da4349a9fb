package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	authModel "hrportal_backend/internals/features/users/auth/model"
	userModel "hrportal_backend/internals/features/users/user/model"
)

const msgAccountInactive = "Account is inactive."

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Authorization header (or access_token cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		// 2) Blacklist, once per request
		if c.Locals("token_checked") == nil {
			var existing authModel.TokenBlacklist
			err := db.Where("token = ? AND deleted_at IS NULL", tokenString).First(&existing).Error
			if err == nil {
				log.Println("[WARN] blacklisted token used")
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Println("[ERROR] blacklist lookup:", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
			c.Locals("token_checked", true)
		}

		// 3) Signature; exp is checked below with skew
		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}
		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secretKey), nil
		}); err != nil {
			log.Println("[ERROR] token parse:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 4) User must exist, be active, and not have signed out everywhere since iat
		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}

		var user userModel.UserModel
		if err := db.Select("id", "email", "role", "is_active", "permissions", "sessions_revoked_at").
			First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			log.Println("[ERROR] load user:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusForbidden, msgAccountInactive)
		}
		if issuedBeforeRevocation(claims, user.SessionsRevokedAt) {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Session has been signed out")
		}

		// 5) Locals; role and permissions come from the row, not the token
		c.Locals("user_id", user.ID.String())
		c.Locals("userRole", user.Role)
		c.Locals("user_email", user.Email)
		c.Locals("user_permissions", user.PermissionMap())
		c.Locals("access_token", tokenString)
		c.Locals("token_exp", claimTime(claims, "exp"))

		return c.Next()
	}
}
