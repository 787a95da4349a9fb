package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	authModel "hrportal_backend/internals/features/users/auth/model"
	authRepo "hrportal_backend/internals/features/users/auth/repository"
	userModel "hrportal_backend/internals/features/users/user/model"
	helpers "hrportal_backend/internals/helpers"
)

const (
	accessTTLDefault  = 24 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour
)

var errRefreshInvalid = errors.New("refresh token invalid")

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET is not set")
	}
	return secret, nil
}

func getRefreshSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTRefreshSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET"))
	}
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_REFRESH_SECRET is not set")
	}
	return secret, nil
}

func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func computeRefreshHash(token, secret string) []byte {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return m.Sum(nil)
}

func buildRefreshClaims(userID uuid.UUID, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ": "refresh",
		"sub": userID.String(),
		"id":  userID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(refreshTTLDefault).Unix(),
	}
}

func buildAccessClaims(user userModel.UserModel, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ":   "access",
		"id":    user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(accessTTLDefault).Unix(),
	}
}

// HomeFor tells the client which landing page the role uses.
func HomeFor(role string) string {
	if role == "employee" {
		return "employee_dashboard"
	}
	return "dashboard"
}

func buildUserResponse(user userModel.UserModel) fiber.Map {
	return fiber.Map{
		"id":            user.ID,
		"email":         user.Email,
		"full_name":     user.FullName,
		"phone":         user.Phone,
		"department":    user.Department,
		"role":          user.Role,
		"status":        user.Status,
		"is_active":     user.IsActive,
		"date_joined":   user.CreatedAt,
		"last_login_at": user.LastLoginAt,
		"permissions":   user.PermissionMap(),
	}
}

type issuedTokens struct {
	Access  string
	Refresh string
	Now     time.Time
}

// issueTokens signs a fresh access/refresh pair and stores the refresh hash.
func issueTokens(c *fiber.Ctx, db *gorm.DB, user userModel.UserModel) (*issuedTokens, error) {
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(user, now)).SignedString([]byte(jwtSecret))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to sign access token")
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildRefreshClaims(user.ID, now)).SignedString([]byte(refreshSecret))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to sign refresh token")
	}

	if err := authRepo.CreateRefreshToken(db, &authModel.RefreshToken{
		UserID:    user.ID,
		TokenHash: computeRefreshHash(refreshToken, refreshSecret),
		ExpiresAt: now.Add(refreshTTLDefault),
		UserAgent: strptr(c.Get("User-Agent")),
		IP:        strptr(c.IP()),
	}); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to store refresh token")
	}

	setAuthCookies(c, accessToken, refreshToken, now)
	return &issuedTokens{Access: accessToken, Refresh: refreshToken, Now: now}, nil
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(accessTTLDefault),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(refreshTTLDefault),
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := nowUTC().Add(-time.Hour)
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: true,
			Secure:   true,
			SameSite: "None",
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}
}

// parseRefreshToken verifies signature, exp and typ, returning the subject.
func parseRefreshToken(raw, secret string) (uuid.UUID, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errRefreshInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, errRefreshInvalid
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return uuid.Nil, errRefreshInvalid
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errRefreshInvalid
	}
	return id, nil
}

// POST /api/auth/refresh-token
func RefreshToken(db *gorm.DB, c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Cookies("refresh_token"))
	if raw == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&body)
		raw = strings.TrimSpace(body.RefreshToken)
	}
	if raw == "" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token is missing")
	}

	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return err
	}
	userID, err := parseRefreshToken(raw, refreshSecret)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token invalid")
	}

	hash := computeRefreshHash(raw, refreshSecret)
	if _, err := authRepo.FindActiveRefreshToken(db, hash); err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token is not recognized")
	}

	user, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "User not found")
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Account is inactive.")
	}

	// rotate
	if err := authRepo.DeleteRefreshTokenByHash(db, hash); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to rotate refresh token")
	}
	tokens, err := issueTokens(c, db, *user)
	if err != nil {
		return err
	}

	return helpers.JsonOK(c, "Token refreshed", fiber.Map{
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

// resolveBlacklistTTL keeps a blacklisted token until its exp (+1 min).
func resolveBlacklistTTL(accessToken string) time.Duration {
	ttl := 2 * time.Minute
	if v := os.Getenv("BLACKLIST_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	jwtSecret, err := getJWTSecret()
	if err != nil || accessToken == "" {
		return ttl
	}
	tok, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil || !tok.Valid {
		return ttl
	}
	if claims, ok := tok.Claims.(jwt.MapClaims); ok {
		if exp, ok := claims["exp"].(float64); ok {
			if until := time.Until(time.Unix(int64(exp), 0)); until > 0 {
				return until + time.Minute
			}
			return time.Minute
		}
	}
	return ttl
}
