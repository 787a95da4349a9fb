package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("Unauthorized - No token provided")
	}

	// tolerate repeated spaces and any casing of "Bearer"
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("Unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("Unauthorized - Empty token")
	}
	return tok, nil
}

// claimUnix reads a numeric date claim (float64 after JSON decode, or string).
func claimUnix(claims jwt.MapClaims, key string) (int64, bool) {
	switch t := claims[key].(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func claimTime(claims jwt.MapClaims, key string) time.Time {
	if n, ok := claimUnix(claims, key); ok {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}

func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expUnix, ok := claimUnix(claims, "exp")
	if !ok {
		return fmt.Errorf("token has no exp")
	}
	expTime := time.Unix(expUnix, 0).UTC()
	if time.Now().UTC().After(expTime.Add(skew)) {
		return fmt.Errorf("token expired at %v", expTime)
	}
	return nil
}

// issuedBeforeRevocation: iat is second-precision, so compare at that precision.
func issuedBeforeRevocation(claims jwt.MapClaims, revokedAt *time.Time) bool {
	if revokedAt == nil {
		return false
	}
	iat, ok := claimUnix(claims, "iat")
	if !ok {
		return true
	}
	return iat < revokedAt.Unix()
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	v, ok := claims["id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("no user id")
	}
	return uuid.Parse(strings.TrimSpace(v))
}
