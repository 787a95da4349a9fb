package helpers

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength  = 8
	TempPasswordLength = 10
	tempPasswordChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("Passwords do not match")
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidateNewPassword checks length and confirmation.
func ValidateNewPassword(newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// GenerateTempPassword returns a random alphanumeric password for new accounts.
func GenerateTempPassword() (string, error) {
	out := make([]byte, TempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordChars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordChars[n.Int64()]
	}
	return string(out), nil
}
