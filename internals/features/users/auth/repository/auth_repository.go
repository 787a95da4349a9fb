package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "hrportal_backend/internals/features/users/auth/model"
	userModel "hrportal_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByID(db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("email = ?", userModel.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(db *gorm.DB, user *userModel.UserModel) error {
	return db.Create(user).Error
}

func UpdateUserPassword(db *gorm.DB, userID uuid.UUID, newHash string) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("password", newHash).Error
}

func TouchLastLogin(db *gorm.DB, userID uuid.UUID, at time.Time) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

/* ====================== REFRESH TOKEN ====================== */

func CreateRefreshToken(db *gorm.DB, token *authModel.RefreshToken) error {
	return db.Create(token).Error
}

// FindActiveRefreshToken: not revoked and not expired.
func FindActiveRefreshToken(db *gorm.DB, hash []byte) (*authModel.RefreshToken, error) {
	var rt authModel.RefreshToken
	if err := db.
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, time.Now().UTC()).
		First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func DeleteRefreshTokenByHash(db *gorm.DB, hash []byte) error {
	return db.Where("token_hash = ?", hash).Delete(&authModel.RefreshToken{}).Error
}

func ListActiveRefreshTokens(db *gorm.DB, userID uuid.UUID) ([]authModel.RefreshToken, error) {
	var out []authModel.RefreshToken
	err := db.
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now().UTC()).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func RevokeAllRefreshTokens(db *gorm.DB, userID uuid.UUID, at time.Time) (int64, error) {
	res := db.Model(&authModel.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at)
	return res.RowsAffected, res.Error
}

func CleanupRefreshTokens(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at <= ? OR revoked_at IS NOT NULL", now).Delete(&authModel.RefreshToken{})
	return res.RowsAffected, res.Error
}

/* ====================== BLACKLIST TOKEN ====================== */

func BlacklistToken(db *gorm.DB, token string, ttl time.Duration) error {
	var existing int64
	if err := db.Model(&authModel.TokenBlacklist{}).Where("token = ?", token).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	return db.Create(&authModel.TokenBlacklist{
		Token:     token,
		ExpiredAt: time.Now().UTC().Add(ttl),
	}).Error
}

// CleanupExpiredBlacklist hard-deletes rows that expired before the cutoff.
func CleanupExpiredBlacklist(db *gorm.DB, before time.Time) (int64, error) {
	res := db.Unscoped().Where("expired_at < ?", before).Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
