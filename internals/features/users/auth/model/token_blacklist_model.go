package model

import (
	"time"

	"gorm.io/gorm"
)

// TokenBlacklist holds access tokens revoked before their natural expiry.
type TokenBlacklist struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Token     string         `gorm:"type:text;not null;uniqueIndex" json:"token"`
	ExpiredAt time.Time      `gorm:"index" json:"expired_at"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
