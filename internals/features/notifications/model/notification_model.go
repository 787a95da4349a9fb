package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationModel struct {
	NotificationID          uuid.UUID `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	NotificationRecipientID uuid.UUID `gorm:"column:notification_recipient_id;type:uuid;not null;index:idx_notification_recipient_read" json:"notification_recipient_id"`
	NotificationType        string    `gorm:"column:notification_type;size:50;not null" json:"notification_type"`
	NotificationTitle       string    `gorm:"column:notification_title;size:255;not null" json:"notification_title"`
	NotificationMessage     string    `gorm:"column:notification_message;type:text" json:"notification_message"`
	NotificationLink        string    `gorm:"column:notification_link;size:500" json:"notification_link,omitempty"`
	NotificationIsRead      bool      `gorm:"column:notification_is_read;not null;default:false;index:idx_notification_recipient_read" json:"notification_is_read"`
	NotificationCreatedAt   time.Time `gorm:"column:notification_created_at;autoCreateTime;index" json:"notification_created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func (n *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
