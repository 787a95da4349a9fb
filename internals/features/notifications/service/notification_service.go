package service

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/notifications/model"
)

// Create stores one notification inside the caller's transaction.
func Create(tx *gorm.DB, recipientID uuid.UUID, ntype, title, message, link string) error {
	n := model.NotificationModel{
		NotificationRecipientID: recipientID,
		NotificationType:        ntype,
		NotificationTitle:       title,
		NotificationMessage:     message,
		NotificationLink:        link,
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// NotifyAdmins fans a notification out to every admin and super_admin.
// activeOnly limits it to accounts with is_active = true.
func NotifyAdmins(tx *gorm.DB, ntype, title, message, link string, activeOnly bool) (int, error) {
	var ids []uuid.UUID
	q := tx.Table("users").Where("role IN ?", constants.AdminAndAbove)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("load admins: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	rows := make([]model.NotificationModel, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.NotificationModel{
			NotificationRecipientID: id,
			NotificationType:        ntype,
			NotificationTitle:       title,
			NotificationMessage:     message,
			NotificationLink:        link,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("create admin notifications: %w", err)
	}
	return len(rows), nil
}

func UnreadCount(db *gorm.DB, recipientID uuid.UUID) (int64, error) {
	var n int64
	err := db.Model(&model.NotificationModel{}).
		Where("notification_recipient_id = ? AND notification_is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flips one notification; false when it does not belong to the recipient.
func MarkRead(db *gorm.DB, recipientID, id uuid.UUID) (bool, error) {
	res := db.Model(&model.NotificationModel{}).
		Where("notification_id = ? AND notification_recipient_id = ?", id, recipientID).
		Update("notification_is_read", true)
	return res.RowsAffected > 0, res.Error
}

func MarkAllRead(db *gorm.DB, recipientID uuid.UUID) (int64, error) {
	res := db.Model(&model.NotificationModel{}).
		Where("notification_recipient_id = ? AND notification_is_read = ?", recipientID, false).
		Update("notification_is_read", true)
	return res.RowsAffected, res.Error
}
