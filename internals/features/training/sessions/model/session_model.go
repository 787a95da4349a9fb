package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	batchModel "hrportal_backend/internals/features/training/batches/model"
	userModel "hrportal_backend/internals/features/users/user/model"
)

const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

var SessionStatuses = []string{SessionScheduled, SessionCompleted, SessionCancelled}

type TrainingSessionModel struct {
	TrainingSessionID              uuid.UUID  `gorm:"column:training_session_id;type:uuid;primaryKey" json:"training_session_id"`
	TrainingSessionBatchID         uuid.UUID  `gorm:"column:training_session_batch_id;type:uuid;not null;index" json:"training_session_batch_id"`
	TrainingSessionTrainerID       *uuid.UUID `gorm:"column:training_session_trainer_id;type:uuid" json:"training_session_trainer_id,omitempty"`
	TrainingSessionTitle           string     `gorm:"column:training_session_title;size:200;not null" json:"training_session_title"`
	TrainingSessionDateTime        time.Time  `gorm:"column:training_session_date_time;not null;index" json:"training_session_date_time"`
	TrainingSessionDurationHours   float64    `gorm:"column:training_session_duration_hours;not null;default:1" json:"training_session_duration_hours"`
	TrainingSessionAgenda          string     `gorm:"column:training_session_agenda;type:text" json:"training_session_agenda"`
	TrainingSessionMeetingLink     string     `gorm:"column:training_session_meeting_link;size:500" json:"training_session_meeting_link"`
	TrainingSessionStatus          string     `gorm:"column:training_session_status;size:15;not null;default:'scheduled'" json:"training_session_status"`
	TrainingSessionNotes           string     `gorm:"column:training_session_notes;type:text" json:"training_session_notes"`
	TrainingSessionAttendanceTaken bool       `gorm:"column:training_session_attendance_taken;not null;default:false" json:"training_session_attendance_taken"`
	TrainingSessionCreatedByID     *uuid.UUID `gorm:"column:training_session_created_by_id;type:uuid" json:"training_session_created_by_id,omitempty"`
	TrainingSessionCreatedAt       time.Time  `gorm:"column:training_session_created_at;autoCreateTime" json:"training_session_created_at"`
	TrainingSessionUpdatedAt       time.Time  `gorm:"column:training_session_updated_at;autoUpdateTime" json:"training_session_updated_at"`

	Batch   *batchModel.BatchModel `gorm:"foreignKey:TrainingSessionBatchID;references:BatchID;constraint:OnDelete:CASCADE" json:"batch,omitempty"`
	Trainer *userModel.UserModel   `gorm:"foreignKey:TrainingSessionTrainerID;references:ID;constraint:OnDelete:SET NULL" json:"trainer,omitempty"`
}

func (TrainingSessionModel) TableName() string {
	return "training_sessions"
}

func (s *TrainingSessionModel) BeforeCreate(tx *gorm.DB) error {
	if s.TrainingSessionID == uuid.Nil {
		s.TrainingSessionID = uuid.New()
	}
	if s.TrainingSessionStatus == "" {
		s.TrainingSessionStatus = SessionScheduled
	}
	return nil
}
