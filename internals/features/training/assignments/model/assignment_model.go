package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	batchModel "hrportal_backend/internals/features/training/batches/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
)

const (
	AssignmentPending = "pending"
	AssignmentClosed  = "closed"
)

type AssignmentModel struct {
	AssignmentID               uuid.UUID  `gorm:"column:assignment_id;type:uuid;primaryKey" json:"assignment_id"`
	AssignmentBatchID          uuid.UUID  `gorm:"column:assignment_batch_id;type:uuid;not null;index" json:"assignment_batch_id"`
	AssignmentSessionID        *uuid.UUID `gorm:"column:assignment_session_id;type:uuid" json:"assignment_session_id,omitempty"`
	AssignmentTitle            string     `gorm:"column:assignment_title;size:200;not null" json:"assignment_title"`
	AssignmentDueDate          time.Time  `gorm:"column:assignment_due_date;not null;index" json:"assignment_due_date"`
	AssignmentMaxScore         int        `gorm:"column:assignment_max_score;not null;default:100" json:"assignment_max_score"`
	AssignmentDescription      string     `gorm:"column:assignment_description;type:text" json:"assignment_description"`
	AssignmentRubric           string     `gorm:"column:assignment_rubric;type:text" json:"assignment_rubric"`
	AssignmentSubmissionFormat string     `gorm:"column:assignment_submission_format;size:100" json:"assignment_submission_format"`
	AssignmentStatus           string     `gorm:"column:assignment_status;size:10;not null;default:'pending'" json:"assignment_status"`
	AssignmentNotes            string     `gorm:"column:assignment_notes;type:text" json:"assignment_notes"`
	AssignmentCreatedByID      *uuid.UUID `gorm:"column:assignment_created_by_id;type:uuid" json:"assignment_created_by_id,omitempty"`
	AssignmentCreatedAt        time.Time  `gorm:"column:assignment_created_at;autoCreateTime" json:"assignment_created_at"`
	AssignmentUpdatedAt        time.Time  `gorm:"column:assignment_updated_at;autoUpdateTime" json:"assignment_updated_at"`

	Batch   *batchModel.BatchModel              `gorm:"foreignKey:AssignmentBatchID;references:BatchID;constraint:OnDelete:CASCADE" json:"batch,omitempty"`
	Session *sessionModel.TrainingSessionModel `gorm:"foreignKey:AssignmentSessionID;references:TrainingSessionID;constraint:OnDelete:SET NULL" json:"session,omitempty"`
}

func (AssignmentModel) TableName() string {
	return "assignments"
}

func (a *AssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if a.AssignmentID == uuid.Nil {
		a.AssignmentID = uuid.New()
	}
	if a.AssignmentStatus == "" {
		a.AssignmentStatus = AssignmentPending
	}
	if a.AssignmentMaxScore == 0 {
		a.AssignmentMaxScore = 100
	}
	return nil
}
