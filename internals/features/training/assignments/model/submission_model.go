package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "hrportal_backend/internals/features/users/user/model"
)

const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

type SubmissionModel struct {
	SubmissionID           uuid.UUID  `gorm:"column:submission_id;type:uuid;primaryKey" json:"submission_id"`
	SubmissionAssignmentID uuid.UUID  `gorm:"column:submission_assignment_id;type:uuid;not null;uniqueIndex:uq_submission_assignment_employee" json:"submission_assignment_id"`
	SubmissionEmployeeID   uuid.UUID  `gorm:"column:submission_employee_id;type:uuid;not null;uniqueIndex:uq_submission_assignment_employee" json:"submission_employee_id"`
	SubmissionFileURL      string     `gorm:"column:submission_file_url" json:"submission_file_url"`
	SubmissionSubmittedAt  time.Time  `gorm:"column:submission_submitted_at" json:"submission_submitted_at"`
	SubmissionScore        *float64   `gorm:"column:submission_score" json:"submission_score"`
	SubmissionFeedback     string     `gorm:"column:submission_feedback;type:text" json:"submission_feedback"`
	SubmissionStatus       string     `gorm:"column:submission_status;size:10;not null;default:'submitted'" json:"submission_status"`
	SubmissionGradedByID   *uuid.UUID `gorm:"column:submission_graded_by_id;type:uuid" json:"submission_graded_by_id,omitempty"`
	SubmissionGradedAt     *time.Time `gorm:"column:submission_graded_at" json:"submission_graded_at,omitempty"`

	Assignment *AssignmentModel     `gorm:"foreignKey:SubmissionAssignmentID;references:AssignmentID;constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	Employee   *userModel.UserModel `gorm:"foreignKey:SubmissionEmployeeID;references:ID;constraint:OnDelete:CASCADE" json:"employee,omitempty"`
}

func (SubmissionModel) TableName() string {
	return "submissions"
}

func (s *SubmissionModel) BeforeCreate(tx *gorm.DB) error {
	if s.SubmissionID == uuid.Nil {
		s.SubmissionID = uuid.New()
	}
	if s.SubmissionStatus == "" {
		s.SubmissionStatus = SubmissionSubmitted
	}
	return nil
}
