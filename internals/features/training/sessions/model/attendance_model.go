package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "hrportal_backend/internals/features/users/user/model"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

var AttendanceStatuses = []string{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused}

func IsAttendanceStatus(s string) bool {
	for _, v := range AttendanceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type AttendanceModel struct {
	AttendanceID         uuid.UUID  `gorm:"column:attendance_id;type:uuid;primaryKey" json:"attendance_id"`
	AttendanceSessionID  uuid.UUID  `gorm:"column:attendance_session_id;type:uuid;not null;uniqueIndex:uq_attendance_session_employee" json:"attendance_session_id"`
	AttendanceEmployeeID uuid.UUID  `gorm:"column:attendance_employee_id;type:uuid;not null;uniqueIndex:uq_attendance_session_employee" json:"attendance_employee_id"`
	AttendanceStatus     string     `gorm:"column:attendance_status;size:10;not null;default:'absent'" json:"attendance_status"`
	AttendanceNotes      string     `gorm:"column:attendance_notes;type:text" json:"attendance_notes"`
	AttendanceMarkedByID *uuid.UUID `gorm:"column:attendance_marked_by_id;type:uuid" json:"attendance_marked_by_id,omitempty"`
	AttendanceMarkedAt   time.Time  `gorm:"column:attendance_marked_at;autoCreateTime" json:"attendance_marked_at"`

	Session  *TrainingSessionModel `gorm:"foreignKey:AttendanceSessionID;references:TrainingSessionID;constraint:OnDelete:CASCADE" json:"-"`
	Employee *userModel.UserModel  `gorm:"foreignKey:AttendanceEmployeeID;references:ID;constraint:OnDelete:CASCADE" json:"employee,omitempty"`
}

func (AttendanceModel) TableName() string {
	return "attendances"
}

func (a *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if a.AttendanceID == uuid.Nil {
		a.AttendanceID = uuid.New()
	}
	if a.AttendanceStatus == "" {
		a.AttendanceStatus = AttendanceAbsent
	}
	return nil
}
