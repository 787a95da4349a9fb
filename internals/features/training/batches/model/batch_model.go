package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "hrportal_backend/internals/features/users/user/model"
)

const (
	BatchUpcoming  = "upcoming"
	BatchOngoing   = "ongoing"
	BatchCompleted = "completed"
)

var BatchStatuses = []string{BatchUpcoming, BatchOngoing, BatchCompleted}

type BatchModel struct {
	BatchID          uuid.UUID  `gorm:"column:batch_id;type:uuid;primaryKey" json:"batch_id"`
	BatchName        string     `gorm:"column:batch_name;size:200;not null" json:"batch_name"`
	BatchCode        string     `gorm:"column:batch_code;size:50;not null;uniqueIndex" json:"batch_code"`
	BatchStartDate   *time.Time `gorm:"column:batch_start_date;type:date;index" json:"batch_start_date"`
	BatchEndDate     *time.Time `gorm:"column:batch_end_date;type:date" json:"batch_end_date"`
	BatchDescription string     `gorm:"column:batch_description;type:text" json:"batch_description"`
	BatchStatus      string     `gorm:"column:batch_status;size:15;not null;default:'upcoming';index" json:"batch_status"`
	BatchCreatedByID *uuid.UUID `gorm:"column:batch_created_by_id;type:uuid" json:"batch_created_by_id,omitempty"`
	BatchCreatedAt   time.Time  `gorm:"column:batch_created_at;autoCreateTime" json:"batch_created_at"`
	BatchUpdatedAt   time.Time  `gorm:"column:batch_updated_at;autoUpdateTime" json:"batch_updated_at"`

	Trainers  []userModel.UserModel `gorm:"many2many:batch_trainers;joinForeignKey:batch_id;joinReferences:user_id" json:"trainers,omitempty"`
	Employees []userModel.UserModel `gorm:"many2many:batch_employees;joinForeignKey:batch_id;joinReferences:user_id" json:"employees,omitempty"`
}

func (BatchModel) TableName() string {
	return "batches"
}

func (b *BatchModel) BeforeCreate(tx *gorm.DB) error {
	if b.BatchID == uuid.Nil {
		b.BatchID = uuid.New()
	}
	if b.BatchStatus == "" {
		b.BatchStatus = BatchUpcoming
	}
	if strings.TrimSpace(b.BatchCode) == "" {
		b.BatchCode = GenerateBatchCode(time.Now())
	}
	return nil
}

// GenerateBatchCode returns BATCH-YYYYMM-XXXX with a random hex suffix.
func GenerateBatchCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("BATCH-%s-%s", now.Format("200601"), suffix)
}

// DurationDays is end - start in days, 0 when either date is missing.
func (b *BatchModel) DurationDays() int {
	if b.BatchStartDate == nil || b.BatchEndDate == nil {
		return 0
	}
	return int(b.BatchEndDate.Sub(*b.BatchStartDate).Hours() / 24)
}

func (b *BatchModel) HasTrainer(userID uuid.UUID) bool {
	for _, t := range b.Trainers {
		if t.ID == userID {
			return true
		}
	}
	return false
}

// Join tables, exposed for membership lookups without loading the batch.
const (
	TableBatchTrainers  = "batch_trainers"
	TableBatchEmployees = "batch_employees"
)

// IsBatchTrainer reports whether userID is assigned as a trainer of batchID.
func IsBatchTrainer(db *gorm.DB, batchID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.Table(TableBatchTrainers).Where("batch_id = ? AND user_id = ?", batchID, userID).Count(&n).Error
	return n > 0, err
}

func IsBatchEmployee(db *gorm.DB, batchID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.Table(TableBatchEmployees).Where("batch_id = ? AND user_id = ?", batchID, userID).Count(&n).Error
	return n > 0, err
}
