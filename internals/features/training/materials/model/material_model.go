package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	batchModel "hrportal_backend/internals/features/training/batches/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
)

type MaterialModel struct {
	MaterialID           uuid.UUID  `gorm:"column:material_id;type:uuid;primaryKey" json:"material_id"`
	MaterialBatchID      uuid.UUID  `gorm:"column:material_batch_id;type:uuid;not null;index" json:"material_batch_id"`
	MaterialSessionID    *uuid.UUID `gorm:"column:material_session_id;type:uuid" json:"material_session_id,omitempty"`
	MaterialTitle        string     `gorm:"column:material_title;size:200;not null" json:"material_title"`
	MaterialDescription  string     `gorm:"column:material_description;type:text" json:"material_description"`
	MaterialFileURL      string     `gorm:"column:material_file_url" json:"material_file_url,omitempty"`
	MaterialExternalURL  string     `gorm:"column:material_external_url;size:500" json:"material_external_url,omitempty"`
	MaterialUploadedByID *uuid.UUID `gorm:"column:material_uploaded_by_id;type:uuid" json:"material_uploaded_by_id,omitempty"`
	MaterialCreatedAt    time.Time  `gorm:"column:material_created_at;autoCreateTime" json:"material_created_at"`

	Batch   *batchModel.BatchModel              `gorm:"foreignKey:MaterialBatchID;references:BatchID;constraint:OnDelete:CASCADE" json:"-"`
	Session *sessionModel.TrainingSessionModel `gorm:"foreignKey:MaterialSessionID;references:TrainingSessionID;constraint:OnDelete:SET NULL" json:"session,omitempty"`
}

func (MaterialModel) TableName() string {
	return "training_materials"
}

func (m *MaterialModel) BeforeCreate(tx *gorm.DB) error {
	if m.MaterialID == uuid.Nil {
		m.MaterialID = uuid.New()
	}
	return nil
}
