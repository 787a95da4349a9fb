package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/materials/dto"
	"hrportal_backend/internals/features/training/materials/model"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

var (
	ErrBatchNotFound    = errors.New("Batch not found.")
	ErrMaterialNotFound = errors.New("Material not found.")
	ErrViewDenied       = errors.New("You don't have permission to view these materials.")
	ErrUploadDenied     = errors.New("You don't have permission to upload materials to this batch.")
	ErrDeleteDenied     = errors.New("You don't have permission to delete this material.")
)

// Actor is the caller with the permission map copied onto their account.
type Actor struct {
	ID    uuid.UUID
	Perms constants.PermissionMap
}

func batchExists(db *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := db.Model(&batchModel.BatchModel{}).Where("batch_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func List(db *gorm.DB, a Actor, batchID uuid.UUID) ([]model.MaterialModel, error) {
	if err := batchExists(db, batchID); err != nil {
		return nil, err
	}
	if !a.Perms.Has(constants.ModuleTraining, constants.ActionView) {
		trainer, err := batchModel.IsBatchTrainer(db, batchID, a.ID)
		if err != nil {
			return nil, err
		}
		employee, err := batchModel.IsBatchEmployee(db, batchID, a.ID)
		if err != nil {
			return nil, err
		}
		if !trainer && !employee {
			return nil, ErrViewDenied
		}
	}

	out := []model.MaterialModel{}
	err := db.Preload("Session").
		Where("material_batch_id = ?", batchID).
		Order("material_created_at DESC").
		Find(&out).Error
	return out, err
}

// Create stores an optional file under training/materials and records the material.
func Create(ctx context.Context, db *gorm.DB, blob storage.BlobService, a Actor, batchID uuid.UUID, req *dto.CreateMaterialRequest, fh *multipart.FileHeader) (*model.MaterialModel, error) {
	if err := batchExists(db, batchID); err != nil {
		return nil, err
	}
	if !a.Perms.Has(constants.ModuleTraining, constants.ActionCreate) {
		ok, err := batchModel.IsBatchTrainer(db, batchID, a.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUploadDenied
		}
	}
	if msg := storage.ValidateTrainingFile(fh, constants.MaterialExtensions); msg != "" {
		return nil, helper.NewFieldError("file", msg)
	}

	m := req.ToModel(batchID, a.ID)
	if m.MaterialSessionID != nil {
		var n int64
		if err := db.Model(&sessionModel.TrainingSessionModel{}).
			Where("training_session_id = ? AND training_session_batch_id = ?", *m.MaterialSessionID, batchID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, helper.NewFieldError("session_id", "Selected session does not belong to this batch.")
		}
	}

	if fh != nil {
		obj, err := blob.Upload(ctx, "training/materials", fh)
		if err != nil {
			return nil, fmt.Errorf("upload material: %w", err)
		}
		m.MaterialFileURL = obj.URL
	}
	if err := db.Omit("Batch", "Session").Create(m).Error; err != nil {
		storage.DeleteAll(blob, []string{m.MaterialFileURL})
		return nil, err
	}

	configs.Audit().Info("material uploaded",
		zap.String("material_id", m.MaterialID.String()),
		zap.String("batch_id", batchID.String()),
		zap.String("actor", a.ID.String()),
	)
	return m, nil
}

func Delete(db *gorm.DB, blob storage.BlobService, a Actor, id uuid.UUID) (*model.MaterialModel, error) {
	var m model.MaterialModel
	if err := db.First(&m, "material_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	owner := m.MaterialUploadedByID != nil && *m.MaterialUploadedByID == a.ID
	if !owner && !a.Perms.Has(constants.ModuleTraining, constants.ActionDelete) {
		return nil, ErrDeleteDenied
	}
	if err := db.Delete(&m).Error; err != nil {
		return nil, err
	}
	storage.DeleteAll(blob, []string{m.MaterialFileURL})

	configs.Audit().Info("material deleted",
		zap.String("material_id", id.String()),
		zap.String("actor", a.ID.String()),
	)
	return &m, nil
}
