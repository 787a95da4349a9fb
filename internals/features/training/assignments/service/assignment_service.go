package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/assignments/dto"
	"hrportal_backend/internals/features/training/assignments/model"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	notifService "hrportal_backend/internals/features/notifications/service"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

var (
	ErrAssignmentNotFound = errors.New("Assignment not found.")
	ErrSubmissionNotFound = errors.New("Submission not found.")
	ErrNotEnrolled        = errors.New("You are not enrolled in this batch.")
	ErrGradeDenied        = errors.New("You don't have permission to grade this submission.")
)

const MsgSessionOtherBatch = "Selected session does not belong to this batch."

func findAssignment(db *gorm.DB, id uuid.UUID) (*model.AssignmentModel, error) {
	var a model.AssignmentModel
	err := db.Preload("Batch").Preload("Session").First(&a, "assignment_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func checkSession(tx *gorm.DB, batchID uuid.UUID, sessionID *uuid.UUID) error {
	if sessionID == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&sessionModel.TrainingSessionModel{}).
		Where("training_session_id = ? AND training_session_batch_id = ?", *sessionID, batchID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return helper.NewFieldError("session_id", MsgSessionOtherBatch)
	}
	return nil
}

func Create(db *gorm.DB, actor uuid.UUID, due time.Time, req *dto.CreateAssignmentRequest) (*model.AssignmentModel, error) {
	a := req.ToModel(due, actor)
	err := db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&batchModel.BatchModel{}).Where("batch_id = ?", a.AssignmentBatchID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return helper.NewFieldError("batch_id", "Select a valid choice. That batch does not exist.")
		}
		if err := checkSession(tx, a.AssignmentBatchID, a.AssignmentSessionID); err != nil {
			return err
		}
		return tx.Omit("Batch", "Session").Create(a).Error
	})
	if err != nil {
		return nil, err
	}
	configs.Audit().Info("assignment created",
		zap.String("assignment_id", a.AssignmentID.String()),
		zap.String("batch_id", a.AssignmentBatchID.String()),
		zap.String("actor", actor.String()),
	)
	return findAssignment(db, a.AssignmentID)
}

func Update(db *gorm.DB, actor, id uuid.UUID, req *dto.UpdateAssignmentRequest) (*model.AssignmentModel, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		a, err := findAssignment(tx, id)
		if err != nil {
			return err
		}
		cols, fe := req.Apply(a)
		if !fe.Empty() {
			return &helper.FieldsError{Fields: fe}
		}
		if req.SessionID != nil {
			if err := checkSession(tx, a.AssignmentBatchID, a.AssignmentSessionID); err != nil {
				return err
			}
		}
		if len(cols) == 0 {
			return nil
		}
		return tx.Model(a).Omit("Batch", "Session").Select(cols).Updates(a).Error
	})
	if err != nil {
		return nil, err
	}
	configs.Audit().Info("assignment updated",
		zap.String("assignment_id", id.String()),
		zap.String("actor", actor.String()),
	)
	return findAssignment(db, id)
}

func Detail(db *gorm.DB, id uuid.UUID) (*dto.AssignmentDetail, error) {
	a, err := findAssignment(db, id)
	if err != nil {
		return nil, err
	}
	var subs []model.SubmissionModel
	if err := db.Preload("Employee").
		Where("submission_assignment_id = ?", id).
		Order("submission_submitted_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return &dto.AssignmentDetail{Assignment: a, Submissions: subs, SubmissionCount: len(subs)}, nil
}

// Submit stores the employee's file for an assignment of a batch they are
// enrolled in. A resubmission replaces the file and clears any grade.
func Submit(ctx context.Context, db *gorm.DB, blob storage.BlobService, employeeID, assignmentID uuid.UUID, fh *multipart.FileHeader) (*model.SubmissionModel, bool, error) {
	a, err := findAssignment(db, assignmentID)
	if err != nil {
		return nil, false, err
	}
	enrolled, err := batchModel.IsBatchEmployee(db, a.AssignmentBatchID, employeeID)
	if err != nil {
		return nil, false, err
	}
	if !enrolled {
		return nil, false, ErrNotEnrolled
	}

	if fh == nil {
		return nil, false, helper.NewFieldError("file", "This field is required.")
	}
	if msg := storage.ValidateTrainingFile(fh, constants.SubmissionExtensions); msg != "" {
		return nil, false, helper.NewFieldError("file", msg)
	}

	obj, err := blob.Upload(ctx, "training/submissions", fh)
	if err != nil {
		return nil, false, fmt.Errorf("upload submission: %w", err)
	}

	var sub model.SubmissionModel
	var created bool
	var previous string
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("submission_assignment_id = ? AND submission_employee_id = ?", assignmentID, employeeID).
			Limit(1).Find(&sub)
		if res.Error != nil {
			return res.Error
		}
		now := time.Now().UTC()
		if res.RowsAffected == 0 {
			created = true
			sub = model.SubmissionModel{
				SubmissionAssignmentID: assignmentID,
				SubmissionEmployeeID:   employeeID,
				SubmissionFileURL:      obj.URL,
				SubmissionSubmittedAt:  now,
			}
			return tx.Omit("Assignment", "Employee").Create(&sub).Error
		}

		previous = sub.SubmissionFileURL
		sub.SubmissionFileURL = obj.URL
		sub.SubmissionSubmittedAt = now
		sub.SubmissionScore = nil
		sub.SubmissionFeedback = ""
		sub.SubmissionStatus = model.SubmissionSubmitted
		sub.SubmissionGradedByID = nil
		sub.SubmissionGradedAt = nil
		return tx.Model(&sub).Select(
			"submission_file_url", "submission_submitted_at", "submission_score", "submission_feedback",
			"submission_status", "submission_graded_by_id", "submission_graded_at",
		).Updates(&sub).Error
	})
	if err != nil {
		storage.DeleteAll(blob, []string{obj.URL})
		return nil, false, err
	}
	if previous != "" && previous != obj.URL {
		storage.DeleteAll(blob, []string{previous})
	}

	configs.Audit().Info("assignment submitted",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.Bool("resubmission", !created),
	)
	return &sub, created, nil
}

// Grader is who grades: users with training.edit or a trainer of the batch.
type Grader struct {
	ID      uuid.UUID
	CanEdit bool
}

func Grade(db *gorm.DB, g Grader, submissionID uuid.UUID, req *dto.GradeRequest) (*model.SubmissionModel, error) {
	var sub model.SubmissionModel
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Assignment").First(&sub, "submission_id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		if !g.CanEdit {
			ok, err := batchModel.IsBatchTrainer(tx, sub.Assignment.AssignmentBatchID, g.ID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrGradeDenied
			}
		}
		if fe := req.Validate(sub.Assignment.AssignmentMaxScore); !fe.Empty() {
			return &helper.FieldsError{Fields: fe}
		}

		now := time.Now().UTC()
		sub.SubmissionScore = req.Score
		sub.SubmissionFeedback = req.Feedback
		sub.SubmissionStatus = model.SubmissionGraded
		sub.SubmissionGradedByID = &g.ID
		sub.SubmissionGradedAt = &now
		if err := tx.Model(&sub).Select(
			"submission_score", "submission_feedback", "submission_status", "submission_graded_by_id", "submission_graded_at",
		).Updates(&sub).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Your submission for %q was graded: %s/%d.",
			sub.Assignment.AssignmentTitle, formatScore(*req.Score), sub.Assignment.AssignmentMaxScore)
		return notifService.Create(tx, sub.SubmissionEmployeeID, constants.NotifSubmissionGraded,
			"Assignment Graded", msg, configs.AppURL("/training/my"))
	})
	if err != nil {
		return nil, err
	}
	configs.Audit().Info("submission graded",
		zap.String("submission_id", submissionID.String()),
		zap.Float64("score", *req.Score),
		zap.String("actor", g.ID.String()),
	)
	return &sub, nil
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
