package testkit

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qawatake/fixify"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	assignmentModel "hrportal_backend/internals/features/training/assignments/model"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	materialModel "hrportal_backend/internals/features/training/materials/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	userModel "hrportal_backend/internals/features/users/user/model"
)

// Labels for users connected to a batch.
const (
	AsTrainer  = "trainer"
	AsEmployee = "employee"
)

// User is an active account fixture. Connect it to batches, sessions and
// submissions with With.
func User(role, email string) *fixify.Model[userModel.UserModel] {
	u := &userModel.UserModel{
		ID:       uuid.New(),
		Email:    email,
		Password: passwordHash,
		FullName: fmt.Sprintf("%s %s", role, email[:1]),
	}
	u.ApplyRole(role)
	u.SetStatus(constants.StatusActive)
	return fixify.NewModel(u)
}

// Batch joins users labelled AsTrainer or AsEmployee.
func Batch(name string, start, end time.Time) *fixify.Model[batchModel.BatchModel] {
	return fixify.NewModel(
		&batchModel.BatchModel{
			BatchID:        uuid.New(),
			BatchName:      name,
			BatchStartDate: &start,
			BatchEndDate:   &end,
		},
		fixify.ConnectorFuncWithLabel(AsTrainer, func(_ testing.TB, b *batchModel.BatchModel, u *userModel.UserModel) {
			b.Trainers = append(b.Trainers, *u)
		}),
		fixify.ConnectorFuncWithLabel(AsEmployee, func(_ testing.TB, b *batchModel.BatchModel, u *userModel.UserModel) {
			b.Employees = append(b.Employees, *u)
		}),
	)
}

// Session belongs to a batch; an attached user becomes its trainer.
func Session(title string, at time.Time) *fixify.Model[sessionModel.TrainingSessionModel] {
	return fixify.NewModel(
		&sessionModel.TrainingSessionModel{
			TrainingSessionID:            uuid.New(),
			TrainingSessionTitle:         title,
			TrainingSessionDateTime:      at,
			TrainingSessionDurationHours: 2,
		},
		fixify.ConnectorFunc(func(_ testing.TB, s *sessionModel.TrainingSessionModel, b *batchModel.BatchModel) {
			s.TrainingSessionBatchID = b.BatchID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, s *sessionModel.TrainingSessionModel, u *userModel.UserModel) {
			s.TrainingSessionTrainerID = &u.ID
		}),
	)
}

func Assignment(title string, due time.Time) *fixify.Model[assignmentModel.AssignmentModel] {
	return fixify.NewModel(
		&assignmentModel.AssignmentModel{
			AssignmentID:      uuid.New(),
			AssignmentTitle:   title,
			AssignmentDueDate: due,
		},
		fixify.ConnectorFunc(func(_ testing.TB, a *assignmentModel.AssignmentModel, b *batchModel.BatchModel) {
			a.AssignmentBatchID = b.BatchID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, a *assignmentModel.AssignmentModel, s *sessionModel.TrainingSessionModel) {
			a.AssignmentSessionID = &s.TrainingSessionID
		}),
	)
}

// Submission is connected to its assignment and the submitting employee.
func Submission(fileURL string) *fixify.Model[assignmentModel.SubmissionModel] {
	return fixify.NewModel(
		&assignmentModel.SubmissionModel{
			SubmissionID:          uuid.New(),
			SubmissionFileURL:     fileURL,
			SubmissionSubmittedAt: time.Now().UTC(),
		},
		fixify.ConnectorFunc(func(_ testing.TB, s *assignmentModel.SubmissionModel, a *assignmentModel.AssignmentModel) {
			s.SubmissionAssignmentID = a.AssignmentID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, s *assignmentModel.SubmissionModel, u *userModel.UserModel) {
			s.SubmissionEmployeeID = u.ID
		}),
	)
}

func Material(title, externalURL string) *fixify.Model[materialModel.MaterialModel] {
	return fixify.NewModel(
		&materialModel.MaterialModel{
			MaterialID:          uuid.New(),
			MaterialTitle:       title,
			MaterialExternalURL: externalURL,
		},
		fixify.ConnectorFunc(func(_ testing.TB, m *materialModel.MaterialModel, b *batchModel.BatchModel) {
			m.MaterialBatchID = b.BatchID
		}),
		fixify.ConnectorFunc(func(_ testing.TB, m *materialModel.MaterialModel, u *userModel.UserModel) {
			m.MaterialUploadedByID = &u.ID
		}),
	)
}

// Insert writes the fixture graph parents first. Batch members are only
// linked through the join tables, the user rows already exist.
func Insert(t testing.TB, db *gorm.DB, models ...fixify.IModel) {
	t.Helper()
	fixify.New(t, models...).Iterate(func(v any) error {
		if b, ok := v.(*batchModel.BatchModel); ok {
			return db.Omit("Trainers.*", "Employees.*").Create(b).Error
		}
		return db.Create(v).Error
	})
}

