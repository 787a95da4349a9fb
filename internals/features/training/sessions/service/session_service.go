package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	"hrportal_backend/internals/features/training/sessions/dto"
	"hrportal_backend/internals/features/training/sessions/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
)

var (
	ErrSessionNotFound = errors.New("Session not found.")
	ErrViewDenied      = errors.New("You don't have permission to view this session.")
	ErrMarkDenied      = errors.New("You don't have permission to mark/update attendance.")
)

// Viewer is the signed-in user asking for a session.
type Viewer struct {
	ID   uuid.UUID
	Role string
}

func (v Viewer) isAdmin() bool {
	return v.Role == constants.RoleAdmin || v.Role == constants.RoleSuperAdmin
}

// CanMark reports whether v may take attendance for sessions of batchID.
func CanMark(db *gorm.DB, v Viewer, batchID uuid.UUID) (bool, error) {
	if v.isAdmin() {
		return true, nil
	}
	return batchModel.IsBatchTrainer(db, batchID, v.ID)
}

func findSession(db *gorm.DB, id uuid.UUID) (*model.TrainingSessionModel, error) {
	var s model.TrainingSessionModel
	err := db.Preload("Batch").Preload("Trainer").First(&s, "training_session_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// checkTrainer enforces that the lead trainer is active and one of the batch's trainers.
func checkTrainer(tx *gorm.DB, b *batchModel.BatchModel, trainerID *uuid.UUID, editing bool) error {
	if trainerID == nil {
		return nil
	}
	var u userModel.UserModel
	err := tx.Where("id = ? AND is_active = ? AND role IN ?", *trainerID, true,
		[]string{constants.RoleTrainer, constants.RoleAdmin, constants.RoleSuperAdmin}).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.NewFieldError("trainer_id", "Select a valid choice. That choice is not one of the available choices.")
	}
	if err != nil {
		return err
	}
	ok, err := batchModel.IsBatchTrainer(tx, b.BatchID, u.ID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	msg := fmt.Sprintf("Selected trainer (%s) is not assigned to this batch (%s).", u.DisplayName(), b.BatchName)
	if !editing {
		msg += " Please choose a trainer from the batch's assigned trainers list."
	}
	return helper.NewFieldError("trainer_id", msg)
}

func Create(db *gorm.DB, actor uuid.UUID, at time.Time, req *dto.CreateSessionRequest) (*model.TrainingSessionModel, error) {
	s := req.ToModel(at, actor)
	err := db.Transaction(func(tx *gorm.DB) error {
		var b batchModel.BatchModel
		if err := tx.First(&b, "batch_id = ?", s.TrainingSessionBatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NewFieldError("batch_id", "Select a valid choice. That batch does not exist.")
			}
			return err
		}
		if err := checkTrainer(tx, &b, s.TrainingSessionTrainerID, false); err != nil {
			return err
		}
		return tx.Omit("Batch", "Trainer").Create(s).Error
	})
	if err != nil {
		return nil, err
	}
	configs.Audit().Info("session created",
		zap.String("session_id", s.TrainingSessionID.String()),
		zap.String("batch_id", s.TrainingSessionBatchID.String()),
		zap.String("actor", actor.String()),
	)
	return findSession(db, s.TrainingSessionID)
}

func Update(db *gorm.DB, actor, id uuid.UUID, req *dto.UpdateSessionRequest, now time.Time) (*model.TrainingSessionModel, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := findSession(tx, id)
		if err != nil {
			return err
		}
		cols, fe := req.Apply(s, now)
		if !fe.Empty() {
			return &helper.FieldsError{Fields: fe}
		}
		if req.TrainerID != nil {
			if err := checkTrainer(tx, s.Batch, s.TrainingSessionTrainerID, true); err != nil {
				return err
			}
		}
		if len(cols) == 0 {
			return nil
		}
		return tx.Model(s).Omit("Batch", "Trainer").Select(cols).Updates(s).Error
	})
	if err != nil {
		return nil, err
	}
	configs.Audit().Info("session updated",
		zap.String("session_id", id.String()),
		zap.String("actor", actor.String()),
	)
	return findSession(db, id)
}

// Detail applies the view rule: batch trainers, admins and enrolled employees.
func Detail(db *gorm.DB, v Viewer, id uuid.UUID) (*dto.SessionDetail, error) {
	s, err := findSession(db, id)
	if err != nil {
		return nil, err
	}
	canMark, err := CanMark(db, v, s.TrainingSessionBatchID)
	if err != nil {
		return nil, err
	}
	if !canMark {
		enrolled, err := batchModel.IsBatchEmployee(db, s.TrainingSessionBatchID, v.ID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrViewDenied
		}
	}

	out := &dto.SessionDetail{Session: s, CanMarkAttendance: canMark}
	if s.TrainingSessionAttendanceTaken {
		if err := db.Preload("Employee").
			Joins("JOIN users ON users.id = attendances.attendance_employee_id").
			Where("attendance_session_id = ?", id).
			Order("users.full_name ASC").
			Find(&out.AttendanceRecords).Error; err != nil {
			return nil, err
		}
		out.AttendancePercentage = AttendancePercentage(out.AttendanceRecords)
	}
	return out, nil
}

// AttendancePercentage is present+late over all records, one decimal.
func AttendancePercentage(records []model.AttendanceModel) float64 {
	if len(records) == 0 {
		return 0
	}
	attended := 0
	for _, r := range records {
		if r.AttendanceStatus == model.AttendancePresent || r.AttendanceStatus == model.AttendanceLate {
			attended++
		}
	}
	pct := float64(attended) * 100 / float64(len(records))
	return math.Round(pct*10) / 10
}

func enrolledEmployees(db *gorm.DB, batchID uuid.UUID) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := db.Joins("JOIN "+batchModel.TableBatchEmployees+" be ON be.user_id = users.id").
		Where("be.batch_id = ?", batchID).
		Order("users.full_name ASC").Order("users.email ASC").
		Find(&users).Error
	return users, err
}

// Roster lists the batch's employees with any attendance already recorded.
func Roster(db *gorm.DB, v Viewer, id uuid.UUID) (*dto.Roster, error) {
	s, err := findSession(db, id)
	if err != nil {
		return nil, err
	}
	ok, err := CanMark(db, v, s.TrainingSessionBatchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMarkDenied
	}

	employees, err := enrolledEmployees(db, s.TrainingSessionBatchID)
	if err != nil {
		return nil, err
	}
	existing := map[uuid.UUID]model.AttendanceModel{}
	if s.TrainingSessionAttendanceTaken {
		var records []model.AttendanceModel
		if err := db.Where("attendance_session_id = ?", id).Find(&records).Error; err != nil {
			return nil, err
		}
		for _, r := range records {
			existing[r.AttendanceEmployeeID] = r
		}
	}

	out := &dto.Roster{Session: s, IsUpdate: len(existing) > 0, Entries: make([]dto.RosterEntry, 0, len(employees))}
	for _, e := range employees {
		entry := dto.RosterEntry{EmployeeID: e.ID, FullName: e.FullName, Email: e.Email, Status: model.AttendanceAbsent}
		if r, ok := existing[e.ID]; ok {
			entry.Status, entry.Notes, entry.Marked = r.AttendanceStatus, r.AttendanceNotes, true
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

// MarkAttendance replaces the session's attendance with one record per
// enrolled employee. Employees missing from req are marked absent. The
// returned flag tells whether earlier records were replaced.
func MarkAttendance(db *gorm.DB, v Viewer, id uuid.UUID, req *dto.MarkAttendanceRequest) (bool, error) {
	s, err := findSession(db, id)
	if err != nil {
		return false, err
	}
	ok, err := CanMark(db, v, s.TrainingSessionBatchID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrMarkDenied
	}

	byEmployee := req.ByEmployee()
	var updated bool
	var present int
	err = db.Transaction(func(tx *gorm.DB) error {
		var previous int64
		if err := tx.Model(&model.AttendanceModel{}).Where("attendance_session_id = ?", id).Count(&previous).Error; err != nil {
			return err
		}
		updated = s.TrainingSessionAttendanceTaken && previous > 0
		if err := tx.Where("attendance_session_id = ?", id).Delete(&model.AttendanceModel{}).Error; err != nil {
			return err
		}

		employees, err := enrolledEmployees(tx, s.TrainingSessionBatchID)
		if err != nil {
			return err
		}
		records := make([]model.AttendanceModel, 0, len(employees))
		for _, e := range employees {
			entry := byEmployee[e.ID]
			status := entry.Status
			if status == "" {
				status = model.AttendanceAbsent
			}
			if status == model.AttendancePresent || status == model.AttendanceLate {
				present++
			}
			records = append(records, model.AttendanceModel{
				AttendanceSessionID:  id,
				AttendanceEmployeeID: e.ID,
				AttendanceStatus:     status,
				AttendanceNotes:      strings.TrimSpace(entry.Notes),
				AttendanceMarkedByID: &v.ID,
			})
		}
		if len(records) > 0 {
			if err := tx.Omit("Session", "Employee").Create(&records).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.TrainingSessionModel{}).
			Where("training_session_id = ?", id).
			Update("training_session_attendance_taken", true).Error
	})
	if err != nil {
		return false, err
	}

	configs.Audit().Info("attendance marked",
		zap.String("session_id", id.String()),
		zap.Bool("update", updated),
		zap.Int("present", present),
		zap.String("actor", v.ID.String()),
	)
	return updated, nil
}
