package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	assignmentModel "hrportal_backend/internals/features/training/assignments/model"
	"hrportal_backend/internals/features/training/batches/dto"
	"hrportal_backend/internals/features/training/batches/model"
	materialModel "hrportal_backend/internals/features/training/materials/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

var ErrBatchNotFound = errors.New("Batch not found.")

const (
	MsgTrainersInvalid  = "Select a valid choice. Trainers must be active users with the trainer role."
	MsgEmployeesInvalid = "Select a valid choice. Employees must be active users with the employee role."
	MsgEmployeeAssigned = "%s is already assigned to a batch."
	MsgBatchCodeUsed    = "Batch with this code already exists."
)

const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

func orderByName(db *gorm.DB) *gorm.DB { return db.Order("full_name ASC").Order("email ASC") }

// Get loads a batch with its trainers and employees.
func Get(db *gorm.DB, id uuid.UUID) (*model.BatchModel, error) {
	var b model.BatchModel
	err := db.Preload("Trainers", orderByName).Preload("Employees", orderByName).
		First(&b, "batch_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type ListFilter struct {
	Search string
	Status string
}

func ListQuery(db *gorm.DB, f ListFilter) *gorm.DB {
	q := db.Model(&model.BatchModel{})
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(batch_name) LIKE ? OR LOWER(batch_code) LIKE ?", like, like)
	}
	if st := strings.TrimSpace(f.Status); st != "" {
		q = q.Where("batch_status = ?", st)
	}
	return q.Order("batch_start_date DESC").Order("batch_created_at DESC")
}

type memberCount struct {
	BatchID uuid.UUID
	N       int64
}

// Page runs a ListQuery page and attaches member counts.
func Page(db *gorm.DB, q *gorm.DB) ([]dto.BatchRow, error) {
	var batches []model.BatchModel
	if err := q.Find(&batches).Error; err != nil {
		return nil, err
	}
	rows := make([]dto.BatchRow, 0, len(batches))
	if len(batches) == 0 {
		return rows, nil
	}
	ids := make([]uuid.UUID, 0, len(batches))
	for i := range batches {
		ids = append(ids, batches[i].BatchID)
	}

	counts := func(table string) (map[uuid.UUID]int64, error) {
		var cs []memberCount
		err := db.Table(table).Select("batch_id, COUNT(*) AS n").
			Where("batch_id IN ?", ids).Group("batch_id").Scan(&cs).Error
		out := make(map[uuid.UUID]int64, len(cs))
		for _, c := range cs {
			out[c.BatchID] = c.N
		}
		return out, err
	}
	employees, err := counts(model.TableBatchEmployees)
	if err != nil {
		return nil, err
	}
	trainers, err := counts(model.TableBatchTrainers)
	if err != nil {
		return nil, err
	}
	for i := range batches {
		b := &batches[i]
		rows = append(rows, dto.BatchRow{
			BatchModel:    b,
			EmployeeCount: employees[b.BatchID],
			TrainerCount:  trainers[b.BatchID],
		})
	}
	return rows, nil
}

// checkMembers verifies every id is an active user of role. With unassigned
// set, employees already enrolled in any batch other than except are refused.
func checkMembers(tx *gorm.DB, ids []uuid.UUID, role string, unassigned bool, except *uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var users []userModel.UserModel
	if err := tx.Where("id IN ? AND role = ? AND is_active = ?", ids, role, true).Find(&users).Error; err != nil {
		return err
	}
	field, msg := "employee_ids", MsgEmployeesInvalid
	if role == constants.RoleTrainer {
		field, msg = "trainer_ids", MsgTrainersInvalid
	}
	if len(users) != len(ids) {
		return helper.NewFieldError(field, msg)
	}
	if !unassigned {
		return nil
	}

	q := tx.Table(model.TableBatchEmployees).Where("user_id IN ?", ids)
	if except != nil {
		q = q.Where("batch_id <> ?", *except)
	}
	var taken []uuid.UUID
	if err := q.Distinct().Pluck("user_id", &taken).Error; err != nil {
		return err
	}
	if len(taken) == 0 {
		return nil
	}
	fe := helper.FieldErrors{}
	for _, u := range users {
		for _, id := range taken {
			if u.ID == id {
				fe.Add(field, fmt.Sprintf(MsgEmployeeAssigned, u.DisplayName()))
			}
		}
	}
	return &helper.FieldsError{Fields: fe}
}

// replaceMembers rewrites one join table for the batch.
func replaceMembers(tx *gorm.DB, table string, batchID uuid.UUID, ids []uuid.UUID) error {
	if err := tx.Exec("DELETE FROM "+table+" WHERE batch_id = ?", batchID).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]any{"batch_id": batchID, "user_id": id})
	}
	return tx.Table(table).Create(rows).Error
}

func Create(db *gorm.DB, actor uuid.UUID, req *dto.CreateBatchRequest) (*model.BatchModel, error) {
	b := req.ToModel(actor)
	trainers := dto.ParseIDs(req.TrainerIDs)
	employees := dto.ParseIDs(req.EmployeeIDs)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkMembers(tx, trainers, constants.RoleTrainer, false, nil); err != nil {
			return err
		}
		if err := checkMembers(tx, employees, constants.RoleEmployee, true, nil); err != nil {
			return err
		}
		if err := tx.Omit("Trainers", "Employees").Create(b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return helper.NewFieldError("batch_code", MsgBatchCodeUsed)
			}
			return err
		}
		if err := replaceMembers(tx, model.TableBatchTrainers, b.BatchID, trainers); err != nil {
			return err
		}
		return replaceMembers(tx, model.TableBatchEmployees, b.BatchID, employees)
	})
	if err != nil {
		return nil, err
	}

	configs.Audit().Info("batch created",
		zap.String("batch_id", b.BatchID.String()),
		zap.String("batch_code", b.BatchCode),
		zap.Int("trainers", len(trainers)),
		zap.Int("employees", len(employees)),
		zap.String("actor", actor.String()),
	)
	return Get(db, b.BatchID)
}

// Update edits batch fields and, when given, replaces the member sets.
// Any active employee may be enrolled here, including ones in other batches.
func Update(db *gorm.DB, actor, id uuid.UUID, req *dto.UpdateBatchRequest) (*model.BatchModel, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := Get(tx, id)
		if err != nil {
			return err
		}
		cols, fe := req.Apply(b)
		if !fe.Empty() {
			return &helper.FieldsError{Fields: fe}
		}
		if len(cols) > 0 {
			if err := tx.Model(b).Omit("Trainers", "Employees").Select(cols).Updates(b).Error; err != nil {
				return err
			}
		}
		if req.TrainerIDs != nil {
			ids := dto.ParseIDs(*req.TrainerIDs)
			if err := checkMembers(tx, ids, constants.RoleTrainer, false, nil); err != nil {
				return err
			}
			if err := replaceMembers(tx, model.TableBatchTrainers, id, ids); err != nil {
				return err
			}
		}
		if req.EmployeeIDs != nil {
			ids := dto.ParseIDs(*req.EmployeeIDs)
			if err := checkMembers(tx, ids, constants.RoleEmployee, false, nil); err != nil {
				return err
			}
			if err := replaceMembers(tx, model.TableBatchEmployees, id, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	configs.Audit().Info("batch updated",
		zap.String("batch_id", id.String()),
		zap.String("actor", actor.String()),
	)
	return Get(db, id)
}

// Detail is the batch page: sessions by date, assignments by due date and counts.
func Detail(db *gorm.DB, id uuid.UUID) (*dto.BatchDetail, error) {
	b, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	var sessions []sessionModel.TrainingSessionModel
	if err := db.Preload("Trainer").
		Where("training_session_batch_id = ?", id).
		Order("training_session_date_time ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	var assignments []assignmentModel.AssignmentModel
	if err := db.Where("assignment_batch_id = ?", id).
		Order("assignment_due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return &dto.BatchDetail{
		Batch:         b,
		Sessions:      sessions,
		Assignments:   assignments,
		EmployeeCount: len(b.Employees),
		TrainerCount:  len(b.Trainers),
		DurationDays:  b.DurationDays(),
	}, nil
}

// Delete removes the batch, its memberships and uploaded material files.
// Sessions, attendance, assignments and submissions go with it.
func Delete(db *gorm.DB, blob storage.BlobService, actor, id uuid.UUID) (*model.BatchModel, error) {
	var b model.BatchModel
	var files []string
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "batch_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return err
		}
		if err := tx.Model(&materialModel.MaterialModel{}).
			Where("material_batch_id = ? AND material_file_url <> ''", id).
			Pluck("material_file_url", &files).Error; err != nil {
			return err
		}
		var subs []string
		if err := tx.Model(&assignmentModel.SubmissionModel{}).
			Where("submission_assignment_id IN (?)",
				tx.Model(&assignmentModel.AssignmentModel{}).Select("assignment_id").Where("assignment_batch_id = ?", id)).
			Where("submission_file_url <> ''").
			Pluck("submission_file_url", &subs).Error; err != nil {
			return err
		}
		files = append(files, subs...)

		for _, table := range []string{model.TableBatchTrainers, model.TableBatchEmployees} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE batch_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&b).Error
	})
	if err != nil {
		return nil, err
	}

	storage.DeleteAll(blob, files)
	configs.Audit().Info("batch deleted",
		zap.String("batch_id", id.String()),
		zap.String("batch_name", b.BatchName),
		zap.String("actor", actor.String()),
	)
	return &b, nil
}

type candidateRow struct {
	ID         uuid.UUID
	FullName   string
	Email      string
	EmployeeID *string
}

// Candidates lists selectable trainers and employees. In create mode only
// employees outside every batch are offered.
func Candidates(db *gorm.DB, mode string) (trainers, employees []dto.Candidate, err error) {
	var tr []userModel.UserModel
	if err = orderByName(db.Where("role = ? AND is_active = ?", constants.RoleTrainer, true)).Find(&tr).Error; err != nil {
		return nil, nil, err
	}
	trainers = make([]dto.Candidate, 0, len(tr))
	for i := range tr {
		trainers = append(trainers, dto.Candidate{ID: tr[i].ID, Label: tr[i].DisplayName()})
	}

	q := db.Table("users").
		Select("users.id AS id, users.full_name AS full_name, users.email AS email, biodata_requests.biodata_employee_id AS employee_id").
		Joins("LEFT JOIN biodata_requests ON biodata_requests.biodata_user_id = users.id").
		Where("users.role = ? AND users.is_active = ?", constants.RoleEmployee, true)
	if mode != ModeUpdate {
		q = q.Where("users.id NOT IN (SELECT user_id FROM " + model.TableBatchEmployees + ")")
	}
	var rows []candidateRow
	if err = q.Order("users.full_name ASC").Order("users.email ASC").Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	employees = make([]dto.Candidate, 0, len(rows))
	for _, r := range rows {
		empID := "N/A"
		if r.EmployeeID != nil && *r.EmployeeID != "" {
			empID = *r.EmployeeID
		}
		employees = append(employees, dto.Candidate{
			ID:    r.ID,
			Label: fmt.Sprintf("%s (%s - %s)", r.FullName, empID, r.Email),
		})
	}
	return trainers, employees, nil
}

// Trainers returns the batch's trainers for session forms. Unknown or
// malformed ids give an empty list.
func Trainers(db *gorm.DB, rawBatchID string) ([]dto.Member, error) {
	out := []dto.Member{}
	id, err := uuid.Parse(strings.TrimSpace(rawBatchID))
	if err != nil {
		return out, nil
	}
	var users []userModel.UserModel
	err = orderByName(db.Joins("JOIN "+model.TableBatchTrainers+" bt ON bt.user_id = users.id").
		Where("bt.batch_id = ?", id)).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		out = append(out, dto.Member{ID: users[i].ID, Name: users[i].DisplayName()})
	}
	return out, nil
}
