package route_test

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/batches/model"
	"hrportal_backend/internals/features/training/batches/route"
	materialModel "hrportal_backend/internals/features/training/materials/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, *storage.MockBlobService) {
	db := testkit.NewDB(t)
	blob := storage.NewMockBlobService()
	app := testkit.NewApp()
	route.BatchRoutes(app.Group("/api/u/training", authMiddleware.AuthMiddleware(db)), db, blob)
	return app, db, blob
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func members(t *testing.T, db *gorm.DB, table string, batchID any) []string {
	t.Helper()
	var ids []string
	require.NoError(t, db.Table(table).Where("batch_id = ?", batchID).Order("user_id").Pluck("user_id", &ids).Error)
	return ids
}

func TestCreateBatch(t *testing.T) {
	app, db, _ := setup(t)
	admin := testkit.User(constants.RoleAdmin, "admin@corp.test")
	trainer := testkit.User(constants.RoleTrainer, "trainer@corp.test")
	emp := testkit.User(constants.RoleEmployee, "emp@corp.test")
	enrolled := testkit.User(constants.RoleEmployee, "enrolled@corp.test")
	existing := testkit.Batch("Existing", day("2025-01-01"), day("2025-02-01"))
	enrolled.With(existing.Label(testkit.AsEmployee))
	testkit.Insert(t, db, admin, trainer, emp, enrolled)
	tok := testkit.Token(t, admin.Value())

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/u/training/batches", tok, fiber.Map{
		"name":         "Go Bootcamp",
		"start_date":   "2026-01-05",
		"end_date":     "2026-02-04",
		"trainer_ids":  []string{trainer.Value().ID.String()},
		"employee_ids": []string{emp.Value().ID.String()},
	}))
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, `Batch "Go Bootcamp" created successfully!`, body["message"])
	data := testkit.Data(t, body)
	assert.Regexp(t, regexp.MustCompile(`^BATCH-\d{6}-[0-9A-F]{4}$`), data["batch_code"])
	assert.Equal(t, model.BatchUpcoming, data["batch_status"])
	assert.Len(t, data["trainers"], 1)
	assert.Len(t, data["employees"], 1)

	t.Run("employee already in a batch", func(t *testing.T) {
		status, body := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/u/training/batches", tok, fiber.Map{
			"name":         "Second",
			"employee_ids": []string{enrolled.Value().ID.String()},
		}))
		require.Equal(t, http.StatusUnprocessableEntity, status)
		errs := body["errors"].(map[string]any)
		assert.Contains(t, errs["employee_ids"], "employee user e is already assigned to a batch.")
	})

	t.Run("trainer must have the trainer role", func(t *testing.T) {
		status, body := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/u/training/batches", tok, fiber.Map{
			"name":        "Third",
			"trainer_ids": []string{emp.Value().ID.String()},
		}))
		require.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body["errors"].(map[string]any), "trainer_ids")
	})

	t.Run("end before start", func(t *testing.T) {
		status, body := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/u/training/batches", tok, fiber.Map{
			"name":       "Backwards",
			"start_date": "2026-03-01",
			"end_date":   "2026-02-01",
		}))
		require.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, []any{"End date cannot be before start date."}, body["errors"].(map[string]any)["end_date"])
	})

	t.Run("scrum master cannot create", func(t *testing.T) {
		sm := testkit.CreateUser(t, db, constants.RoleScrumMaster, "sm@corp.test")
		status, _ := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/u/training/batches", testkit.Token(t, sm), fiber.Map{"name": "X"}))
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestUpdateBatchReplacesMembers(t *testing.T) {
	app, db, _ := setup(t)
	admin := testkit.User(constants.RoleAdmin, "admin@corp.test")
	t1 := testkit.User(constants.RoleTrainer, "t1@corp.test")
	t2 := testkit.User(constants.RoleTrainer, "t2@corp.test")
	e1 := testkit.User(constants.RoleEmployee, "e1@corp.test")
	e2 := testkit.User(constants.RoleEmployee, "e2@corp.test")
	other := testkit.Batch("Other", day("2025-01-01"), day("2025-01-31"))
	batch := testkit.Batch("Go", day("2026-01-01"), day("2026-01-31"))
	t1.With(batch.Label(testkit.AsTrainer))
	e1.With(batch.Label(testkit.AsEmployee))
	e2.With(other.Label(testkit.AsEmployee))
	testkit.Insert(t, db, admin, t1, t2, e1, e2)
	id := batch.Value().BatchID

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodPatch, "/api/u/training/batches/"+id.String(), testkit.Token(t, admin.Value()), fiber.Map{
		"status":       "ongoing",
		"trainer_ids":  []string{t2.Value().ID.String()},
		"employee_ids": []string{e1.Value().ID.String(), e2.Value().ID.String()},
	}))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, `Batch "Go" updated successfully!`, body["message"])

	assert.Equal(t, []string{t2.Value().ID.String()}, members(t, db, model.TableBatchTrainers, id))
	assert.Len(t, members(t, db, model.TableBatchEmployees, id), 2)

	var got model.BatchModel
	require.NoError(t, db.First(&got, "batch_id = ?", id).Error)
	assert.Equal(t, model.BatchOngoing, got.BatchStatus)
	assert.Equal(t, "Go", got.BatchName)

	// omitted lists are left alone, an empty list clears
	status, _ = testkit.Do(t, app, testkit.Request(t, http.MethodPatch, "/api/u/training/batches/"+id.String(), testkit.Token(t, admin.Value()), fiber.Map{
		"employee_ids": []string{},
	}))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, members(t, db, model.TableBatchEmployees, id))
	assert.Len(t, members(t, db, model.TableBatchTrainers, id), 1)
}

func TestBatchDetail(t *testing.T) {
	app, db, _ := setup(t)
	admin := testkit.User(constants.RoleAdmin, "admin@corp.test")
	trainer := testkit.User(constants.RoleTrainer, "trainer@corp.test")
	emp := testkit.User(constants.RoleEmployee, "emp@corp.test")
	batch := testkit.Batch("Go", day("2026-01-01"), day("2026-01-31"))
	later := testkit.Session("Channels", time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC))
	first := testkit.Session("Basics", time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	batch.With(later, first, testkit.Assignment("Quiz", day("2026-01-25")), testkit.Assignment("Intro task", day("2026-01-05")))
	trainer.With(batch.Label(testkit.AsTrainer), first)
	emp.With(batch.Label(testkit.AsEmployee))
	testkit.Insert(t, db, admin, trainer, emp)

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/batches/"+batch.Value().BatchID.String(), testkit.Token(t, admin.Value()), nil))
	require.Equal(t, http.StatusOK, status, body)
	data := testkit.Data(t, body)
	assert.EqualValues(t, 30, data["duration_days"])
	assert.EqualValues(t, 1, data["employee_count"])
	assert.EqualValues(t, 1, data["trainer_count"])

	sessions := data["sessions"].([]any)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Basics", sessions[0].(map[string]any)["training_session_title"])
	assignments := data["assignments"].([]any)
	require.Len(t, assignments, 2)
	assert.Equal(t, "Intro task", assignments[0].(map[string]any)["assignment_title"])

	status, _ = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/batches/not-a-uuid", testkit.Token(t, admin.Value()), nil))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBatchCandidates(t *testing.T) {
	app, db, _ := setup(t)
	admin := testkit.User(constants.RoleAdmin, "admin@corp.test")
	trainer := testkit.User(constants.RoleTrainer, "trainer@corp.test")
	free := testkit.User(constants.RoleEmployee, "free@corp.test")
	taken := testkit.User(constants.RoleEmployee, "taken@corp.test")
	taken.With(testkit.Batch("Go", day("2026-01-01"), day("2026-01-31")).Label(testkit.AsEmployee))
	testkit.Insert(t, db, admin, trainer, free, taken)

	bio := testkit.CreateBiodata(t, db, "Free", "Person", "free@home.test", "approved")
	empID := "EMP-7"
	require.NoError(t, db.Model(bio).Updates(map[string]any{"biodata_user_id": free.Value().ID, "biodata_employee_id": empID}).Error)
	tok := testkit.Token(t, admin.Value())

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/batches/candidates?mode=create", tok, nil))
	require.Equal(t, http.StatusOK, status, body)
	data := testkit.Data(t, body)
	require.Len(t, data["trainers"], 1)
	employees := data["employees"].([]any)
	require.Len(t, employees, 1)
	assert.Equal(t, "employee f (EMP-7 - free@corp.test)", employees[0].(map[string]any)["label"])

	status, body = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/batches/candidates?mode=update", tok, nil))
	require.Equal(t, http.StatusOK, status)
	employees = testkit.Data(t, body)["employees"].([]any)
	require.Len(t, employees, 2)
	assert.Equal(t, "employee t (N/A - taken@corp.test)", employees[1].(map[string]any)["label"])
}

func TestDeleteBatch(t *testing.T) {
	app, db, blob := setup(t)
	admin := testkit.User(constants.RoleAdmin, "admin@corp.test")
	trainer := testkit.User(constants.RoleTrainer, "trainer@corp.test")
	emp := testkit.User(constants.RoleEmployee, "emp@corp.test")
	batch := testkit.Batch("Go", day("2026-01-01"), day("2026-01-31"))
	session := testkit.Session("Basics", time.Now().Add(24*time.Hour))
	batch.With(session)
	trainer.With(batch.Label(testkit.AsTrainer))
	emp.With(batch.Label(testkit.AsEmployee))
	testkit.Insert(t, db, admin, trainer, emp)

	require.NoError(t, db.Create(&materialModel.MaterialModel{
		MaterialBatchID: batch.Value().BatchID,
		MaterialTitle:   "Slides",
		MaterialFileURL: "mock://training/materials/slides.pdf",
	}).Error)

	id := batch.Value().BatchID
	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodDelete, "/api/u/training/batches/"+id.String(), testkit.Token(t, admin.Value()), nil))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, `Batch "Go" deleted.`, body["message"])

	assert.Empty(t, members(t, db, model.TableBatchTrainers, id))
	assert.Empty(t, members(t, db, model.TableBatchEmployees, id))
	var n int64
	require.NoError(t, db.Model(&sessionModel.TrainingSessionModel{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Contains(t, blob.Deleted, "mock://training/materials/slides.pdf")

	status, _ = testkit.Do(t, app, testkit.Request(t, http.MethodDelete, "/api/u/training/batches/"+id.String(), testkit.Token(t, admin.Value()), nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBatchTrainersEndpoint(t *testing.T) {
	app, db, _ := setup(t)
	trainer := testkit.User(constants.RoleTrainer, "trainer@corp.test")
	emp := testkit.User(constants.RoleEmployee, "emp@corp.test")
	batch := testkit.Batch("Go", day("2026-01-01"), day("2026-01-31"))
	trainer.With(batch.Label(testkit.AsTrainer))
	testkit.Insert(t, db, trainer, emp)
	tok := testkit.Token(t, emp.Value())

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/batch-trainers?batch_id="+batch.Value().BatchID.String(), tok, nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{map[string]any{"id": trainer.Value().ID.String(), "name": "trainer t"}}, body["trainers"])

	for _, q := range []string{"", "?batch_id=nope", "?batch_id=" + emp.Value().ID.String()} {
		_, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/batch-trainers"+q, tok, nil))
		assert.Equal(t, []any{}, body["trainers"], q)
	}
}
