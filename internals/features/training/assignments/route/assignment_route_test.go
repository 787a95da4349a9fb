package route_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/assignments/model"
	"hrportal_backend/internals/features/training/assignments/route"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	notifModel "hrportal_backend/internals/features/notifications/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

type world struct {
	app        *fiber.App
	db         *gorm.DB
	blob       *storage.MockBlobService
	admin      *fixify.Model[userModel.UserModel]
	trainer    *fixify.Model[userModel.UserModel]
	outsider   *fixify.Model[userModel.UserModel]
	asha       *fixify.Model[userModel.UserModel]
	stranger   *fixify.Model[userModel.UserModel]
	batch      *fixify.Model[batchModel.BatchModel]
	other      *fixify.Model[batchModel.BatchModel]
	session    *fixify.Model[sessionModel.TrainingSessionModel]
	foreign    *fixify.Model[sessionModel.TrainingSessionModel]
	assignment *fixify.Model[model.AssignmentModel]
}

func setup(t *testing.T) *world {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	blob := storage.NewMockBlobService()
	route.AssignmentRoutes(app.Group("/api/u/training", authMiddleware.AuthMiddleware(db)), db, blob)

	w := &world{app: app, db: db, blob: blob}
	start, end := time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 1, 0)
	w.batch = testkit.Batch("Go", start, end)
	w.other = testkit.Batch("Rust", start, end)
	w.session = testkit.Session("Basics", time.Now().Add(24*time.Hour))
	w.foreign = testkit.Session("Ownership", time.Now().Add(24*time.Hour))
	w.assignment = testkit.Assignment("Build a CLI", time.Now().AddDate(0, 0, 7))
	w.batch.With(w.session, w.assignment)
	w.other.With(w.foreign)

	w.admin = testkit.User(constants.RoleAdmin, "admin@corp.test")
	w.trainer = testkit.User(constants.RoleTrainer, "trainer@corp.test").With(w.batch.Label(testkit.AsTrainer))
	w.outsider = testkit.User(constants.RoleTrainer, "other@corp.test").With(w.other.Label(testkit.AsTrainer))
	w.asha = testkit.User(constants.RoleEmployee, "asha@corp.test").With(w.batch.Label(testkit.AsEmployee))
	w.stranger = testkit.User(constants.RoleEmployee, "zed@corp.test")
	testkit.Insert(t, db, w.admin, w.trainer, w.outsider, w.asha, w.stranger)
	return w
}

func (w *world) do(t *testing.T, method, url string, as *fixify.Model[userModel.UserModel], body any) (int, map[string]any) {
	return testkit.Do(t, w.app, testkit.Request(t, method, url, testkit.Token(t, as.Value()), body))
}

func (w *world) submit(t *testing.T, as *fixify.Model[userModel.UserModel], name string) (int, map[string]any) {
	url := "/api/u/training/assignments/" + w.assignment.Value().AssignmentID.String() + "/submit"
	var files []testkit.File
	if name != "" {
		files = []testkit.File{{Field: "file", Name: name, Content: []byte("package main")}}
	}
	return testkit.Do(t, w.app, testkit.Multipart(t, http.MethodPost, url, testkit.Token(t, as.Value()), nil, files))
}

func errorsOf(body map[string]any) map[string]any {
	errs, _ := body["errors"].(map[string]any)
	return errs
}

func TestCreateAssignment(t *testing.T) {
	w := setup(t)
	batchID := w.batch.Value().BatchID.String()

	status, body := w.do(t, http.MethodPost, "/api/u/training/assignments", w.admin, fiber.Map{
		"title":      "Write tests",
		"batch_id":   batchID,
		"session_id": w.session.Value().TrainingSessionID.String(),
		"due_date":   time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, `Assignment "Write tests" created successfully!`, body["message"])
	data := testkit.Data(t, body)
	assert.Equal(t, float64(100), data["assignment_max_score"])
	assert.Equal(t, model.AssignmentPending, data["assignment_status"])

	t.Run("session from another batch", func(t *testing.T) {
		status, body := w.do(t, http.MethodPost, "/api/u/training/assignments", w.admin, fiber.Map{
			"title":      "x",
			"batch_id":   batchID,
			"session_id": w.foreign.Value().TrainingSessionID.String(),
			"due_date":   "2030-01-01",
		})
		require.Equal(t, http.StatusUnprocessableEntity, status, body)
		assert.Equal(t, []any{"Selected session does not belong to this batch."}, errorsOf(body)["session_id"])
	})

	t.Run("due date required", func(t *testing.T) {
		status, body := w.do(t, http.MethodPost, "/api/u/training/assignments", w.admin, fiber.Map{"title": "x", "batch_id": batchID})
		require.Equal(t, http.StatusUnprocessableEntity, status, body)
		assert.Contains(t, errorsOf(body), "due_date")
	})

	t.Run("trainers cannot create", func(t *testing.T) {
		status, _ := w.do(t, http.MethodPost, "/api/u/training/assignments", w.trainer, fiber.Map{"title": "x"})
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestUpdateAssignmentDetachesSession(t *testing.T) {
	w := setup(t)
	id := w.assignment.Value().AssignmentID

	status, body := w.do(t, http.MethodPatch, "/api/u/training/assignments/"+id.String(), w.admin, fiber.Map{
		"title":      "Build a better CLI",
		"session_id": "",
		"max_score":  50,
	})
	require.Equal(t, http.StatusOK, status, body)

	var got model.AssignmentModel
	require.NoError(t, w.db.First(&got, "assignment_id = ?", id).Error)
	assert.Equal(t, "Build a better CLI", got.AssignmentTitle)
	assert.Equal(t, 50, got.AssignmentMaxScore)
	assert.Nil(t, got.AssignmentSessionID)

	status, body = w.do(t, http.MethodPatch, "/api/u/training/assignments/"+id.String(), w.admin, fiber.Map{
		"session_id": w.foreign.Value().TrainingSessionID.String(),
	})
	require.Equal(t, http.StatusUnprocessableEntity, status, body)
}

func TestSubmitAssignment(t *testing.T) {
	w := setup(t)

	status, body := w.submit(t, w.asha, "main.py")
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Assignment submitted successfully!", body["message"])
	first := testkit.Data(t, body)["submission_file_url"].(string)
	assert.Equal(t, 1, w.blob.Count())

	// grade it, then resubmit: the grade is cleared and the old file removed
	var sub model.SubmissionModel
	require.NoError(t, w.db.First(&sub, "submission_employee_id = ?", w.asha.Value().ID).Error)
	status, body = w.do(t, http.MethodPatch, "/api/u/training/submissions/"+sub.SubmissionID.String()+"/grade", w.admin, fiber.Map{"score": 80})
	require.Equal(t, http.StatusOK, status, body)

	status, body = w.submit(t, w.asha, "main_v2.py")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []string{first}, w.blob.Deleted)

	require.NoError(t, w.db.First(&sub, "submission_id = ?", sub.SubmissionID).Error)
	assert.Nil(t, sub.SubmissionScore)
	assert.Nil(t, sub.SubmissionGradedByID)
	assert.Equal(t, model.SubmissionSubmitted, sub.SubmissionStatus)

	var n int64
	w.db.Model(&model.SubmissionModel{}).Count(&n)
	assert.EqualValues(t, 1, n)

	t.Run("wrong extension", func(t *testing.T) {
		status, body := w.submit(t, w.asha, "virus.exe")
		require.Equal(t, http.StatusUnprocessableEntity, status, body)
		assert.Contains(t, errorsOf(body), "file")
	})
	t.Run("missing file", func(t *testing.T) {
		status, body := w.submit(t, w.asha, "")
		require.Equal(t, http.StatusUnprocessableEntity, status, body)
		assert.Equal(t, []any{"This field is required."}, errorsOf(body)["file"])
	})
	t.Run("not enrolled", func(t *testing.T) {
		status, _ := w.submit(t, w.stranger, "main.py")
		assert.Equal(t, http.StatusForbidden, status)
	})
	t.Run("staff cannot submit", func(t *testing.T) {
		status, body := w.submit(t, w.trainer, "main.py")
		require.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Only employees can submit assignments.", body["message"])
	})
}

func TestGradeSubmission(t *testing.T) {
	w := setup(t)
	sub := model.SubmissionModel{
		SubmissionAssignmentID: w.assignment.Value().AssignmentID,
		SubmissionEmployeeID:   w.asha.Value().ID,
		SubmissionFileURL:      "mock://training/submissions/a.zip",
		SubmissionSubmittedAt:  time.Now().UTC(),
	}
	require.NoError(t, w.db.Create(&sub).Error)
	url := "/api/u/training/submissions/" + sub.SubmissionID.String() + "/grade"

	status, _ := w.do(t, http.MethodPatch, url, w.outsider, fiber.Map{"score": 10})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := w.do(t, http.MethodPatch, url, w.trainer, fiber.Map{"score": 101})
	require.Equal(t, http.StatusUnprocessableEntity, status, body)
	assert.Equal(t, []any{"Score must be between 0 and 100."}, errorsOf(body)["score"])

	status, body = w.do(t, http.MethodPatch, url, w.trainer, fiber.Map{"score": 92.5, "feedback": "Nice"})
	require.Equal(t, http.StatusOK, status, body)
	data := testkit.Data(t, body)
	assert.Equal(t, model.SubmissionGraded, data["submission_status"])
	assert.Equal(t, 92.5, data["submission_score"])

	var notes []notifModel.NotificationModel
	require.NoError(t, w.db.Where("notification_recipient_id = ?", w.asha.Value().ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, constants.NotifSubmissionGraded, notes[0].NotificationType)
	assert.Equal(t, `Your submission for "Build a CLI" was graded: 92.5/100.`, notes[0].NotificationMessage)
}

func TestAssignmentDetail(t *testing.T) {
	w := setup(t)
	url := "/api/u/training/assignments/" + w.assignment.Value().AssignmentID.String()

	status, body := w.submit(t, w.asha, "main.py")
	require.Equal(t, http.StatusCreated, status, body)

	status, body = w.do(t, http.MethodGet, url, w.trainer, nil)
	require.Equal(t, http.StatusOK, status, body)
	data := testkit.Data(t, body)
	assert.Equal(t, float64(1), data["submission_count"])

	status, _ = w.do(t, http.MethodGet, url, w.asha, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
