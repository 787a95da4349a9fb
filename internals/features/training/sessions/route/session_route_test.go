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
	batchModel "hrportal_backend/internals/features/training/batches/model"
	"hrportal_backend/internals/features/training/sessions/model"
	"hrportal_backend/internals/features/training/sessions/route"
	"hrportal_backend/internals/features/training/sessions/service"
	userModel "hrportal_backend/internals/features/users/user/model"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

type world struct {
	app      *fiber.App
	db       *gorm.DB
	admin    *fixify.Model[userModel.UserModel]
	trainer  *fixify.Model[userModel.UserModel]
	outsider *fixify.Model[userModel.UserModel]
	asha     *fixify.Model[userModel.UserModel]
	ravi     *fixify.Model[userModel.UserModel]
	stranger *fixify.Model[userModel.UserModel]
	batch    *fixify.Model[batchModel.BatchModel]
	session  *fixify.Model[model.TrainingSessionModel]
}

// setup builds one batch with a trainer, two employees and a scheduled session.
func setup(t *testing.T) *world {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	route.SessionRoutes(app.Group("/api/u/training", authMiddleware.AuthMiddleware(db)), db)

	w := &world{app: app, db: db}
	w.batch = testkit.Batch("Go", time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 1, 0))
	w.session = testkit.Session("Basics", time.Now().Add(48*time.Hour).Truncate(time.Second))
	w.batch.With(w.session)
	w.admin = testkit.User(constants.RoleAdmin, "admin@corp.test")
	w.trainer = testkit.User(constants.RoleTrainer, "trainer@corp.test").With(w.batch.Label(testkit.AsTrainer), w.session)
	w.outsider = testkit.User(constants.RoleTrainer, "other@corp.test")
	w.asha = testkit.User(constants.RoleEmployee, "asha@corp.test").With(w.batch.Label(testkit.AsEmployee))
	w.ravi = testkit.User(constants.RoleEmployee, "ravi@corp.test").With(w.batch.Label(testkit.AsEmployee))
	w.stranger = testkit.User(constants.RoleEmployee, "zed@corp.test")
	testkit.Insert(t, db, w.admin, w.trainer, w.outsider, w.asha, w.ravi, w.stranger)
	return w
}

func (w *world) do(t *testing.T, method, url string, as *fixify.Model[userModel.UserModel], body any) (int, map[string]any) {
	return testkit.Do(t, w.app, testkit.Request(t, method, url, testkit.Token(t, as.Value()), body))
}

func future(d time.Duration) string {
	return time.Now().Add(d).UTC().Format(time.RFC3339)
}

func TestCreateSession(t *testing.T) {
	w := setup(t)
	batchID := w.batch.Value().BatchID.String()

	status, body := w.do(t, http.MethodPost, "/api/u/training/batches/"+batchID+"/sessions", w.admin, fiber.Map{
		"title":          "Goroutines",
		"trainer_id":     w.trainer.Value().ID.String(),
		"date_time":      future(72 * time.Hour),
		"duration_hours": 1.5,
		"meeting_link":   "https://meet.example.com/go",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, `Session "Goroutines" created successfully!`, body["message"])
	data := testkit.Data(t, body)
	assert.Equal(t, batchID, data["training_session_batch_id"])
	assert.Equal(t, model.SessionScheduled, data["training_session_status"])

	cases := []struct {
		name  string
		body  fiber.Map
		field string
		msg   string
	}{
		{"missing date", fiber.Map{"title": "x", "batch_id": batchID}, "date_time", "Date and time are required."},
		{"past date", fiber.Map{"title": "x", "batch_id": batchID, "date_time": future(-time.Hour)}, "date_time", "Cannot schedule a session in the past."},
		{"too short", fiber.Map{"title": "x", "batch_id": batchID, "date_time": future(time.Hour), "duration_hours": 0.25}, "duration_hours", "Duration must be at least 30 minutes."},
		{"too long", fiber.Map{"title": "x", "batch_id": batchID, "date_time": future(time.Hour), "duration_hours": 9}, "duration_hours", "Duration cannot exceed 8 hours (please split into multiple sessions)."},
		{"bad link", fiber.Map{"title": "x", "batch_id": batchID, "date_time": future(time.Hour), "meeting_link": "meet.example.com"}, "meeting_link", "Please enter a valid URL (starting with http:// or https://)."},
		{"trainer outside batch", fiber.Map{"title": "x", "batch_id": batchID, "date_time": future(time.Hour), "trainer_id": w.outsider.Value().ID.String()}, "trainer_id",
			"Selected trainer (trainer o) is not assigned to this batch (Go). Please choose a trainer from the batch's assigned trainers list."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := w.do(t, http.MethodPost, "/api/u/training/sessions", w.admin, tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, status, body)
			assert.Equal(t, []any{tc.msg}, body["errors"].(map[string]any)[tc.field])
		})
	}

	t.Run("trainers cannot create", func(t *testing.T) {
		status, _ := w.do(t, http.MethodPost, "/api/u/training/sessions", w.trainer, fiber.Map{"title": "x"})
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestUpdateSession(t *testing.T) {
	w := setup(t)
	url := "/api/u/training/sessions/" + w.session.Value().TrainingSessionID.String()

	status, body := w.do(t, http.MethodPatch, url, w.admin, fiber.Map{"title": "Basics II", "trainer_id": ""})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, `Session "Basics II" updated successfully!`, body["message"])

	var got model.TrainingSessionModel
	require.NoError(t, w.db.First(&got, "training_session_id = ?", w.session.Value().TrainingSessionID).Error)
	assert.Equal(t, "Basics II", got.TrainingSessionTitle)
	assert.Nil(t, got.TrainingSessionTrainerID)
	assert.Equal(t, w.batch.Value().BatchID, got.TrainingSessionBatchID)

	status, body = w.do(t, http.MethodPatch, url, w.admin, fiber.Map{"trainer_id": w.outsider.Value().ID.String()})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []any{"Selected trainer (trainer o) is not assigned to this batch (Go)."}, body["errors"].(map[string]any)["trainer_id"])
}

func TestSessionDetailAccess(t *testing.T) {
	w := setup(t)
	url := "/api/u/training/sessions/" + w.session.Value().TrainingSessionID.String()

	for _, tc := range []struct {
		who     *fixify.Model[userModel.UserModel]
		status  int
		canMark bool
	}{
		{w.admin, http.StatusOK, true},
		{w.trainer, http.StatusOK, true},
		{w.asha, http.StatusOK, false},
		{w.outsider, http.StatusForbidden, false},
		{w.stranger, http.StatusForbidden, false},
	} {
		status, body := w.do(t, http.MethodGet, url, tc.who, nil)
		require.Equal(t, tc.status, status, tc.who.Value().Email)
		if status == http.StatusOK {
			assert.Equal(t, tc.canMark, testkit.Data(t, body)["can_mark_attendance"], tc.who.Value().Email)
		} else {
			assert.Equal(t, "You don't have permission to view this session.", body["message"])
		}
	}
}

func TestMarkAttendance(t *testing.T) {
	w := setup(t)
	base := "/api/u/training/sessions/" + w.session.Value().TrainingSessionID.String()
	asha, ravi := w.asha.Value().ID.String(), w.ravi.Value().ID.String()

	status, _ := w.do(t, http.MethodPost, base+"/attendance", w.outsider, fiber.Map{"records": []fiber.Map{}})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := w.do(t, http.MethodGet, base+"/attendance", w.trainer, nil)
	require.Equal(t, http.StatusOK, status, body)
	roster := testkit.Data(t, body)
	assert.Equal(t, false, roster["is_update"])
	assert.Len(t, roster["employees"], 2)

	status, body = w.do(t, http.MethodPost, base+"/attendance", w.trainer, fiber.Map{
		"records": []fiber.Map{{"employee_id": asha, "status": "late", "notes": "  traffic  "}},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Attendance successfully marked!", body["message"])

	var records []model.AttendanceModel
	require.NoError(t, w.db.Order("attendance_notes DESC").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, model.AttendanceLate, records[0].AttendanceStatus)
	assert.Equal(t, "traffic", records[0].AttendanceNotes)
	assert.Equal(t, model.AttendanceAbsent, records[1].AttendanceStatus)
	assert.Equal(t, w.trainer.Value().ID, *records[0].AttendanceMarkedByID)

	status, body = w.do(t, http.MethodGet, base, w.asha, nil)
	require.Equal(t, http.StatusOK, status)
	detail := testkit.Data(t, body)
	assert.EqualValues(t, 50, detail["attendance_percentage"])
	assert.Len(t, detail["attendance_records"], 2)

	status, body = w.do(t, http.MethodPost, base+"/attendance", w.admin, fiber.Map{
		"records": []fiber.Map{{"employee_id": asha, "status": "present"}, {"employee_id": ravi, "status": "present"}},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Attendance successfully updated!", body["message"])
	var n int64
	require.NoError(t, w.db.Model(&model.AttendanceModel{}).Where("attendance_status = ?", model.AttendancePresent).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	status, _ = w.do(t, http.MethodPost, base+"/attendance", w.admin, fiber.Map{
		"records": []fiber.Map{{"employee_id": asha, "status": "sleeping"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestAttendancePercentageRounding(t *testing.T) {
	records := []model.AttendanceModel{
		{AttendanceStatus: model.AttendancePresent},
		{AttendanceStatus: model.AttendanceAbsent},
		{AttendanceStatus: model.AttendanceExcused},
	}
	assert.Equal(t, 33.3, service.AttendancePercentage(records))
	assert.Zero(t, service.AttendancePercentage(nil))
}
