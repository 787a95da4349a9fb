package route_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/dashboard/route"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

func TestTrainingDashboardOverview(t *testing.T) {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	route.TrainingDashboardRoutes(app.Group("/api/u/training", authMiddleware.AuthMiddleware(db)), db)

	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	models := []fixify.IModel{}
	for i := 0; i < 12; i++ {
		models = append(models, testkit.Batch(fmt.Sprintf("Cohort %02d", i), start.AddDate(0, i, 0), start.AddDate(0, i+1, 0)))
	}
	golang := testkit.Batch("Golang Bootcamp", start, start.AddDate(0, 2, 0))
	golang.With(testkit.Session("Channels", start.AddDate(0, 0, 3)))
	models = append(models, golang)
	testkit.Insert(t, db, models...)

	admin := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@corp.test")
	get := func(url string) map[string]any {
		status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, url, testkit.Token(t, admin), nil))
		require.Equal(t, http.StatusOK, status, body)
		return testkit.Data(t, body)
	}

	data := get("/api/u/training/dashboard?batches_page=99")
	batches := data["batches"].(map[string]any)
	pg := batches["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pg["page"])
	assert.Equal(t, float64(13), pg["total"])
	assert.Len(t, batches["items"], 3)

	data = get("/api/u/training/dashboard?q=golang")
	assert.Equal(t, "golang", data["search_query"])
	assert.Len(t, data["batches"].(map[string]any)["items"], 1)
	assert.Len(t, data["sessions"].(map[string]any)["items"], 1)

	stats := data["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_sessions"])

	trainer := testkit.CreateUser(t, db, constants.RoleTrainer, "trainer@corp.test")
	status, _ := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/dashboard", testkit.Token(t, trainer), nil))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestMyTraining(t *testing.T) {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	route.TrainingDashboardRoutes(app.Group("/api/u/training", authMiddleware.AuthMiddleware(db)), db)

	batch := testkit.Batch("Go", time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 1, 0))
	batch.With(
		testkit.Session("Past", time.Now().Add(-24*time.Hour)),
		testkit.Session("Next", time.Now().Add(24*time.Hour)),
		testkit.Assignment("Homework", time.Now().AddDate(0, 0, 5)),
	)
	asha := testkit.User(constants.RoleEmployee, "asha@corp.test").With(batch.Label(testkit.AsEmployee))
	testkit.Insert(t, db, asha)

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/my", testkit.Token(t, asha.Value()), nil))
	require.Equal(t, http.StatusOK, status, body)
	data := testkit.Data(t, body)
	assert.Len(t, data["my_batches"], 1)
	upcoming := data["upcoming_sessions"].([]any)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Next", upcoming[0].(map[string]any)["training_session_title"])
	assert.Len(t, data["pending_assignments"], 1)

	admin := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@corp.test")
	status, body = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/training/my", testkit.Token(t, admin), nil))
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "dashboard", body["redirect"])
}
