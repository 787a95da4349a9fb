package route_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/notifications/model"
	"hrportal_backend/internals/features/notifications/route"
	"hrportal_backend/internals/features/notifications/service"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

func TestNotificationInbox(t *testing.T) {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	route.NotificationRoutes(app.Group("/api/u", authMiddleware.AuthMiddleware(db)), db)

	admin := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@corp.test")
	other := testkit.CreateUser(t, db, constants.RoleSuperAdmin, "root@corp.test")
	employee := testkit.CreateUser(t, db, constants.RoleEmployee, "asha@corp.test")

	n, err := service.NotifyAdmins(db, constants.NotifBiodataNew, "New bio data", "Asha submitted", "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, service.Create(db, admin.ID, constants.NotifSubmissionGraded, "Other", "x", ""))

	token := testkit.Token(t, admin)
	do := func(method, url string) (int, map[string]any) {
		return testkit.Do(t, app, testkit.Request(t, method, url, token, nil))
	}

	status, body := do(http.MethodGet, "/api/u/notifications")
	require.Equal(t, http.StatusOK, status, body)
	items := body["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, float64(2), body["pagination"].(map[string]any)["total"])

	_, body = do(http.MethodGet, "/api/u/notifications/unread-count")
	assert.Equal(t, float64(2), body["unread_notifications"])

	first := items[0].(map[string]any)["notification_id"].(string)
	status, _ = do(http.MethodPost, "/api/u/notifications/"+first+"/read")
	require.Equal(t, http.StatusOK, status)
	status, body = do(http.MethodGet, "/api/u/notifications?unread=true")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	// someone else's notification is not found
	var foreign model.NotificationModel
	require.NoError(t, db.First(&foreign, "notification_recipient_id = ?", other.ID).Error)
	status, _ = do(http.MethodPost, "/api/u/notifications/"+foreign.NotificationID.String()+"/read")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(http.MethodPost, "/api/u/notifications/mark-all-read")
	require.Equal(t, http.StatusOK, status)
	unread, err := service.UnreadCount(db, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = service.UnreadCount(db, employee.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
