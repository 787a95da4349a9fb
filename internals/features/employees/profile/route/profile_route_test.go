package route_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/profile/route"
	notifModel "hrportal_backend/internals/features/notifications/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	route.ProfileRoutes(app.Group("/api/u", authMiddleware.AuthMiddleware(db)), db, storage.NewMockBlobService())
	return app, db
}

func linkedEmployee(t *testing.T, db *gorm.DB, status string) (*userModel.UserModel, *biodataModel.BioDataModel) {
	u := testkit.CreateUser(t, db, constants.RoleEmployee, "asha@corp.test")
	b := testkit.CreateBiodata(t, db, "Asha", "Rao", "asha@home.test", status)
	require.NoError(t, db.Model(b).Update("biodata_user_id", u.ID).Error)
	b.UserID = &u.ID
	return u, b
}

func TestMyProfileRequiresLinkedBiodata(t *testing.T) {
	app, db := setup(t)
	u := testkit.CreateUser(t, db, constants.RoleEmployee, "new@corp.test")
	tok := testkit.Token(t, u)

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/me/profile", tok, nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No biodata linked to your account yet.", body["message"])

	status, body = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/me/dashboard", tok, nil))
	require.Equal(t, http.StatusOK, status)
	data := testkit.Data(t, body)
	assert.Nil(t, data["biodata"])
	training := data["training"].(map[string]any)
	assert.EqualValues(t, 0, training["batches"])
}

func TestMyProfileOnlyForEmployees(t *testing.T) {
	app, db := setup(t)
	admin := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@corp.test")

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/me/profile", testkit.Token(t, admin), nil))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "dashboard", body["redirect"])
}

func TestUpdateMyProfileSyncsPhone(t *testing.T) {
	app, db := setup(t)
	u, b := linkedEmployee(t, db, biodataModel.StatusApproved)
	tok := testkit.Token(t, u)

	status, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/u/me/profile", tok, nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Asha Rao", testkit.Data(t, body)["full_name"])

	status, body = testkit.Do(t, app, testkit.Request(t, http.MethodPatch, "/api/u/me/profile", tok, fiber.Map{
		"contact_number": "9000000001",
		"city":           "Chennai",
	}))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Your profile updated successfully!", body["message"])

	var got biodataModel.BioDataModel
	require.NoError(t, db.First(&got, "biodata_id = ?", b.BioDataID).Error)
	assert.Equal(t, "9000000001", got.ContactNumber)
	assert.Equal(t, "Chennai", got.City)

	var acct userModel.UserModel
	require.NoError(t, db.First(&acct, "id = ?", u.ID).Error)
	assert.Equal(t, "9000000001", acct.Phone)

	var n int64
	require.NoError(t, db.Model(&notifModel.NotificationModel{}).Count(&n).Error)
	assert.Zero(t, n, "self-service edits do not notify admins")

	status, _ = testkit.Do(t, app, testkit.Request(t, http.MethodPatch, "/api/u/me/profile", tok, fiber.Map{
		"contact_number": "12345678901234567890",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestUpdateMyProfilePendingBiodata(t *testing.T) {
	app, db := setup(t)
	u, _ := linkedEmployee(t, db, biodataModel.StatusPending)

	status, _ := testkit.Do(t, app, testkit.Request(t, http.MethodPatch, "/api/u/me/profile", testkit.Token(t, u), fiber.Map{"city": "Pune"}))
	assert.Equal(t, http.StatusBadRequest, status)
}
