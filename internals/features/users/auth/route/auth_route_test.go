package route_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	authModel "hrportal_backend/internals/features/users/auth/model"
	"hrportal_backend/internals/features/users/auth/route"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/testkit"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testkit.NewDB(t)
	app := testkit.NewApp()
	route.AuthRoutes(app, db)
	return app, db
}

func login(t *testing.T, app *fiber.App, email, password string) (int, map[string]any) {
	return testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}))
}

func TestLogin(t *testing.T) {
	app, db := setup(t)
	testkit.CreateUser(t, db, constants.RoleEmployee, "asha@example.com")
	testkit.CreateUser(t, db, constants.RoleAdmin, "hr@example.com")

	t.Run("employee lands on employee dashboard", func(t *testing.T) {
		code, body := login(t, app, "  ASHA@example.com ", testkit.Password)
		require.Equal(t, http.StatusOK, code, body)
		data := testkit.Data(t, body)
		assert.Equal(t, "employee_dashboard", data["home"])
		assert.NotEmpty(t, data["access_token"])
		assert.Equal(t, map[string]any{}, data["permissions"])
	})

	t.Run("staff lands on dashboard", func(t *testing.T) {
		code, body := login(t, app, "hr@example.com", testkit.Password)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "dashboard", testkit.Data(t, body)["home"])
	})

	t.Run("wrong password", func(t *testing.T) {
		code, body := login(t, app, "hr@example.com", "nope-nope")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid email or password.", body["message"])
	})

	t.Run("unknown email", func(t *testing.T) {
		code, body := login(t, app, "ghost@example.com", testkit.Password)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid email or password.", body["message"])
	})

	t.Run("inactive account", func(t *testing.T) {
		u := testkit.CreateUser(t, db, constants.RoleTrainer, "off@example.com")
		require.NoError(t, db.Model(u).Updates(map[string]any{"status": constants.StatusInactive, "is_active": false}).Error)
		code, body := login(t, app, "off@example.com", testkit.Password)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Account is inactive.", body["message"])
	})

	var refreshed userModel.UserModel
	require.NoError(t, db.First(&refreshed, "email = ?", "hr@example.com").Error)
	assert.NotNil(t, refreshed.LastLoginAt)
}

func TestRefreshRotatesToken(t *testing.T) {
	app, db := setup(t)
	testkit.CreateUser(t, db, constants.RoleAdmin, "hr@example.com")

	_, body := login(t, app, "hr@example.com", testkit.Password)
	oldRefresh := testkit.Data(t, body)["refresh_token"].(string)

	code, body := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"refresh_token": oldRefresh,
	}))
	require.Equal(t, http.StatusOK, code, body)
	newRefresh := testkit.Data(t, body)["refresh_token"].(string)
	assert.NotEqual(t, oldRefresh, newRefresh)

	// the old token was rotated out
	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"refresh_token": oldRefresh,
	}))
	assert.Equal(t, http.StatusUnauthorized, code)

	var n int64
	require.NoError(t, db.Model(&authModel.RefreshToken{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestMeAndLogout(t *testing.T) {
	app, db := setup(t)
	u := testkit.CreateUser(t, db, constants.RoleScrumMaster, "sm@example.com")
	tok := testkit.Token(t, u)

	code, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/auth/me", tok, nil))
	require.Equal(t, http.StatusOK, code)
	user := testkit.Data(t, body)["user"].(map[string]any)
	assert.Equal(t, "sm@example.com", user["email"])

	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/logout", tok, nil))
	require.Equal(t, http.StatusOK, code)

	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/auth/me", tok, nil))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestChangePassword(t *testing.T) {
	app, db := setup(t)
	u := testkit.CreateUser(t, db, constants.RoleEmployee, "e@example.com")
	tok := testkit.Token(t, u)

	cases := []struct {
		name  string
		body  map[string]string
		field string
		msg   string
	}{
		{"wrong current", map[string]string{"current_password": "bad", "new_password": "newpass123", "confirm_password": "newpass123"}, "current_password", "Current password is incorrect"},
		{"mismatch", map[string]string{"current_password": testkit.Password, "new_password": "newpass123", "confirm_password": "newpass124"}, "confirm_password", "Passwords do not match"},
		{"too short", map[string]string{"current_password": testkit.Password, "new_password": "short", "confirm_password": "short"}, "new_password", "Password must be at least 8 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/change-password", tok, tc.body))
			require.Equal(t, http.StatusUnprocessableEntity, code)
			errs := body["errors"].(map[string]any)
			assert.Equal(t, []any{tc.msg}, errs[tc.field])
		})
	}

	code, _ := testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/change-password", tok, map[string]string{
		"current_password": testkit.Password, "new_password": "newpass123", "confirm_password": "newpass123",
	}))
	require.Equal(t, http.StatusOK, code)

	code, _ = login(t, app, "e@example.com", "newpass123")
	assert.Equal(t, http.StatusOK, code)
}

func TestSignOutAll(t *testing.T) {
	app, db := setup(t)
	testkit.CreateUser(t, db, constants.RoleAdmin, "hr@example.com")

	_, first := login(t, app, "hr@example.com", testkit.Password)
	_, second := login(t, app, "hr@example.com", testkit.Password)
	tok := testkit.Data(t, first)["access_token"].(string)
	otherRefresh := testkit.Data(t, second)["refresh_token"].(string)

	code, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/auth/sessions", tok, nil))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 2)

	code, body = testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/signout-all", tok, nil))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, testkit.Data(t, body)["revoked"])

	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"refresh_token": otherRefresh,
	}))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/api/auth/me", tok, nil))
	assert.Equal(t, http.StatusUnauthorized, code)
}
