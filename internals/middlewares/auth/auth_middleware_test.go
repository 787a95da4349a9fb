package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	authModel "hrportal_backend/internals/features/users/auth/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

func newApp(db *gorm.DB) *fiber.App {
	app := testkit.NewApp()
	g := app.Group("/p", auth.AuthMiddleware(db))
	g.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("userRole"),
			"email":   c.Locals("user_email"),
		})
	})
	g.Get("/users", auth.RequirePermission(constants.ModuleUsers, constants.ActionView), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	g.Get("/users/edit", auth.RequirePermission(constants.ModuleUsers, constants.ActionView, constants.ActionEdit), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	g.Get("/mine", auth.EmployeesOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	g.Get("/admins", auth.OnlyRoles("", constants.AdminAndAbove...), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuthMiddlewareStoresLocals(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@example.com")
	app := newApp(db)

	code, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/whoami", testkit.Token(t, u), nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, u.ID.String(), body["user_id"])
	assert.Equal(t, constants.RoleAdmin, body["role"])
	assert.Equal(t, "admin@example.com", body["email"])
}

func TestAuthMiddlewareCookieToken(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleTrainer, "t@example.com")
	app := newApp(db)

	req := testkit.Request(t, http.MethodGet, "/p/whoami", "", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: testkit.Token(t, u)})
	code, _ := testkit.Do(t, app, req)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@example.com")
	app := newApp(db)

	t.Run("no token", func(t *testing.T) {
		code, _ := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/whoami", "", nil))
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":  u.ID.String(),
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other"))
		require.NoError(t, err)
		code, _ := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/whoami", tok, nil))
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("expired", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":  u.ID.String(),
			"iat": time.Now().Add(-2 * time.Hour).Unix(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		}).SignedString([]byte(testkit.JWTSecret))
		require.NoError(t, err)
		code, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/whoami", tok, nil))
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Unauthorized - Token expired", body["message"])
	})

	t.Run("blacklisted", func(t *testing.T) {
		tok := testkit.Token(t, u)
		require.NoError(t, db.Create(&authModel.TokenBlacklist{Token: tok, ExpiredAt: time.Now().Add(time.Hour)}).Error)
		code, _ := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/whoami", tok, nil))
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestAuthMiddlewareInactiveUser(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleEmployee, "e@example.com")
	require.NoError(t, db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).
		Updates(map[string]any{"status": constants.StatusInactive, "is_active": false}).Error)

	code, body := testkit.Do(t, newApp(db), testkit.Request(t, http.MethodGet, "/p/whoami", testkit.Token(t, u), nil))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Account is inactive.", body["message"])
}

func TestAuthMiddlewareSessionsRevoked(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@example.com")
	tok := testkit.Token(t, u)

	later := time.Now().Add(time.Minute)
	require.NoError(t, db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).Update("sessions_revoked_at", later).Error)

	code, _ := testkit.Do(t, newApp(db), testkit.Request(t, http.MethodGet, "/p/whoami", tok, nil))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRequirePermission(t *testing.T) {
	db := testkit.NewDB(t)
	admin := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@example.com")
	super := testkit.CreateUser(t, db, constants.RoleSuperAdmin, "root@example.com")
	emp := testkit.CreateUser(t, db, constants.RoleEmployee, "e@example.com")
	app := newApp(db)

	cases := []struct {
		name string
		user *userModel.UserModel
		path string
		want int
	}{
		{"admin views users", admin, "/p/users", http.StatusOK},
		{"admin cannot edit users", admin, "/p/users/edit", http.StatusForbidden},
		{"super admin edits users", super, "/p/users/edit", http.StatusOK},
		{"employee has no users access", emp, "/p/users", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, tc.path, testkit.Token(t, tc.user), nil))
			assert.Equal(t, tc.want, code)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, constants.ErrAccessDenied, body["message"])
			}
		})
	}
}

func TestRoleGates(t *testing.T) {
	db := testkit.NewDB(t)
	admin := testkit.CreateUser(t, db, constants.RoleAdmin, "admin@example.com")
	emp := testkit.CreateUser(t, db, constants.RoleEmployee, "e@example.com")
	app := newApp(db)

	code, _ := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/mine", testkit.Token(t, emp), nil))
	assert.Equal(t, http.StatusOK, code)

	code, body := testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/mine", testkit.Token(t, admin), nil))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "dashboard", body["redirect"])

	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/admins", testkit.Token(t, emp), nil))
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = testkit.Do(t, app, testkit.Request(t, http.MethodGet, "/p/admins", testkit.Token(t, admin), nil))
	assert.Equal(t, http.StatusOK, code)
}
