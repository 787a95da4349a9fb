// Package testkit builds SQLite-backed fixtures for the integration tests.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	database "hrportal_backend/internals/databases"
	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
)

const (
	JWTSecret     = "test-access-secret"
	RefreshSecret = "test-refresh-secret"
	Password      = "Passw0rd!"
)

// NewDB opens a migrated SQLite database in t.TempDir and installs test secrets.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	configs.JWTSecret = JWTSecret
	configs.JWTRefreshSecret = RefreshSecret
	configs.AppBaseURL = "http://hr.test"
	configs.SetAuditLogger(zap.NewNop())
	t.Setenv("RATE_LIMIT_DISABLED", "true")

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateAll(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewApp returns a Fiber app with the production error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
}

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser inserts an active user with the role's permissions and Password.
func CreateUser(t testing.TB, db *gorm.DB, role, email string) *userModel.UserModel {
	t.Helper()
	u := &userModel.UserModel{
		Email:    email,
		Password: passwordHash,
		FullName: fmt.Sprintf("%s user", role),
	}
	u.ApplyRole(role)
	u.SetStatus(constants.StatusActive)
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateBiodata inserts a biodata row with the required intake fields filled.
func CreateBiodata(t testing.TB, db *gorm.DB, first, last, email, status string) *biodataModel.BioDataModel {
	t.Helper()
	b := &biodataModel.BioDataModel{
		FirstName:       first,
		LastName:        last,
		ContactNumber:   "9876543210",
		PersonalEmail:   email,
		ExperienceType:  biodataModel.ExperienceFresher,
		TechnicalSkills: "Go, SQL",
		SSCSchool:       "City School",
		SSCYear:         "2012",
		SSCGrade:        "A",
		SSLCSchool:      "City College",
		SSLCYear:        "2014",
		SSLCGrade:       "A",
		UGDegree:        "B.Tech",
		UGInstitution:   "State University",
		UGYear:          "2018",
		Status:          status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

// Token signs an access token the auth middleware accepts.
func Token(t testing.TB, u *userModel.UserModel) string {
	t.Helper()
	now := time.Now().UTC()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ":   "access",
		"id":    u.ID.String(),
		"email": u.Email,
		"role":  u.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return tok
}

// Request builds a JSON request; body may be nil.
func Request(t testing.TB, method, url, token string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// File is one multipart file part.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Multipart builds a multipart/form-data request.
func Multipart(t testing.TB, method, url, token string, fields map[string][]string, files []File) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Do runs the request and decodes a JSON body into a map.
func Do(t testing.TB, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// Data returns body["data"] as a map.
func Data(t testing.TB, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", body["data"])
	return d
}

// PDF is a minimal body that passes extension checks.
var PDF = []byte("%PDF-1.4\n%test\n")
