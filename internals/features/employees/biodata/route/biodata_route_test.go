package route_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/controller"
	"hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/biodata/route"
	notifModel "hrportal_backend/internals/features/notifications/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/helpers/mailer"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	"hrportal_backend/internals/testkit"
)

type env struct {
	app  *fiber.App
	db   *gorm.DB
	blob *storage.MockBlobService
	mail *mailer.Recorder
}

func setup(t *testing.T) *env {
	db := testkit.NewDB(t)
	blob := storage.NewMockBlobService()
	mail := &mailer.Recorder{}
	ctrl := controller.NewBiodataController(db, blob, mail)

	app := testkit.NewApp()
	route.BiodataPublicRoutes(app.Group("/api/public"), ctrl)
	route.BiodataRoutes(app.Group("/api/u", authMiddleware.AuthMiddleware(db)), ctrl)
	return &env{app: app, db: db, blob: blob, mail: mail}
}

func intakeFields(email string) map[string][]string {
	return map[string][]string{
		"first_name":       {"Asha"},
		"last_name":        {"Rao"},
		"contact_number":   {"9876543210"},
		"personal_email":   {email},
		"experience_type":  {"experienced"},
		"technical_skills": {"Go"},
		"ssc_school":       {"City School"},
		"ssc_year":         {"2012"},
		"ssc_grade":        {"A"},
		"sslc_school":      {"City College"},
		"sslc_year":        {"2014"},
		"sslc_grade":       {"A"},
		"ug_degree":        {"B.Tech"},
		"ug_institution":   {"State University"},
		"ug_year":          {"2018"},
		"aadhar_no":        {"1234 5678 9012"},

		"prev_employer[]":    {"Acme", " ", "Globex"},
		"prev_designation[]": {"Dev", "", "Lead"},
		"prev_duration[]":    {"2y", "", "1y"},
		"prev_email[]":       {"hr@acme.test", "", "hr@globex.test"},
	}
}

func intakeFiles() []testkit.File {
	return []testkit.File{
		{Field: "photo", Name: "me.jpg", Content: []byte("jpeg-bytes")},
		{Field: "resume", Name: "cv.pdf", Content: testkit.PDF},
		{Field: "work_experience_cert[]", Name: "acme.pdf", Content: testkit.PDF},
	}
}

func countNotifs(t *testing.T, db *gorm.DB, ntype string) int64 {
	var n int64
	require.NoError(t, db.Model(&notifModel.NotificationModel{}).Where("notification_type = ?", ntype).Count(&n).Error)
	return n
}

func TestPublicSubmit(t *testing.T) {
	e := setup(t)
	testkit.CreateUser(t, e.db, constants.RoleAdmin, "hr@example.com")
	testkit.CreateUser(t, e.db, constants.RoleSuperAdmin, "boss@example.com")
	off := testkit.CreateUser(t, e.db, constants.RoleAdmin, "off@example.com")
	require.NoError(t, e.db.Model(off).Updates(map[string]any{"status": constants.StatusInactive, "is_active": false}).Error)

	req := testkit.Multipart(t, http.MethodPost, "/api/public/biodata", "", intakeFields("Asha@Mail.test"), intakeFiles())
	code, body := testkit.Do(t, e.app, req)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Bio data submitted successfully! Awaiting HR review.", body["message"])

	var b model.BioDataModel
	require.NoError(t, e.db.First(&b, "biodata_personal_email = ?", "asha@mail.test").Error)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, "1234 5678 9012", b.AadharNo.String())
	require.NotNil(t, b.PhotoURL)
	assert.True(t, strings.HasPrefix(*b.PhotoURL, "mock://"))
	require.NotNil(t, b.ResumeURL)

	exp := b.Experiences()
	require.Len(t, exp, 2)
	assert.Equal(t, "Acme", exp[0].Employer)
	assert.NotEmpty(t, exp[0].CertificatePath)
	assert.Equal(t, "Globex", exp[1].Employer)
	assert.Empty(t, exp[1].CertificatePath)
	assert.Equal(t, 3, e.blob.Count())

	// only active admins hear about it
	assert.EqualValues(t, 2, countNotifs(t, e.db, constants.NotifBiodataNew))

	t.Run("duplicate personal email", func(t *testing.T) {
		req := testkit.Multipart(t, http.MethodPost, "/api/public/biodata", "", intakeFields("asha@mail.test"), intakeFiles())
		code, body := testkit.Do(t, e.app, req)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		errs := body["errors"].(map[string]any)
		assert.Equal(t, []any{"This email has already been used for a submission."}, errs["personal_email"])
	})

	t.Run("missing fields and files", func(t *testing.T) {
		fields := intakeFields("new@mail.test")
		delete(fields, "ug_degree")
		req := testkit.Multipart(t, http.MethodPost, "/api/public/biodata", "", fields, []testkit.File{
			{Field: "resume", Name: "cv.exe", Content: []byte("MZ")},
		})
		code, body := testkit.Do(t, e.app, req)
		require.Equal(t, http.StatusUnprocessableEntity, code)
		errs := body["errors"].(map[string]any)
		assert.Equal(t, []any{"This field is required."}, errs["ug_degree"])
		assert.Equal(t, []any{"This field is required."}, errs["photo"])
		assert.Equal(t, []any{storage.MsgDocumentTypeBad}, errs["resume"])
	})
}

func TestReviewApproveProvisionsAccount(t *testing.T) {
	e := setup(t)
	admin := testkit.CreateUser(t, e.db, constants.RoleAdmin, "hr@example.com")
	bio := testkit.CreateBiodata(t, e.db, "Asha", "Rao", "asha@mail.test", model.StatusPending)

	code, body := testkit.Do(t, e.app, testkit.Request(t, http.MethodPost, "/api/u/biodata/requests/"+bio.BioDataID.String()+"/review", testkit.Token(t, admin), map[string]any{
		"action":         "approve",
		"employee_id":    "EMP-2025-001",
		"official_email": "Asha@Stackly.in",
		"designation":    "Backend Developer",
		"department":     constants.DeptSoftwareDev,
		"doj":            "2025-01-06",
		"work_mode":      constants.WorkModeHybrid,
	}))
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Employee approved successfully! Account created.", body["message"])
	assert.Equal(t, true, testkit.Data(t, body)["account_created"])

	var b model.BioDataModel
	require.NoError(t, e.db.First(&b, "biodata_id = ?", bio.BioDataID).Error)
	assert.Equal(t, model.StatusApproved, b.Status)
	require.NotNil(t, b.ApprovedByID)
	assert.Equal(t, admin.ID, *b.ApprovedByID)
	require.NotNil(t, b.UserID)

	var u userModel.UserModel
	require.NoError(t, e.db.First(&u, "id = ?", *b.UserID).Error)
	assert.Equal(t, "asha@stackly.in", u.Email)
	assert.Equal(t, constants.RoleEmployee, u.Role)
	assert.Equal(t, "Asha Rao", u.FullName)
	assert.Equal(t, "9876543210", u.Phone)
	assert.Equal(t, constants.DeptSoftwareDev, u.Department)
	assert.True(t, u.IsActive)

	msgs := e.mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "asha@mail.test", msgs[0].To)
	assert.Equal(t, "Welcome to STACKLY - Your Account Details", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "- Email: asha@stackly.in")
	assert.Contains(t, msgs[0].Body, "- Employee ID: EMP-2025-001")
	assert.Contains(t, msgs[0].Body, "http://hr.test/login")

	assert.EqualValues(t, 1, countNotifs(t, e.db, constants.NotifEmployeeAccountCreated))
}

func TestReviewEdgeCases(t *testing.T) {
	e := setup(t)
	admin := testkit.CreateUser(t, e.db, constants.RoleAdmin, "hr@example.com")
	testkit.CreateUser(t, e.db, constants.RoleTrainer, "taken@stackly.in")
	token := testkit.Token(t, admin)
	review := func(id string, body map[string]any) (int, map[string]any) {
		return testkit.Do(t, e.app, testkit.Request(t, http.MethodPost, "/api/u/biodata/requests/"+id+"/review", token, body))
	}

	t.Run("official email owned by a user", func(t *testing.T) {
		bio := testkit.CreateBiodata(t, e.db, "A", "B", "a@mail.test", model.StatusPending)
		code, body := review(bio.BioDataID.String(), map[string]any{"action": "approve", "official_email": "taken@stackly.in"})
		require.Equal(t, http.StatusUnprocessableEntity, code)
		errs := body["errors"].(map[string]any)
		assert.Equal(t, []any{"This official email is already used by another employee."}, errs["official_email"])
	})

	t.Run("employee id in use", func(t *testing.T) {
		other := testkit.CreateBiodata(t, e.db, "C", "D", "c@mail.test", model.StatusApproved)
		require.NoError(t, e.db.Model(other).Update("biodata_employee_id", "EMP-1").Error)
		bio := testkit.CreateBiodata(t, e.db, "E", "F", "e@mail.test", model.StatusPending)
		code, body := review(bio.BioDataID.String(), map[string]any{"action": "approve", "employee_id": "EMP-1"})
		require.Equal(t, http.StatusUnprocessableEntity, code)
		errs := body["errors"].(map[string]any)
		assert.Equal(t, []any{"This Employee ID is already in use."}, errs["employee_id"])
	})

	t.Run("account email already used still approves", func(t *testing.T) {
		testkit.CreateUser(t, e.db, constants.RoleEmployee, "g@mail.test")
		bio := testkit.CreateBiodata(t, e.db, "G", "H", "g@mail.test", model.StatusPending)
		code, body := review(bio.BioDataID.String(), map[string]any{"action": "approve"})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "Employee approved successfully!", body["message"])
		assert.Equal(t, []any{"Email g@mail.test already used."}, testkit.Data(t, body)["errors"])

		var b model.BioDataModel
		require.NoError(t, e.db.First(&b, "biodata_id = ?", bio.BioDataID).Error)
		assert.Equal(t, model.StatusApproved, b.Status)
		assert.Nil(t, b.UserID)
	})

	t.Run("approve without account", func(t *testing.T) {
		bio := testkit.CreateBiodata(t, e.db, "I", "J", "i@mail.test", model.StatusPending)
		code, body := review(bio.BioDataID.String(), map[string]any{"action": "approve", "create_account": false})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, false, testkit.Data(t, body)["account_created"])
	})

	t.Run("reject", func(t *testing.T) {
		bio := testkit.CreateBiodata(t, e.db, "K", "L", "k@mail.test", model.StatusPending)
		code, body := review(bio.BioDataID.String(), map[string]any{"action": "reject", "reject_reason": "Incomplete"})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "Application rejected successfully.", body["message"])

		var b model.BioDataModel
		require.NoError(t, e.db.First(&b, "biodata_id = ?", bio.BioDataID).Error)
		assert.Equal(t, model.StatusRejected, b.Status)
		assert.Equal(t, "Incomplete", b.RejectReason)
	})

	t.Run("bad action", func(t *testing.T) {
		bio := testkit.CreateBiodata(t, e.db, "M", "N", "m@mail.test", model.StatusPending)
		code, _ := review(bio.BioDataID.String(), map[string]any{"action": "maybe"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
	})

	assert.Empty(t, e.mail.Messages())
}

func TestEmployeesListUpdateAndDelete(t *testing.T) {
	e := setup(t)
	boss := testkit.CreateUser(t, e.db, constants.RoleSuperAdmin, "boss@example.com")
	token := testkit.Token(t, boss)

	acct := testkit.CreateUser(t, e.db, constants.RoleEmployee, "asha@stackly.in")
	asha := testkit.CreateBiodata(t, e.db, "Asha", "Rao", "asha@mail.test", model.StatusApproved)
	require.NoError(t, e.db.Model(asha).Updates(map[string]any{
		"biodata_user_id":    acct.ID,
		"biodata_department": constants.DeptHR,
	}).Error)
	testkit.CreateBiodata(t, e.db, "Ravi", "Kumar", "ravi@mail.test", model.StatusApproved)
	pending := testkit.CreateBiodata(t, e.db, "Pending", "Person", "p@mail.test", model.StatusPending)

	code, body := testkit.Do(t, e.app, testkit.Request(t, http.MethodGet, "/api/u/biodata/employees?search=RAO", token, nil))
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["data"], 1)

	code, body = testkit.Do(t, e.app, testkit.Request(t, http.MethodGet, "/api/u/biodata/employees?department=hr", token, nil))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, _ = testkit.Do(t, e.app, testkit.Request(t, http.MethodGet, "/api/u/biodata/employees/"+pending.BioDataID.String(), token, nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, body = testkit.Do(t, e.app, testkit.Request(t, http.MethodPatch, "/api/u/biodata/employees/"+asha.BioDataID.String(), token, map[string]any{
		"middle_name":    "Devi",
		"contact_number": "9000000009",
		"department":     constants.DeptFinance,
		"city":           "Pune",
	}))
	require.Equal(t, http.StatusOK, code, body)

	var u userModel.UserModel
	require.NoError(t, e.db.First(&u, "id = ?", acct.ID).Error)
	assert.Equal(t, "Asha Devi Rao", u.FullName)
	assert.Equal(t, "9000000009", u.Phone)
	assert.Equal(t, constants.DeptFinance, u.Department)
	assert.EqualValues(t, 1, countNotifs(t, e.db, constants.NotifBiodataUpdated))

	code, body = testkit.Do(t, e.app, testkit.Request(t, http.MethodDelete, "/api/u/biodata/requests/"+asha.BioDataID.String(), token, nil))
	assert.Equal(t, http.StatusBadRequest, code, body)

	code, _ = testkit.Do(t, e.app, testkit.Request(t, http.MethodDelete, "/api/u/biodata/requests/"+pending.BioDataID.String(), token, nil))
	assert.Equal(t, http.StatusOK, code)

	code, _ = testkit.Do(t, e.app, testkit.Request(t, http.MethodDelete, "/api/u/biodata/employees/"+asha.BioDataID.String(), token, nil))
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, countNotifs(t, e.db, constants.NotifBiodataDeleted))

	// the account outlives its biodata
	require.NoError(t, e.db.First(&u, "id = ?", acct.ID).Error)
}

func TestBiodataPermissions(t *testing.T) {
	e := setup(t)
	scrum := testkit.CreateUser(t, e.db, constants.RoleScrumMaster, "sm@example.com")
	bio := testkit.CreateBiodata(t, e.db, "Asha", "Rao", "asha@mail.test", model.StatusPending)

	code, _ := testkit.Do(t, e.app, testkit.Request(t, http.MethodGet, "/api/u/biodata/requests", testkit.Token(t, scrum), nil))
	assert.Equal(t, http.StatusOK, code)

	code, body := testkit.Do(t, e.app, testkit.Request(t, http.MethodPost, "/api/u/biodata/requests/"+bio.BioDataID.String()+"/review", testkit.Token(t, scrum), map[string]any{"action": "reject"}))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access Denied", body["message"])
}

func TestExportApprovedEmployees(t *testing.T) {
	e := setup(t)
	admin := testkit.CreateUser(t, e.db, constants.RoleAdmin, "hr@example.com")
	testkit.CreateBiodata(t, e.db, "Asha", "Rao", "asha@mail.test", model.StatusApproved)
	testkit.CreateBiodata(t, e.db, "Pending", "Person", "p@mail.test", model.StatusPending)

	resp, err := e.app.Test(testkit.Request(t, http.MethodGet, "/api/u/biodata/export", testkit.Token(t, admin), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "approved_employees_")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Approved Employees")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 25)
	assert.Equal(t, "Asha", rows[1][1])
	assert.Equal(t, "-", rows[1][2])
	assert.Equal(t, "Fresher", rows[1][12])
}
