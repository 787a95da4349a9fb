package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/dto"
	"hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/biodata/service"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/excel"
	"hrportal_backend/internals/helpers/mailer"
	"hrportal_backend/internals/helpers/storage"
)

type BiodataController struct {
	DB   *gorm.DB
	Blob storage.BlobService
	Mail mailer.Mailer
}

func NewBiodataController(db *gorm.DB, blob storage.BlobService, mail mailer.Mailer) *BiodataController {
	return &BiodataController{DB: db, Blob: blob, Mail: mail}
}

// serviceError maps service errors onto the response envelope.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve.Fields)
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotPending):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	log.Printf("[ERROR] %s: %v\n", fallback, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, fallback)
}

func formList(values map[string][]string, name string) []string {
	if v, ok := values[name+"[]"]; ok {
		return v
	}
	return values[name]
}

// POST /api/public/biodata (multipart/form-data)
func (bc *BiodataController) Submit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Expected multipart/form-data")
	}

	var in dto.IntakeForm
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid form data")
	}
	in.Normalize()

	uploads := service.CollectUploads(form)
	fe := in.Validate()
	fe.Merge(uploads.Validate(true))
	if !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	experience, rowIdx := dto.ExperienceRows(
		formList(form.Value, "prev_employer"),
		formList(form.Value, "prev_designation"),
		formList(form.Value, "prev_duration"),
		formList(form.Value, "prev_email"),
	)

	b := in.ToModel()
	if err := service.Submit(c.Context(), bc.DB, bc.Blob, b, uploads, experience, rowIdx); err != nil {
		return serviceError(c, err, "Failed to submit bio data")
	}

	log.Printf("[SUCCESS] biodata submitted: %s (%s)\n", b.FullName(), b.PersonalEmail)
	return helper.JsonCreated(c, "Bio data submitted successfully! Awaiting HR review.", fiber.Map{
		"biodata_id": b.BioDataID,
	})
}

// GET /api/u/biodata/requests?status=&page=&per_page=
func (bc *BiodataController) ListRequests(c *fiber.Ctx) error {
	q := bc.DB.Model(&model.BioDataModel{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("biodata_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serviceError(c, err, "Failed to load requests")
	}
	p := helper.ResolvePaging(c, 20, 100)
	var rows []model.BioDataModel
	if err := q.Order("biodata_created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return serviceError(c, err, "Failed to load requests")
	}

	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "Biodata requests", dto.FromModels(rows), &pg)
}

// GET /api/u/biodata/requests/:id
func (bc *BiodataController) GetRequest(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	b, err := service.GetRequest(bc.DB, id)
	if err != nil {
		return serviceError(c, err, "Failed to load request")
	}
	return helper.JsonOK(c, "Biodata request", dto.FromModel(b))
}

// POST /api/u/biodata/requests/:id/review
func (bc *BiodataController) Review(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if fe := req.Validate(); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	reviewer := service.Reviewer{ID: actorID, Email: helper.GetUserEmail(c)}
	res, err := service.Review(c.Context(), bc.DB, bc.Mail, reviewer, id, &req)
	if err != nil {
		return serviceError(c, err, "Failed to review request")
	}

	data := fiber.Map{
		"biodata":         dto.FromModel(res.Biodata),
		"account_created": res.Account != nil,
	}
	if res.Account != nil {
		data["user_id"] = res.Account.ID
		data["email_sent"] = res.MailError == nil
	}
	if res.AccountError != "" {
		data["errors"] = []string{res.AccountError}
	}
	return helper.JsonOK(c, res.Message(), data)
}

func employeeFilter(c *fiber.Ctx) service.EmployeeFilter {
	return service.EmployeeFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
	}
}

// GET /api/u/biodata/employees?search=&department=&page=&per_page=
func (bc *BiodataController) ListEmployees(c *fiber.Ctx) error {
	q := service.EmployeesQuery(bc.DB, employeeFilter(c))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serviceError(c, err, "Failed to load employees")
	}
	p := helper.ResolvePaging(c, 20, 100)
	var rows []model.BioDataModel
	if err := q.Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return serviceError(c, err, "Failed to load employees")
	}

	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "Employees", dto.FromModels(rows), &pg)
}

// GET /api/u/biodata/employees/:id
func (bc *BiodataController) GetEmployee(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	b, err := service.GetEmployee(bc.DB, id)
	if err != nil {
		return serviceError(c, err, "Failed to load employee")
	}
	return helper.JsonOK(c, "Employee", dto.FromModel(b))
}

func (bc *BiodataController) editor(c *fiber.Ctx) (service.Editor, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Editor{}, err
	}
	var u userModel.UserModel
	if err := bc.DB.Select("id", "email", "full_name").First(&u, "id = ?", id).Error; err != nil {
		return service.Editor{}, fiber.NewError(fiber.StatusUnauthorized, "User not found")
	}
	return service.Editor{ID: u.ID, Display: u.DisplayName()}, nil
}

// PATCH /api/u/biodata/employees/:id (JSON or multipart with replacement files)
func (bc *BiodataController) UpdateEmployee(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	editor, err := bc.editor(c)
	if err != nil {
		return err
	}

	var req dto.UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	var uploads service.Uploads
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid form data")
		}
		uploads = service.CollectUploads(form)
	}

	fe := req.Validate()
	fe.Merge(uploads.Validate(false))
	if !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	b, err := service.UpdateEmployee(c.Context(), bc.DB, bc.Blob, editor, id, &req, uploads, true)
	if err != nil {
		return serviceError(c, err, "Failed to update employee")
	}
	return helper.JsonUpdated(c, "Employee bio data updated successfully!", dto.FromModel(b))
}

// DELETE /api/u/biodata/requests/:id
func (bc *BiodataController) DeleteRequest(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	b, err := service.DeleteRequest(bc.DB, bc.Blob, id)
	if err != nil {
		return serviceError(c, err, "Failed to delete request")
	}
	return helper.JsonDeleted(c, "Pending request for "+b.FirstName+" "+b.LastName+" deleted.", fiber.Map{"id": b.BioDataID})
}

// DELETE /api/u/biodata/employees/:id
func (bc *BiodataController) DeleteEmployee(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	editor, err := bc.editor(c)
	if err != nil {
		return err
	}
	b, err := service.DeleteEmployee(bc.DB, bc.Blob, editor, id)
	if err != nil {
		return serviceError(c, err, "Failed to delete employee")
	}
	return helper.JsonDeleted(c, "BioData of "+b.FirstName+" "+b.LastName+" deleted successfully.", fiber.Map{"id": b.BioDataID})
}

var exportHeaders = []string{
	"ID", "First Name", "Middle Name", "Last Name", "Personal Email", "Contact Number",
	"Employee ID", "Official Email", "Designation", "Department", "DOJ", "Work Mode",
	"Experience Type", "Post Applied For", "Blood Group", "Address", "Aadhar No", "PAN No",
	"Bank Name", "Branch", "Account No", "Account Name", "IFSC", "Technical Skills", "Created At",
}

// GET /api/u/biodata/export?search=&department=
func (bc *BiodataController) Export(c *fiber.Ctx) error {
	var rows []model.BioDataModel
	if err := service.EmployeesQuery(bc.DB, employeeFilter(c)).Find(&rows).Error; err != nil {
		return serviceError(c, err, "Failed to export employees")
	}

	sheet := excel.NewSheet("Approved Employees", exportHeaders, excel.SheetOptions{
		CenterHeader: true,
		AutoWidth:    true,
		FreezeHeader: true,
	})
	for i := range rows {
		b := &rows[i]
		var doj any
		if b.DOJ != nil {
			doj = b.DOJ.Format(dto.DateLayout)
		}
		sheet.AddRow(
			b.BioDataID.String(),
			b.FirstName,
			b.MiddleName,
			b.LastName,
			b.PersonalEmail,
			b.ContactNumber,
			b.EmployeeID,
			b.OfficialEmail,
			b.Designation,
			departmentOrBlank(b.Department),
			doj,
			b.WorkMode,
			excel.Humanize(b.ExperienceType),
			b.PostAppliedFor,
			b.BloodGroup,
			b.Address(),
			b.AadharNo.String(),
			b.PanNo.String(),
			b.BankName,
			b.BankBranch,
			b.AccountNumber.String(),
			b.AccountName,
			b.IFSCCode,
			b.TechnicalSkills,
			b.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return sheet.Send(c, "approved_employees_"+time.Now().Format("2006-01-02")+".xlsx")
}

func departmentOrBlank(d string) string {
	if d == "" {
		return ""
	}
	return constants.DepartmentLabel(d)
}
