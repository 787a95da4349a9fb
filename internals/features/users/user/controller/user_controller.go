package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/users/user/dto"
	"hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/features/users/user/service"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/excel"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

func (uc *UserController) actor(c *fiber.Ctx) (service.Actor, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Actor{}, err
	}
	a, err := service.LoadActor(uc.DB, id)
	if err != nil {
		return service.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "User not found")
	}
	return a, nil
}

func (uc *UserController) filtered(c *fiber.Ctx) *gorm.DB {
	q := uc.DB.Model(&model.UserModel{})
	if s := strings.ToLower(strings.TrimSpace(c.Query("q"))); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		q = q.Where("role = ?", role)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

// GET /api/u/users?q=&role=&status=&page=&per_page=
func (uc *UserController) List(c *fiber.Ctx) error {
	q := uc.filtered(c)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Println("[ERROR] count users:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load users")
	}

	p := helper.ResolvePaging(c, 20, 100)
	var users []model.UserModel
	if err := q.Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&users).Error; err != nil {
		log.Println("[ERROR] list users:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load users")
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.FromModel(&users[i]))
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "Users", out, &pg)
}

type availableBiodata struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	PersonalEmail string `json:"personal_email"`
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
}

// GET /api/u/users/available-biodata
func (uc *UserController) AvailableBiodata(c *fiber.Ctx) error {
	var rows []biodataModel.BioDataModel
	if err := uc.DB.Where("biodata_status = ? AND biodata_user_id IS NULL", biodataModel.StatusApproved).
		Order("biodata_first_name ASC").
		Find(&rows).Error; err != nil {
		log.Println("[ERROR] available biodata:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load biodata")
	}
	out := make([]availableBiodata, 0, len(rows))
	for i := range rows {
		b := &rows[i]
		item := availableBiodata{
			ID:            b.BioDataID.String(),
			FullName:      b.FullName(),
			PersonalEmail: b.PersonalEmail,
		}
		if b.EmployeeID != nil {
			item.EmployeeID = *b.EmployeeID
		}
		if b.OfficialEmail != nil {
			item.OfficialEmail = *b.OfficialEmail
		}
		out = append(out, item)
	}
	return helper.JsonOK(c, "Available biodata", out)
}

// POST /api/u/users
func (uc *UserController) Create(c *fiber.Ctx) error {
	actor, err := uc.actor(c)
	if err != nil {
		return err
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if fe := helper.ValidateStruct(&req); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	user, warnings, err := service.CreateUser(uc.DB, actor, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			return helper.JsonValidationError(c, map[string][]string{"email": {err.Error()}})
		}
		log.Println("[ERROR] create user:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	log.Printf("[SUCCESS] user %s created by %s\n", user.Email, actor.Email)
	return helper.JsonCreated(c, "User created successfully.", fiber.Map{
		"user":     dto.FromModel(user),
		"warnings": warnings,
	})
}

// PATCH /api/u/users/:id
func (uc *UserController) Update(c *fiber.Ctx) error {
	actor, err := uc.actor(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if fe := helper.ValidateStruct(&req); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	user, err := service.UpdateUser(uc.DB, actor, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, err.Error())
		}
		log.Println("[ERROR] update user:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update user")
	}
	return helper.JsonUpdated(c, "User updated successfully.", dto.FromModel(user))
}

// DELETE /api/u/users/:id
func (uc *UserController) Delete(c *fiber.Ctx) error {
	actor, err := uc.actor(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	switch err := service.DeleteUser(uc.DB, actor, id); {
	case err == nil:
	case errors.Is(err, service.ErrSelfDelete):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	default:
		log.Println("[ERROR] delete user:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete user")
	}
	return helper.JsonDeleted(c, "User deleted successfully.", fiber.Map{"id": id})
}

// GET /api/u/users/export
func (uc *UserController) Export(c *fiber.Ctx) error {
	var users []model.UserModel
	if err := uc.filtered(c).Order("created_at DESC").Find(&users).Error; err != nil {
		log.Println("[ERROR] export users:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to export users")
	}

	sheet := excel.NewSheet("Users",
		[]string{"Full Name", "Email", "Phone", "Department", "Role", "Status", "Date Joined"},
		excel.SheetOptions{AutoWidth: true})
	for _, u := range users {
		sheet.AddRow(
			u.FullName,
			u.Email,
			u.Phone,
			constants.DepartmentLabel(u.Department),
			constants.RoleLabel(u.Role),
			constants.StatusLabel(u.Status),
			u.CreatedAt.Format("2006-01-02"),
		)
	}
	return sheet.Send(c, "users.xlsx")
}
