package controller

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/assignments/dto"
	"hrportal_backend/internals/features/training/assignments/service"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

type AssignmentController struct {
	DB   *gorm.DB
	Blob storage.BlobService
}

func NewAssignmentController(db *gorm.DB, blob storage.BlobService) *AssignmentController {
	return &AssignmentController{DB: db, Blob: blob}
}

func serviceError(c *fiber.Ctx, op string, err error) error {
	var fe *helper.FieldsError
	switch {
	case errors.As(err, &fe):
		return helper.JsonValidationError(c, fe.Fields)
	case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrSubmissionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotEnrolled), errors.Is(err, service.ErrGradeDenied):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	}
	log.Printf("[ERROR] %s: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to "+op)
}

// POST /api/u/training/assignments
func (ac *AssignmentController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	due, fe := req.Validate()
	if !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	a, err := service.Create(ac.DB, actor, due, &req)
	if err != nil {
		return serviceError(c, "create assignment", err)
	}
	return helper.JsonCreated(c, fmt.Sprintf("Assignment %q created successfully!", a.AssignmentTitle), a)
}

// PATCH /api/u/training/assignments/:id
func (ac *AssignmentController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	a, err := service.Update(ac.DB, actor, id, &req)
	if err != nil {
		return serviceError(c, "update assignment", err)
	}
	return helper.JsonUpdated(c, fmt.Sprintf("Assignment %q updated successfully!", a.AssignmentTitle), a)
}

// GET /api/u/training/assignments/:id
func (ac *AssignmentController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Detail(ac.DB, id)
	if err != nil {
		return serviceError(c, "load assignment", err)
	}
	return helper.JsonOK(c, "Assignment detail", out)
}

// POST /api/u/training/assignments/:id/submit (multipart "file")
func (ac *AssignmentController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fh = nil
	}

	sub, created, err := service.Submit(c.Context(), ac.DB, ac.Blob, userID, id, fh)
	if err != nil {
		return serviceError(c, "submit assignment", err)
	}
	if created {
		return helper.JsonCreated(c, "Assignment submitted successfully!", sub)
	}
	return helper.JsonOK(c, "Assignment submitted successfully!", sub)
}

// PATCH /api/u/training/submissions/:id/grade
func (ac *AssignmentController) Grade(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if fe := helper.ValidateStruct(&req); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	g := service.Grader{
		ID:      userID,
		CanEdit: helper.GetUserPermissions(c).Has(constants.ModuleTraining, constants.ActionEdit),
	}
	sub, err := service.Grade(ac.DB, g, id, &req)
	if err != nil {
		return serviceError(c, "grade submission", err)
	}
	return helper.JsonUpdated(c, "Submission graded successfully!", sub)
}
