package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/training/sessions/dto"
	"hrportal_backend/internals/features/training/sessions/service"
	helper "hrportal_backend/internals/helpers"
)

type SessionController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

func serviceError(c *fiber.Ctx, op string, err error) error {
	var fe *helper.FieldsError
	switch {
	case errors.As(err, &fe):
		return helper.JsonValidationError(c, fe.Fields)
	case errors.Is(err, service.ErrSessionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrViewDenied), errors.Is(err, service.ErrMarkDenied):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	}
	log.Printf("[ERROR] %s: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to "+op)
}

func viewer(c *fiber.Ctx) (service.Viewer, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Viewer{}, err
	}
	return service.Viewer{ID: id, Role: helper.GetUserRole(c)}, nil
}

// POST /api/u/training/sessions
// POST /api/u/training/batches/:batch_id/sessions
func (sc *SessionController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if batchID := c.Params("batch_id"); batchID != "" {
		req.BatchID = batchID
	}
	req.Normalize()
	at, fe := req.Validate(sc.Now())
	if !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	s, err := service.Create(sc.DB, actor, at, &req)
	if err != nil {
		return serviceError(c, "create session", err)
	}
	return helper.JsonCreated(c, fmt.Sprintf("Session %q created successfully!", s.TrainingSessionTitle), s)
}

// PATCH /api/u/training/sessions/:id
func (sc *SessionController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s, err := service.Update(sc.DB, actor, id, &req, sc.Now())
	if err != nil {
		return serviceError(c, "update session", err)
	}
	return helper.JsonUpdated(c, fmt.Sprintf("Session %q updated successfully!", s.TrainingSessionTitle), s)
}

// GET /api/u/training/sessions/:id
func (sc *SessionController) Detail(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Detail(sc.DB, v, id)
	if err != nil {
		return serviceError(c, "load session", err)
	}
	return helper.JsonOK(c, "Session detail", out)
}

// GET /api/u/training/sessions/:id/attendance
func (sc *SessionController) Roster(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Roster(sc.DB, v, id)
	if err != nil {
		return serviceError(c, "load attendance", err)
	}
	return helper.JsonOK(c, "Attendance roster", out)
}

// POST /api/u/training/sessions/:id/attendance
func (sc *SessionController) MarkAttendance(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if fe := helper.ValidateStruct(&req); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	updated, err := service.MarkAttendance(sc.DB, v, id, &req)
	if err != nil {
		return serviceError(c, "mark attendance", err)
	}
	verb := "marked"
	if updated {
		verb = "updated"
	}
	return helper.JsonOK(c, fmt.Sprintf("Attendance successfully %s!", verb), fiber.Map{"session_id": id, "updated": updated})
}
