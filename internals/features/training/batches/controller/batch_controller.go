package controller

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/training/batches/dto"
	"hrportal_backend/internals/features/training/batches/service"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

type BatchController struct {
	DB   *gorm.DB
	Blob storage.BlobService
}

func NewBatchController(db *gorm.DB, blob storage.BlobService) *BatchController {
	return &BatchController{DB: db, Blob: blob}
}

func serviceError(c *fiber.Ctx, op string, err error) error {
	var fe *helper.FieldsError
	switch {
	case errors.As(err, &fe):
		return helper.JsonValidationError(c, fe.Fields)
	case errors.Is(err, service.ErrBatchNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	}
	log.Printf("[ERROR] %s: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to "+op)
}

// GET /api/u/training/batches?q=&status=
func (bc *BatchController) List(c *fiber.Ctx) error {
	q := service.ListQuery(bc.DB, service.ListFilter{Search: c.Query("q"), Status: c.Query("status")})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serviceError(c, "load batches", err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, err := service.Page(bc.DB, q.Offset(p.Offset).Limit(p.Limit))
	if err != nil {
		return serviceError(c, "load batches", err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "Batches", rows, &pg)
}

// POST /api/u/training/batches
func (bc *BatchController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.CreateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if fe := req.Validate(); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	b, err := service.Create(bc.DB, actor, &req)
	if err != nil {
		return serviceError(c, "create batch", err)
	}
	return helper.JsonCreated(c, fmt.Sprintf("Batch %q created successfully!", b.BatchName), b)
}

// GET /api/u/training/batches/:id
func (bc *BatchController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Detail(bc.DB, id)
	if err != nil {
		return serviceError(c, "load batch", err)
	}
	return helper.JsonOK(c, "Batch detail", out)
}

// PATCH /api/u/training/batches/:id
func (bc *BatchController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	b, err := service.Update(bc.DB, actor, id, &req)
	if err != nil {
		return serviceError(c, "update batch", err)
	}
	return helper.JsonUpdated(c, fmt.Sprintf("Batch %q updated successfully!", b.BatchName), b)
}

// DELETE /api/u/training/batches/:id
func (bc *BatchController) Delete(c *fiber.Ctx) error {
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	b, err := service.Delete(bc.DB, bc.Blob, actor, id)
	if err != nil {
		return serviceError(c, "delete batch", err)
	}
	return helper.JsonDeleted(c, fmt.Sprintf("Batch %q deleted.", b.BatchName), fiber.Map{"batch_id": b.BatchID})
}

// GET /api/u/training/batches/candidates?mode=create|update
func (bc *BatchController) Candidates(c *fiber.Ctx) error {
	mode := c.Query("mode", service.ModeCreate)
	trainers, employees, err := service.Candidates(bc.DB, mode)
	if err != nil {
		return serviceError(c, "load candidates", err)
	}
	return helper.JsonOK(c, "Batch candidates", fiber.Map{
		"mode":      mode,
		"trainers":  trainers,
		"employees": employees,
	})
}

// GET /api/u/training/batch-trainers?batch_id=
// Plain {"trainers": [...]} body, consumed by the session form.
func (bc *BatchController) BatchTrainers(c *fiber.Ctx) error {
	trainers, err := service.Trainers(bc.DB, c.Query("batch_id"))
	if err != nil {
		log.Println("[ERROR] batch trainers:", err)
		trainers = []dto.Member{}
	}
	return c.JSON(fiber.Map{"trainers": trainers})
}
