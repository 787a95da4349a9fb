package controller

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/training/materials/dto"
	"hrportal_backend/internals/features/training/materials/service"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

type MaterialController struct {
	DB   *gorm.DB
	Blob storage.BlobService
}

func NewMaterialController(db *gorm.DB, blob storage.BlobService) *MaterialController {
	return &MaterialController{DB: db, Blob: blob}
}

func serviceError(c *fiber.Ctx, op string, err error) error {
	var fe *helper.FieldsError
	switch {
	case errors.As(err, &fe):
		return helper.JsonValidationError(c, fe.Fields)
	case errors.Is(err, service.ErrBatchNotFound), errors.Is(err, service.ErrMaterialNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrViewDenied), errors.Is(err, service.ErrUploadDenied), errors.Is(err, service.ErrDeleteDenied):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	}
	log.Printf("[ERROR] %s: %v", op, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to "+op)
}

func actor(c *fiber.Ctx) (service.Actor, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{ID: id, Perms: helper.GetUserPermissions(c)}, nil
}

// GET /api/u/training/batches/:id/materials
func (mc *MaterialController) List(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	batchID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := service.List(mc.DB, a, batchID)
	if err != nil {
		return serviceError(c, "load materials", err)
	}
	return helper.JsonOK(c, "Training materials", out)
}

// POST /api/u/training/batches/:id/materials
func (mc *MaterialController) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	batchID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	fh, err := c.FormFile("file")
	if err != nil {
		fh = nil
	}
	if fe := req.Validate(fh != nil); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	m, err := service.Create(c.Context(), mc.DB, mc.Blob, a, batchID, &req, fh)
	if err != nil {
		return serviceError(c, "upload material", err)
	}
	return helper.JsonCreated(c, fmt.Sprintf("Material %q uploaded successfully!", m.MaterialTitle), m)
}

// DELETE /api/u/training/materials/:id
func (mc *MaterialController) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	m, err := service.Delete(mc.DB, mc.Blob, a, id)
	if err != nil {
		return serviceError(c, "delete material", err)
	}
	return helper.JsonDeleted(c, fmt.Sprintf("Material %q deleted.", m.MaterialTitle), fiber.Map{"material_id": id})
}
