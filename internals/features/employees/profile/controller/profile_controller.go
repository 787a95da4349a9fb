package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/employees/biodata/dto"
	"hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/biodata/service"
	trainingService "hrportal_backend/internals/features/training/dashboard/service"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

const msgNoBiodata = "No biodata linked to your account yet."

type ProfileController struct {
	DB   *gorm.DB
	Blob storage.BlobService
}

func NewProfileController(db *gorm.DB, blob storage.BlobService) *ProfileController {
	return &ProfileController{DB: db, Blob: blob}
}

func (pc *ProfileController) linked(c *fiber.Ctx) (*userModel.UserModel, *model.BioDataModel, error) {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return nil, nil, err
	}
	var u userModel.UserModel
	if err := pc.DB.First(&u, "id = ?", userID).Error; err != nil {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "User not found")
	}
	var b model.BioDataModel
	res := pc.DB.Where("biodata_user_id = ?", userID).Limit(1).Find(&b)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return &u, nil, nil
	}
	return &u, &b, nil
}

// GET /api/u/me/dashboard
func (pc *ProfileController) Dashboard(c *fiber.Ctx) error {
	u, b, err := pc.linked(c)
	if err != nil {
		return err
	}
	summary, err := trainingService.LoadMySummary(c.Context(), pc.DB, u.ID, time.Now().UTC())
	if err != nil {
		log.Println("[ERROR] employee dashboard:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}

	var bio any
	if b != nil {
		bio = dto.FromModel(b)
	}
	return helper.JsonOK(c, "Employee dashboard", fiber.Map{
		"user":     fiber.Map{"id": u.ID, "email": u.Email, "full_name": u.FullName},
		"biodata":  bio,
		"training": summary,
	})
}

// GET /api/u/me/profile
func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	_, b, err := pc.linked(c)
	if err != nil {
		return err
	}
	if b == nil {
		return helper.JsonError(c, fiber.StatusNotFound, msgNoBiodata)
	}
	return helper.JsonOK(c, "My profile", dto.FromModel(b))
}

// PATCH /api/u/me/profile
func (pc *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	u, b, err := pc.linked(c)
	if err != nil {
		return err
	}
	if b == nil {
		return helper.JsonError(c, fiber.StatusNotFound, msgNoBiodata)
	}
	if b.Status != model.StatusApproved {
		return helper.JsonError(c, fiber.StatusBadRequest, "Your bio data has not been approved yet.")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if fe := helper.ValidateStruct(&req); !fe.Empty() {
		return helper.JsonValidationError(c, fe)
	}

	editor := service.Editor{ID: u.ID, Display: u.DisplayName()}
	updated, err := service.UpdateEmployee(c.Context(), pc.DB, pc.Blob, editor, b.BioDataID, req.ToEmployeeUpdate(), service.Uploads{}, false)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return helper.JsonValidationError(c, ve.Fields)
		}
		if errors.Is(err, service.ErrNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, msgNoBiodata)
		}
		log.Println("[ERROR] update my profile:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}
	return helper.JsonUpdated(c, "Your profile updated successfully!", dto.FromModel(updated))
}
