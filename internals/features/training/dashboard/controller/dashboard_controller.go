package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/training/dashboard/service"
	helper "hrportal_backend/internals/helpers"
)

type TrainingDashboardController struct {
	DB *gorm.DB
}

func NewTrainingDashboardController(db *gorm.DB) *TrainingDashboardController {
	return &TrainingDashboardController{DB: db}
}

// GET /api/u/training/dashboard?q=&batches_page=&sessions_page=&assignments_page=
func (dc *TrainingDashboardController) Overview(c *fiber.Ctx) error {
	out, err := service.LoadOverview(c.Context(), dc.DB, service.PageParams{
		Query:           c.Query("q"),
		BatchesPage:     c.Query("batches_page"),
		SessionsPage:    c.Query("sessions_page"),
		AssignmentsPage: c.Query("assignments_page"),
	})
	if err != nil {
		log.Println("[ERROR] training dashboard:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load training dashboard")
	}
	return helper.JsonOK(c, "Training dashboard", out)
}

// GET /api/u/training/my
func (dc *TrainingDashboardController) MyTraining(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	out, err := service.LoadMyTraining(dc.DB, userID, time.Now().UTC())
	if err != nil {
		log.Println("[ERROR] my training:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load your training")
	}
	return helper.JsonOK(c, "My training", out)
}
