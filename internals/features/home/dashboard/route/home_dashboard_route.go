package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/home/dashboard/controller"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

func HomeDashboardRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewHomeDashboardController(db)
	r.Get("/dashboard", authMiddleware.RequirePermission(constants.ModuleDashboard, constants.ActionView), ctrl.Summary)
}
