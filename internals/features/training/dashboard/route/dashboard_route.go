package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/dashboard/controller"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// TrainingDashboardRoutes mounts /dashboard and /my on the /training group.
func TrainingDashboardRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTrainingDashboardController(db)

	r.Get("/dashboard",
		authMiddleware.RequirePermission(constants.ModuleTraining, constants.ActionView, constants.ActionManage),
		ctrl.Overview)
	r.Get("/my", authMiddleware.EmployeesOnly(), ctrl.MyTraining)
}
