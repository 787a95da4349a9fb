package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/employees/profile/controller"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// ProfileRoutes mounts the employee self-service endpoints under /me.
func ProfileRoutes(r fiber.Router, db *gorm.DB, blob storage.BlobService) {
	ctrl := controller.NewProfileController(db, blob)

	me := r.Group("/me", authMiddleware.EmployeesOnly())
	me.Get("/dashboard", ctrl.Dashboard)
	me.Get("/profile", ctrl.GetProfile)
	me.Patch("/profile", ctrl.UpdateProfile)
}
