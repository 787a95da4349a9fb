package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/assignments/controller"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// AssignmentRoutes mounts on the /training group. Grading is allowed for
// training editors and the batch's trainers, checked in the service.
func AssignmentRoutes(r fiber.Router, db *gorm.DB, blob storage.BlobService) {
	ctrl := controller.NewAssignmentController(db, blob)

	g := r.Group("/assignments")
	g.Post("/", authMiddleware.RequirePermission(constants.ModuleTraining, constants.ActionCreate), ctrl.Create)
	g.Get("/:id", authMiddleware.RequirePermission(constants.ModuleTraining, constants.ActionView), ctrl.Detail)
	g.Patch("/:id", authMiddleware.RequirePermission(constants.ModuleTraining, constants.ActionEdit), ctrl.Update)
	g.Post("/:id/submit", authMiddleware.OnlyRoles("Only employees can submit assignments.", constants.RoleEmployee), ctrl.Submit)

	r.Patch("/submissions/:id/grade", ctrl.Grade)
}
