package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/sessions/controller"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// SessionRoutes mounts on the /training group. Detail and attendance are
// checked per batch membership in the service.
func SessionRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSessionController(db)
	canCreate := authMiddleware.RequirePermission(constants.ModuleTraining, constants.ActionCreate)

	r.Post("/batches/:batch_id/sessions", canCreate, ctrl.Create)

	g := r.Group("/sessions")
	g.Post("/", canCreate, ctrl.Create)
	g.Get("/:id", ctrl.Detail)
	g.Patch("/:id", authMiddleware.RequirePermission(constants.ModuleTraining, constants.ActionEdit), ctrl.Update)
	g.Get("/:id/attendance", ctrl.Roster)
	g.Post("/:id/attendance", ctrl.MarkAttendance)
}
