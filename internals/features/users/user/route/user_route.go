package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/users/user/controller"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// UserRoutes mounts /users under an authenticated group.
func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)
	perm := func(action string) fiber.Handler {
		return authMiddleware.RequirePermission(constants.ModuleUsers, action)
	}

	g := r.Group("/users")
	g.Get("/", perm(constants.ActionView), ctrl.List)
	g.Get("/export", perm(constants.ActionExport), ctrl.Export)
	g.Get("/available-biodata", perm(constants.ActionCreate), ctrl.AvailableBiodata)
	g.Post("/", perm(constants.ActionCreate), ctrl.Create)
	g.Patch("/:id", perm(constants.ActionEdit), ctrl.Update)
	g.Delete("/:id", perm(constants.ActionDelete), ctrl.Delete)
}
