package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/training/batches/controller"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// BatchRoutes mounts on the /training group.
func BatchRoutes(r fiber.Router, db *gorm.DB, blob storage.BlobService) {
	ctrl := controller.NewBatchController(db, blob)
	perm := func(action string) fiber.Handler {
		return authMiddleware.RequirePermission(constants.ModuleTraining, action)
	}

	r.Get("/batch-trainers", ctrl.BatchTrainers)

	g := r.Group("/batches")
	g.Get("/", perm(constants.ActionView), ctrl.List)
	g.Post("/", perm(constants.ActionCreate), ctrl.Create)
	g.Get("/candidates", perm(constants.ActionView), ctrl.Candidates)
	g.Get("/:id", perm(constants.ActionView), ctrl.Detail)
	g.Patch("/:id", perm(constants.ActionEdit), ctrl.Update)
	g.Delete("/:id", perm(constants.ActionDelete), ctrl.Delete)
}
