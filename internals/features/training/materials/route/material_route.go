package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/training/materials/controller"
	"hrportal_backend/internals/helpers/storage"
)

// MaterialRoutes mounts on the /training group. Batch members may read,
// batch trainers may upload and uploaders may delete, so every check lives
// in the service.
func MaterialRoutes(r fiber.Router, db *gorm.DB, blob storage.BlobService) {
	ctrl := controller.NewMaterialController(db, blob)

	r.Get("/batches/:id/materials", ctrl.List)
	r.Post("/batches/:id/materials", ctrl.Create)
	r.Delete("/materials/:id", ctrl.Delete)
}
