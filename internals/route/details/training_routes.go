package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentRoute "hrportal_backend/internals/features/training/assignments/route"
	batchRoute "hrportal_backend/internals/features/training/batches/route"
	dashboardRoute "hrportal_backend/internals/features/training/dashboard/route"
	materialRoute "hrportal_backend/internals/features/training/materials/route"
	sessionRoute "hrportal_backend/internals/features/training/sessions/route"
	"hrportal_backend/internals/helpers/storage"
)

// TrainingRoutes: /api/u/training/...
func TrainingRoutes(api fiber.Router, db *gorm.DB, blob storage.BlobService) {
	g := api.Group("/training")

	dashboardRoute.TrainingDashboardRoutes(g, db)
	batchRoute.BatchRoutes(g, db, blob)
	sessionRoute.SessionRoutes(g, db)
	assignmentRoute.AssignmentRoutes(g, db, blob)
	materialRoute.MaterialRoutes(g, db, blob)
}
