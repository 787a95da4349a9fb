package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	homeDashboardRoute "hrportal_backend/internals/features/home/dashboard/route"
)

// HomePrivateRoutes: /api/u/dashboard
func HomePrivateRoutes(api fiber.Router, db *gorm.DB) {
	homeDashboardRoute.HomeDashboardRoutes(api, db)
}
