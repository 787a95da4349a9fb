package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	notificationRoute "hrportal_backend/internals/features/notifications/route"
	userRoute "hrportal_backend/internals/features/users/user/route"
)

// UserPrivateRoutes: /api/u/users, /api/u/notifications
func UserPrivateRoutes(api fiber.Router, db *gorm.DB) {
	userRoute.UserRoutes(api, db)
	notificationRoute.NotificationRoutes(api, db)
}
