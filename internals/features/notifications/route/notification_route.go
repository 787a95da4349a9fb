package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/notifications/controller"
)

// NotificationRoutes mounts under an already authenticated group.
func NotificationRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewNotificationController(db)

	g := r.Group("/notifications")
	g.Get("/", ctrl.List)
	g.Get("/unread-count", ctrl.UnreadCount)
	g.Post("/mark-all-read", ctrl.MarkAllRead)
	g.Post("/:id/read", ctrl.MarkRead)
}
