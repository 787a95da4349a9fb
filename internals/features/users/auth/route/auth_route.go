package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/users/auth/controller"
	rateLimiter "hrportal_backend/internals/middlewares"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db)

	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/refresh-token", authController.RefreshToken)

	protected := baseAuth.Group("", authMiddleware.AuthMiddleware(db))
	protected.Post("/logout", authController.Logout)
	protected.Get("/me", authController.Me)
	protected.Post("/change-password", authController.ChangePassword)
	protected.Get("/sessions", authController.Sessions)
	protected.Post("/signout-all", authController.SignOutAll)
}
