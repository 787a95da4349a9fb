package routes

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "hrportal_backend/internals/databases"
	"hrportal_backend/internals/helpers/storage"
)

func BaseRoutes(app *fiber.App, db *gorm.DB, blob storage.BlobService) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("HR portal API is running 🚀")
	})

	health := func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(db); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("APP_ENV"),
		})
	}
	app.Get("/health", health)
	app.Get("/api/health", health)

	// uploads kept in the local bbolt store are served by the API itself
	if local, ok := blob.(*storage.LocalBlobService); ok {
		app.Get(local.PublicBase()+"/*", local.MediaHandler())
	}
}
