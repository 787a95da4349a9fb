package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/helpers/mailer"
	"hrportal_backend/internals/helpers/storage"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
	routeDetails "hrportal_backend/internals/route/details"
)

var startTime time.Time

// Deps are the outside services the handlers need.
type Deps struct {
	Blob storage.BlobService
	Mail mailer.Mailer
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()

	BaseRoutes(app, db, deps.Blob)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// ===================== GROUPS =====================
	public := app.Group("/api/public")
	private := app.Group("/api/u", authMiddleware.AuthMiddleware(db))

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting user routes...")
	routeDetails.UserPrivateRoutes(private, db)

	log.Println("[INFO] Mounting employee routes...")
	routeDetails.EmployeeRoutes(public, private, db, deps.Blob, deps.Mail)

	log.Println("[INFO] Mounting home routes...")
	routeDetails.HomePrivateRoutes(private, db)

	log.Println("[INFO] Mounting training routes...")
	routeDetails.TrainingRoutes(private, db, deps.Blob)
}
