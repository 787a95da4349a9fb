package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	biodataController "hrportal_backend/internals/features/employees/biodata/controller"
	biodataRoute "hrportal_backend/internals/features/employees/biodata/route"
	profileRoute "hrportal_backend/internals/features/employees/profile/route"
	"hrportal_backend/internals/helpers/mailer"
	"hrportal_backend/internals/helpers/storage"
)

// EmployeeRoutes mounts the public intake form plus the HR and self-service
// routes that share one biodata controller.
func EmployeeRoutes(public, api fiber.Router, db *gorm.DB, blob storage.BlobService, mail mailer.Mailer) {
	ctrl := biodataController.NewBiodataController(db, blob, mail)

	biodataRoute.BiodataPublicRoutes(public, ctrl)
	biodataRoute.BiodataRoutes(api, ctrl)
	profileRoute.ProfileRoutes(api, db, blob)
}
