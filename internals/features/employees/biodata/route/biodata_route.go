package route

import (
	"github.com/gofiber/fiber/v2"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/controller"
	rateLimiter "hrportal_backend/internals/middlewares"
	authMiddleware "hrportal_backend/internals/middlewares/auth"
)

// BiodataPublicRoutes mounts the unauthenticated intake form.
func BiodataPublicRoutes(r fiber.Router, ctrl *controller.BiodataController) {
	r.Post("/biodata", rateLimiter.BiodataRateLimiter(), ctrl.Submit)
}

// BiodataRoutes mounts /biodata under an authenticated group.
func BiodataRoutes(r fiber.Router, ctrl *controller.BiodataController) {
	perm := func(action string) fiber.Handler {
		return authMiddleware.RequirePermission(constants.ModuleBiodata, action)
	}

	g := r.Group("/biodata")
	g.Get("/export", perm(constants.ActionExport), ctrl.Export)

	requests := g.Group("/requests")
	requests.Get("/", perm(constants.ActionView), ctrl.ListRequests)
	requests.Get("/:id", perm(constants.ActionView), ctrl.GetRequest)
	requests.Post("/:id/review", perm(constants.ActionEdit), ctrl.Review)
	requests.Delete("/:id", perm(constants.ActionDelete), ctrl.DeleteRequest)

	employees := g.Group("/employees")
	employees.Get("/", perm(constants.ActionView), ctrl.ListEmployees)
	employees.Get("/:id", perm(constants.ActionView), ctrl.GetEmployee)
	employees.Patch("/:id", perm(constants.ActionEdit), ctrl.UpdateEmployee)
	employees.Delete("/:id", perm(constants.ActionDelete), ctrl.DeleteEmployee)
}
