package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"hrportal_backend/internals/constants"
)

// RequirePermission passes only when every action on module is granted in the
// permission map the auth middleware stored for the user.
func RequirePermission(module string, actions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perms, _ := c.Locals("user_permissions").(constants.PermissionMap)
		for _, action := range actions {
			if !perms.Has(module, action) {
				log.Printf("[WARN] %v denied %s.%s\n", c.Locals("user_email"), module, action)
				return fiber.NewError(fiber.StatusForbidden, constants.ErrAccessDenied)
			}
		}
		return c.Next()
	}
}
