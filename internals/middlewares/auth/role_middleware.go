package auth

import (
	"github.com/gofiber/fiber/v2"

	"hrportal_backend/internals/constants"
)

// RoleMiddlewareWithCustomError lets only the given roles through.
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	if customForbiddenMessage == "" {
		customForbiddenMessage = constants.ErrAccessDenied
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, customForbiddenMessage)
	}
}

func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return RoleMiddlewareWithCustomError(roles, customMessage)
}

// EmployeesOnly answers other roles with a hint to go to the staff dashboard.
func EmployeesOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("userRole").(string); role == constants.RoleEmployee {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":    false,
			"message":    constants.RoleErrorEmployee("this page"),
			"error_code": "FORBIDDEN",
			"redirect":   "dashboard",
		})
	}
}
