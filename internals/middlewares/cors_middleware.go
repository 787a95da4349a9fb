package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"hrportal_backend/internals/configs"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:3000",
}

// CorsMiddleware reads ALLOWED_ORIGINS (comma separated).
func CorsMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins(configs.GetEnv("ALLOWED_ORIGINS")), ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowCredentials: true,
	})
}

func allowedOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		// "*" is not allowed together with credentials
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	if len(out) == 0 {
		return defaultOrigins
	}
	return out
}
