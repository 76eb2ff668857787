package middlewares

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
)

// AdminOnly guards operational endpoints behind the ADMIN_TOKEN env var. An
// unset token disables admin access entirely.
func AdminOnly(c *fiber.Ctx) error {
	token := os.Getenv("ADMIN_TOKEN")
	if token == "" || c.Get("X-Admin-Token") != token {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("Admin access required"))
	}
	return c.Next()
}
