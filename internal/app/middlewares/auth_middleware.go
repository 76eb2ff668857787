package middlewares

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/internal/app/services"
)

type AuthMiddleware struct {
	authService   *services.AuthService
	apiKeyService *services.APIKeyService
	userService   *services.UserService
}

func NewAuthMiddleware(authService *services.AuthService, apiKeyService *services.APIKeyService, userService *services.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		authService:   authService,
		apiKeyService: apiKeyService,
		userService:   userService,
	}
}

// AuthUser authenticates the request with either a Bearer JWT or an X-API-Key
// header and stores the resolved user in Locals.
func (m *AuthMiddleware) AuthUser(c *fiber.Ctx) error {
	if key := c.Get("X-API-Key"); key != "" {
		return m.authByAPIKey(c, key)
	}

	token := c.Get("Authorization")
	if token == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}
	token = strings.Replace(token, "Bearer ", "", 1)

	user, err := m.authService.VerifyToken(token)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	c.Locals("user", user)

	return c.Next()
}

func (m *AuthMiddleware) authByAPIKey(c *fiber.Ctx, key string) error {
	apiKey, err := m.apiKeyService.GetByKey(c.Context(), key)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid API key"))
	}

	user, err := m.userService.GetUser(apiKey.UserID)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid API key"))
	}

	// Track key usage off the request path.
	keyID := apiKey.ID
	go func() {
		if err := m.apiKeyService.TouchLastUsed(context.Background(), keyID); err != nil {
			logrus.Errorf("failed to update API key last used: %v", err)
		}
	}()

	c.Locals("user", user)
	c.Locals("api_key", apiKey)

	return c.Next()
}

// CurrentUser returns the authenticated user set by AuthUser.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
