package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/internal/app/services"
)

type APIKeyHandler struct {
	apiKeyService  *services.APIKeyService
	authMiddleware *middlewares.AuthMiddleware
}

func NewAPIKeyHandler(apiKeyService *services.APIKeyService, authMiddleware *middlewares.AuthMiddleware) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService:  apiKeyService,
		authMiddleware: authMiddleware,
	}
}

func (h *APIKeyHandler) RegisterRoutes(router fiber.Router) {
	keyGroup := router.Group("/keys")
	keyGroup.Use(h.authMiddleware.AuthUser)

	keyGroup.Post("/", h.CreateAPIKey)
	keyGroup.Get("/", h.ListAPIKeys)
	keyGroup.Post("/:id/revoke", h.RevokeAPIKey)
}

func (h *APIKeyHandler) CreateAPIKey(c *fiber.Ctx) error {
	var dto models.APIKeyCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	if dto.Name == "" {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Key name is required"))
	}

	user := middlewares.CurrentUser(c)
	response, err := h.apiKeyService.CreateAPIKey(c.Context(), user.ID, dto.Name)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}

func (h *APIKeyHandler) ListAPIKeys(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	keys, err := h.apiKeyService.ListAPIKeys(c.Context(), user.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, keys)
}

func (h *APIKeyHandler) RevokeAPIKey(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid API key ID"))
	}

	user := middlewares.CurrentUser(c)
	if err := h.apiKeyService.RevokeAPIKey(c.Context(), id, user.ID); err != nil {
		if err == services.ErrInvalidAPIKey {
			return pkg.ErrorResponse(c, errors.NewNotFoundError("API key not found"))
		}
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, true)
}
