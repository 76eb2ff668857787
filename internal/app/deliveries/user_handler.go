package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/internal/app/services"
)

type UserHandler struct {
	userService    *services.UserService
	authMiddleware *middlewares.AuthMiddleware
}

func NewUserHandler(userService *services.UserService, authMiddleware *middlewares.AuthMiddleware) *UserHandler {
	return &UserHandler{
		userService:    userService,
		authMiddleware: authMiddleware,
	}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userGroup := router.Group("/users/me")
	userGroup.Use(h.authMiddleware.AuthUser)

	userGroup.Get("/", h.GetMe)
	userGroup.Put("/plan", h.UpdatePlan)
	userGroup.Delete("/", h.DeleteMe)
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	return pkg.SuccessResponse(c, middlewares.CurrentUser(c))
}

func (h *UserHandler) UpdatePlan(c *fiber.Ctx) error {
	var dto models.UserUpdatePlanDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	user := middlewares.CurrentUser(c)
	updated, err := h.userService.UpdatePlan(user.ID, &dto)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, updated)
}

// DeleteMe removes the account along with its API keys and quota counters.
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	if err := h.userService.DeleteUser(c.Context(), user.ID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, true)
}
