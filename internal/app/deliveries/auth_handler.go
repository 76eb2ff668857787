package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/internal/app/services"
)

type AuthHandler struct {
	authService       *services.AuthService
	authMiddleware    *middlewares.AuthMiddleware
	ipLimitMiddleware *middlewares.IPLimitMiddleware
}

func NewAuthHandler(authService *services.AuthService, authMiddleware *middlewares.AuthMiddleware, ipLimitMiddleware *middlewares.IPLimitMiddleware) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		authMiddleware:    authMiddleware,
		ipLimitMiddleware: ipLimitMiddleware,
	}
}

func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authGroup := router.Group("/auth")

	// Credential endpoints sit behind the per-IP screen.
	authGroup.Post("/register", h.ipLimitMiddleware.LimitByIP(middlewares.AuthLimit), h.Register)
	authGroup.Post("/login", h.ipLimitMiddleware.LimitByIP(middlewares.AuthLimit), h.Login)

	authGroup.Get("/verify", h.authMiddleware.AuthUser, h.Verify)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var dto models.UserRegisterDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	response, err := h.authService.Register(&dto)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var dto models.UserLoginDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	response, err := h.authService.Login(&dto)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	return pkg.SuccessResponse(c, user)
}
