package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/internal/app/services"
)

type AnalyticsHandler struct {
	logService     *services.LogService
	authMiddleware *middlewares.AuthMiddleware
}

func NewAnalyticsHandler(logService *services.LogService, authMiddleware *middlewares.AuthMiddleware) *AnalyticsHandler {
	return &AnalyticsHandler{
		logService:     logService,
		authMiddleware: authMiddleware,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/analytics", h.authMiddleware.AuthUser, h.GetAnalytics)
}

func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)

	summary, err := h.logService.Analytics(user.ID, c.Query("period"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, summary)
}
