package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

type RateLimitHandler struct {
	limiter        *ratelimit.Limiter
	counters       ratelimit.CounterStore
	authMiddleware *middlewares.AuthMiddleware
}

func NewRateLimitHandler(limiter *ratelimit.Limiter, counters ratelimit.CounterStore, authMiddleware *middlewares.AuthMiddleware) *RateLimitHandler {
	return &RateLimitHandler{
		limiter:        limiter,
		counters:       counters,
		authMiddleware: authMiddleware,
	}
}

func (h *RateLimitHandler) RegisterRoutes(router fiber.Router) {
	// Status lookup does not consume quota.
	router.Get("/ratelimit", h.authMiddleware.AuthUser, h.GetStatus)

	router.Post("/admin/users/:id/ratelimit/reset", middlewares.AdminOnly, h.ResetCounters)
}

func (h *RateLimitHandler) GetStatus(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)

	minute, err := h.limiter.CheckWindow(c.Context(), user.ID, ratelimit.WindowMinute)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	day, err := h.limiter.CheckWindow(c.Context(), user.ID, ratelimit.WindowDay)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, ratelimit.Decision{
		Allowed: minute.Allowed && day.Allowed,
		Minute:  *minute,
		Day:     *day,
	})
}

func (h *RateLimitHandler) ResetCounters(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid user ID"))
	}

	var window *ratelimit.WindowType
	if name := c.Query("window"); name != "" {
		w := ratelimit.WindowType(name)
		if !w.Valid() {
			return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid window type, expected minute or day"))
		}
		window = &w
	}

	reset, err := h.counters.Reset(c.Context(), userID, window)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, fiber.Map{"reset": reset})
}
