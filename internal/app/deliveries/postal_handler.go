package deliveries

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/internal/app/pkg"
	"github.com/zipgate/zipgate-core/internal/app/services"
)

type PostalHandler struct {
	postalService       *services.PostalService
	logService          *services.LogService
	authMiddleware      *middlewares.AuthMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewPostalHandler(postalService *services.PostalService, logService *services.LogService, authMiddleware *middlewares.AuthMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *PostalHandler {
	return &PostalHandler{
		postalService:       postalService,
		logService:          logService,
		authMiddleware:      authMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *PostalHandler) RegisterRoutes(router fiber.Router) {
	// Dataset endpoints consume quota.
	router.Get("/autocomplete", h.authMiddleware.AuthUser, h.rateLimitMiddleware.LimitUser, h.Autocomplete)

	postalGroup := router.Group("/postal")
	postalGroup.Get("/stats", h.authMiddleware.AuthUser, h.Stats)
	postalGroup.Get("/:code", h.authMiddleware.AuthUser, h.rateLimitMiddleware.LimitUser, h.GetByCode)

	// Dataset management, not exposed to API consumers.
	router.Post("/admin/postal/import", middlewares.AdminOnly, h.Import)
	router.Delete("/admin/postal/:country", middlewares.AdminOnly, h.DeleteByCountry)
}

func (h *PostalHandler) Autocomplete(c *fiber.Ctx) error {
	start := time.Now()

	dto := models.AutocompleteDto{
		Query:       c.Query("q"),
		CountryCode: c.Query("country"),
		Language:    c.Query("lang"),
		Limit:       c.QueryInt("limit"),
	}

	results, err := h.postalService.Autocomplete(&dto)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	h.logRequest(c, start, fiber.StatusOK)

	return pkg.SuccessResponse(c, results)
}

func (h *PostalHandler) GetByCode(c *fiber.Ctx) error {
	start := time.Now()

	result, err := h.postalService.GetByCode(c.Params("code"), c.Query("country"), c.Query("lang"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	h.logRequest(c, start, fiber.StatusOK)

	return pkg.SuccessResponse(c, result)
}

func (h *PostalHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.postalService.Stats(c.Query("country"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, stats)
}

func (h *PostalHandler) Import(c *fiber.Ctx) error {
	var entries []models.PostalCode
	if err := c.BodyParser(&entries); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid postal data payload"))
	}

	if err := h.postalService.BulkImport(entries); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, fiber.Map{"imported": len(entries)})
}

func (h *PostalHandler) DeleteByCountry(c *fiber.Ctx) error {
	country := c.Params("country")
	if err := h.postalService.DeleteByCountry(country); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, true)
}

func (h *PostalHandler) logRequest(c *fiber.Ctx, start time.Time, statusCode int) {
	user := middlewares.CurrentUser(c)
	if user == nil {
		return
	}

	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0

	h.logService.RecordAsync(&models.RequestLog{
		UserID:       user.ID,
		Endpoint:     c.Path(),
		Method:       c.Method(),
		StatusCode:   statusCode,
		ResponseTime: decimal.NewFromFloat(elapsedMs).Round(2),
		UserAgent:    c.Get("User-Agent"),
		IPAddress:    c.IP(),
		Timestamp:    time.Now(),
	})
}
