package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zipgate/zipgate-core/internal/app/deliveries"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

// Application represents the main application container for zipgate-core
type Application struct {
	HealthHandler     *deliveries.HealthHandler
	AuthHandler       *deliveries.AuthHandler
	UserHandler       *deliveries.UserHandler
	APIKeyHandler     *deliveries.APIKeyHandler
	PostalHandler     *deliveries.PostalHandler
	AnalyticsHandler  *deliveries.AnalyticsHandler
	RateLimitHandler  *deliveries.RateLimitHandler
	IPLimitMiddleware *middlewares.IPLimitMiddleware
	Janitor           *ratelimit.Janitor
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	// Everything sits behind the coarse per-IP screen; per-user quotas are
	// applied per route by the handlers.
	router.Use(app.IPLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	app.HealthHandler.RegisterRoutes(router)
	app.AuthHandler.RegisterRoutes(router)
	app.UserHandler.RegisterRoutes(router)
	app.APIKeyHandler.RegisterRoutes(router)
	app.PostalHandler.RegisterRoutes(router)
	app.AnalyticsHandler.RegisterRoutes(router)
	app.RateLimitHandler.RegisterRoutes(router)
}
