//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/zipgate/zipgate-core/internal/app/deliveries"
	"github.com/zipgate/zipgate-core/internal/app/middlewares"
	"github.com/zipgate/zipgate-core/internal/app/services"
	"github.com/zipgate/zipgate-core/internal/infrastructures"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	infrastructures.NewRateLimitClock,
	infrastructures.NewRateLimitPolicy,
	infrastructures.NewJanitor,
	wire.Value("zipgate"),
	wire.Bind(new(middlewares.IPLimiter), new(*middlewares.RedisIPLimiter)),
	middlewares.NewRedisIPLimiter,
)

// Rate limit engine providers
var rateLimitSet = wire.NewSet(
	ratelimit.NewGormStore,
	wire.Bind(new(ratelimit.CounterStore), new(*ratelimit.GormStore)),
	wire.Bind(new(ratelimit.PlanResolver), new(*services.UserService)),
	ratelimit.NewLimiter,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewUserService,
	services.NewAuthService,
	services.NewAPIKeyService,
	services.NewPostalService,
	services.NewLogService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewRateLimitMiddleware,
	middlewares.NewIPLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewAuthHandler,
	deliveries.NewUserHandler,
	deliveries.NewAPIKeyHandler,
	deliveries.NewPostalHandler,
	deliveries.NewAnalyticsHandler,
	deliveries.NewRateLimitHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		rateLimitSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil
}
