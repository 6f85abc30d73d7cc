package http

import (
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/api/http/handlers"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/config"
	"github.com/spec-kit/marketplace/internal/observability"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/service"
)

// ServerDependencies are the collaborators the HTTP layer is built from.
type ServerDependencies struct {
	Config   config.AppConfig
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Sessions *auth.Sessions
	Policy   *policy.Engine
	Auth     *service.AuthService
	Products *service.ProductService
	Orders   *service.OrderService
	Admin    *service.AdminService
	Health   *handlers.HealthHandler
}

// NewServer assembles the fiber app with middlewares and routes.
func NewServer(deps ServerDependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               deps.Config.Name,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	RegisterMiddlewares(app, logger, deps.Metrics, deps.Config.RequestTimeout())

	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler(deps.Config.Name, deps.Config.Version, nil)
	}
	var metricsHandler fiber.Handler
	if deps.Metrics != nil {
		metricsHandler = deps.Metrics.Handler()
	}

	RegisterRoutes(app, RouteConfig{
		Health:     health,
		Auth:       handlers.NewAuthHandler(deps.Auth, deps.Sessions),
		Profile:    handlers.NewProfileHandler(deps.Auth, deps.Sessions),
		Products:   handlers.NewProductsHandler(deps.Products, deps.Sessions),
		Orders:     handlers.NewOrdersHandler(deps.Orders, deps.Sessions),
		Admin:      handlers.NewAdminHandler(deps.Admin, deps.Sessions),
		Pages:      handlers.NewPagesHandler(deps.Sessions, deps.Policy),
		Metrics:    metricsHandler,
		Gatekeeper: auth.NewGatekeeper(deps.Sessions, deps.Policy, logger),
	})
	return app
}
