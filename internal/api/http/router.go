package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/http/handlers"
	"github.com/spec-kit/marketplace/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Profile    *handlers.ProfileHandler
	Products   *handlers.ProductsHandler
	Orders     *handlers.OrdersHandler
	Admin      *handlers.AdminHandler
	Pages      *handlers.PagesHandler
	Metrics    fiber.Handler
	Gatekeeper *auth.Gatekeeper
}

// RegisterRoutes wires HTTP routes. The gatekeeper runs ahead of every
// route; which routes are public is decided by the policy table alone.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gatekeeper.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Get("/", cfg.Pages.Public("home"))
	app.Get("/login", cfg.Pages.Public("login"))
	app.Get("/register", cfg.Pages.Public("register"))
	app.Get("/unauthorized", cfg.Pages.Public("unauthorized"))
	app.Get("/dashboard", cfg.Pages.Dashboard)
	app.Get("/dashboard/*", cfg.Pages.Area)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	api.Post("/logout", cfg.Auth.Logout)
	api.Get("/me", cfg.Auth.Me)

	api.Get("/profile", cfg.Profile.Get)
	api.Patch("/profile", cfg.Profile.Update)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Patch("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)

	orders := api.Group("/orders")
	orders.Get("/", cfg.Orders.List)
	orders.Post("/", cfg.Orders.Create)

	admin := api.Group("/admin")
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id", cfg.Admin.ChangeRole)
	admin.Get("/products", cfg.Products.List)
	admin.Patch("/products/:id", cfg.Products.Update)
	admin.Delete("/products/:id", cfg.Products.Delete)
	admin.Get("/orders", cfg.Orders.List)
	admin.Patch("/orders/:id", cfg.Admin.UpdateOrder)
	admin.Delete("/orders/:id", cfg.Admin.DeleteOrder)
}
