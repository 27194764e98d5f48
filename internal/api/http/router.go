package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/http/handlers"
	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customers      *handlers.CustomersHandler
	Orders         *handlers.OrdersHandler
	Stock          *handlers.StockHandler
	Budgets        *handlers.BudgetsHandler
	Users          *handlers.UsersHandler
	Webhooks       *handlers.WebhooksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role gates here are the authoritative
// access control; any client-side menu filtering is cosmetic.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle)
	authed.Post("/auth/logout", cfg.Auth.Logout)
	authed.Get("/auth/me", cfg.Auth.Me)
	authed.Post("/auth/register", auth.RequireAdmin(), cfg.Auth.Register)

	customers := authed.Group("/customers", auth.RequireRole())
	customers.Post("", cfg.Customers.Create)
	customers.Get("", cfg.Customers.List)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Delete("/:id", auth.RequireAdmin(), cfg.Customers.Delete)

	orders := authed.Group("/orders", auth.RequireRole())
	orders.Post("", cfg.Orders.Create)
	orders.Get("", cfg.Orders.List)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id/status", auth.RequireRole(domain.RoleAdmin, domain.RoleTechnician), cfg.Orders.UpdateStatus)
	orders.Patch("/:id/technician", auth.RequireAdmin(), cfg.Orders.Assign)
	orders.Patch("/:id/diagnosis", auth.RequireRole(domain.RoleAdmin, domain.RoleTechnician), cfg.Orders.SetDiagnosis)
	orders.Post("/:id/parts", auth.RequireRole(domain.RoleAdmin, domain.RoleTechnician), cfg.Orders.AddPart)
	orders.Post("/:id/finalize", cfg.Orders.Finalize)

	stock := authed.Group("/stock", auth.RequireRole())
	stock.Get("/items", cfg.Stock.ListItems)
	stock.Get("/items/low", cfg.Stock.ListLowStock)
	stock.Get("/items/:id", cfg.Stock.GetItem)
	stock.Get("/items/:id/movements", cfg.Stock.ListMovements)
	stock.Post("/items", auth.RequireAdmin(), cfg.Stock.CreateItem)
	stock.Put("/items/:id", auth.RequireAdmin(), cfg.Stock.UpdateItem)
	stock.Post("/items/:id/movements", auth.RequireAdmin(), cfg.Stock.RecordMovement)

	budgets := authed.Group("/budgets", auth.RequireRole())
	budgets.Post("", cfg.Budgets.Create)
	budgets.Get("", cfg.Budgets.List)
	budgets.Get("/:id", cfg.Budgets.Get)
	budgets.Post("/:id/approve", cfg.Budgets.Approve)
	budgets.Post("/:id/reject", cfg.Budgets.Reject)
	budgets.Post("/:id/order", cfg.Budgets.LinkOrder)

	users := authed.Group("/users", auth.RequireAdmin())
	users.Get("", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Post("/:id/password", cfg.Users.ResetPassword)
	users.Delete("/:id", cfg.Users.Delete)

	webhooks := authed.Group("/webhooks", auth.RequireAdmin())
	webhooks.Get("/deliveries", cfg.Webhooks.ListDeliveries)
	webhooks.Post("", cfg.Webhooks.Create)
	webhooks.Get("", cfg.Webhooks.List)
	webhooks.Put("/:id", cfg.Webhooks.Update)
	webhooks.Delete("/:id", cfg.Webhooks.Delete)
}
