package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/serviceorder"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator   *serviceorder.Coordinator
	Adjustments   *inventory.RegisterAdjustmentUseCase
	Replenishment *inventory.ReplenishmentUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Órdenes de servicio
	orders := api.Group("/service-orders")
	orderHandler := NewServiceOrderHandler(deps.Coordinator)
	writers := RequireRole(RoleAdmin, RoleReception, RoleMechanic)
	orders.Post("/", writers, orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id", writers, orderHandler.Update)
	orders.Delete("/:id", RequireRole(RoleAdmin, RoleReception), orderHandler.Cancel)

	// Inventario de piezas
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Adjustments, deps.Replenishment)
	inv.Post("/adjustments", RequireRole(RoleAdmin, RoleStorekeeper), inventoryHandler.RegisterAdjustment)
	inv.Get("/parts/:id/movements", inventoryHandler.ListByPart)
	inv.Get("/orders/:id/movements", inventoryHandler.ListByOrder)
	inv.Get("/low-stock", inventoryHandler.GetLowStock)
}
