package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Service   *landedcost.Service
	Sheet     SheetRenderer
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleAnalyst, jwt.RoleViewer)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleAnalyst)
	admins := RequireRole(jwt.RoleAdmin)

	h := NewShipmentHandler(deps.Service, deps.Sheet)

	// Catálogo de gastos y simulación
	protected.Get("/expense-categories", readers, h.ListCategories)
	protected.Post("/landed-cost/calculate", readers, h.Preview)

	// Embarques
	shipments := protected.Group("/shipments")
	shipments.Post("/", writers, h.Create)
	shipments.Get("/", readers, h.List)
	shipments.Get("/:id", readers, h.GetByID)
	shipments.Delete("/:id", writers, h.Delete)
	shipments.Get("/:id/pdf", readers, h.PDF)
	shipments.Get("/:id/events", readers, h.Events)

	// Ítems y asignaciones manuales
	shipments.Post("/:id/items", writers, h.AddItem)
	shipments.Delete("/:id/items/:itemId", writers, h.RemoveItem)
	shipments.Put("/:id/items/:itemId/override", writers, h.SetOverride)
	shipments.Delete("/:id/items/:itemId/override", writers, h.ClearOverride)

	// Costos compartidos
	shipments.Post("/:id/shared-costs", writers, h.AddSharedCost)
	shipments.Delete("/:id/shared-costs/:costId", writers, h.RemoveSharedCost)

	// Ciclo de vida
	shipments.Post("/:id/recalculate", writers, h.Recalculate)
	shipments.Post("/:id/finalize", admins, h.Finalize)
	shipments.Post("/:id/push-prices", admins, h.PushPrices)
}
