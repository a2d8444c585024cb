package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC *inventory.LedgerUseCase
	Log      *logger.Logger
	// JWTSecret vacío = mutaciones sin autenticación (estaciones en red local).
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.Log)
	labelHandler := NewLabelHandler(deps.LedgerUC)

	// Mutaciones: con JWT_SECRET configurado requieren token de estación.
	var guard []fiber.Handler
	if deps.JWTSecret != "" {
		guard = append(guard,
			AuthMiddleware(deps.JWTSecret),
			RequireRole(jwt.RoleOperator, jwt.RoleSupervisor),
		)
	}
	protect := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler(nil), guard...), h)
	}

	// Ledger
	ledgerGroup := api.Group("/ledger")
	ledgerGroup.Get("/lines", inventoryHandler.List)
	ledgerGroup.Get("/search", inventoryHandler.Search)
	ledgerGroup.Post("/receipts", protect(inventoryHandler.Receive)...)
	ledgerGroup.Post("/dispatches", protect(inventoryHandler.Dispatch)...)

	// Etiquetas
	labelsGroup := api.Group("/labels")
	labelsGroup.Get("/:identifier/pdf", labelHandler.PDF)
	labelsGroup.Post("/:identifier/reprint", protect(labelHandler.Reprint)...)
}
