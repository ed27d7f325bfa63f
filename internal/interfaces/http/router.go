package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.CreditProductUseCase
	RateUC     *rates.RateLifecycleUseCase
	DocumentUC *usecase.RequiredDocumentUseCase
	RateSheet  *usecase.RateSheetUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	productHandler := NewCreditProductHandler(deps.ProductUC, deps.RateSheet)
	rateHandler := NewInterestRateHandler(deps.RateUC)
	documentHandler := NewRequiredDocumentHandler(deps.DocumentUC)

	// Las rutas estáticas van antes de /:id.
	products := api.Group("/credit-products")
	products.Post("/", productHandler.Create)
	products.Get("/active", productHandler.ListActive)
	products.Get("/code/:code", productHandler.GetByCode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/interest-rates", rateHandler.ListByProduct)
	products.Get("/:id/current-rate", rateHandler.Current)
	products.Get("/:id/required-documents", documentHandler.ListByProduct)
	products.Get("/:id/rate-sheet", productHandler.RateSheet)

	interestRates := api.Group("/interest-rates")
	interestRates.Post("/", rateHandler.Create)
	interestRates.Get("/:id", rateHandler.GetByID)
	interestRates.Put("/:id", rateHandler.Update)

	documents := api.Group("/required-documents")
	documents.Post("/", documentHandler.Create)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Put("/:id", documentHandler.Update)
}
