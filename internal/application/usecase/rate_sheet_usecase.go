package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

// RateSheet datos de la hoja de tasas de un producto a una fecha de corte.
type RateSheet struct {
	Product     *entity.CreditProduct
	Rates       []*entity.InterestRate
	Current     *entity.InterestRate // nil si no hay tasa vigente a GeneratedOn
	Documents   []*entity.RequiredDocument
	GeneratedOn civil.Date
}

// RateSheetGenerator puerto de salida que renderiza la hoja (PDF).
type RateSheetGenerator interface {
	GenerateRateSheet(ctx context.Context, sheet RateSheet) ([]byte, error)
}

// RateSheetUseCase arma la hoja de tasas de un producto y la delega al generador.
type RateSheetUseCase struct {
	products  repository.CreditProductRepository
	rates     *rates.RateLifecycleUseCase
	docs      repository.RequiredDocumentRepository
	generator RateSheetGenerator
	loc       *time.Location
	log       zerolog.Logger
	now       func() time.Time
}

// NewRateSheetUseCase construye el caso de uso.
func NewRateSheetUseCase(
	products repository.CreditProductRepository,
	rateUC *rates.RateLifecycleUseCase,
	docs repository.RequiredDocumentRepository,
	generator RateSheetGenerator,
	loc *time.Location,
	log zerolog.Logger,
) *RateSheetUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &RateSheetUseCase{
		products:  products,
		rates:     rateUC,
		docs:      docs,
		generator: generator,
		loc:       loc,
		log:       log.With().Str("component", "rate_sheet").Logger(),
		now:       time.Now,
	}
}

// Generate devuelve el PDF y un nombre de archivo sugerido.
func (uc *RateSheetUseCase) Generate(ctx context.Context, productID string) ([]byte, string, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, "", err
	}
	if product == nil {
		return nil, "", domain.NewNotFoundError(domain.EntityCreditProduct, productID)
	}
	list, err := uc.rates.ListByProduct(ctx, productID)
	if err != nil {
		return nil, "", err
	}
	docs, err := uc.docs.ListByProduct(ctx, productID, entity.StatusActive)
	if err != nil {
		return nil, "", err
	}

	today := civil.DateOf(uc.now().In(uc.loc))
	sheet := RateSheet{Product: product, Rates: list, Documents: docs, GeneratedOn: today}
	current, err := uc.rates.CurrentFor(ctx, productID, &today)
	switch {
	case err == nil:
		sheet.Current = current.Rate
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, "", err
	}

	pdf, err := uc.generator.GenerateRateSheet(ctx, sheet)
	if err != nil {
		return nil, "", fmt.Errorf("generar hoja de tasas: %w", err)
	}
	uc.log.Info().Str("product_id", productID).Int("rates", len(list)).Msg("hoja de tasas generada")
	return pdf, fmt.Sprintf("tasas-%s-%s.pdf", product.Code, today), nil
}
