package rates

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

// MaxRateValue tope del valor de la tasa en porcentaje.
var MaxRateValue = decimal.NewFromInt(50)

// RateInput campos de una tasa ya convertidos a variantes válidas en la frontera HTTP.
// StartDate nil = no informada. Status vacío = ACTIVE en creación, sin cambio en actualización.
// Version, si se informa en actualización, debe coincidir con la almacenada.
type RateInput struct {
	ProductID               string
	CalculationBasis        entity.CalculationBasis
	CalculationMethod       entity.CalculationMethod
	CapitalizationFrequency entity.CapitalizationFrequency
	Value                   decimal.Decimal
	StartDate               *civil.Date
	EndDate                 *civil.Date
	Status                  entity.Status
	Version                 *int64
}

// CurrentRate resultado de la consulta de tasa vigente. Warnings no vacío indica que el
// almacenamiento devolvió más de una tasa para la fecha y se eligió la de inicio más reciente.
type CurrentRate struct {
	Rate         *entity.InterestRate
	OnDate       civil.Date
	CandidateIDs []string
	Warnings     []string
}

// Ambiguous indica si hubo más de una tasa vigente para la fecha.
func (c *CurrentRate) Ambiguous() bool { return len(c.CandidateIDs) > 1 }

// RateLifecycleUseCase mantiene, por producto, una línea de tiempo de tasas sin traslapes:
// valida, cierra la tasa abierta anterior y persiste la nueva en una sola transacción.
type RateLifecycleUseCase struct {
	txRunner TxRunner
	rates    repository.InterestRateRepository
	products ProductRegistry
	cache    CurrentRateCache
	log      zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewRateLifecycleUseCase construye el caso de uso. cache puede ser nil; loc define el "hoy"
// de las consultas sin fecha (nil = UTC).
func NewRateLifecycleUseCase(
	txRunner TxRunner,
	rates repository.InterestRateRepository,
	products ProductRegistry,
	cache CurrentRateCache,
	log zerolog.Logger,
	loc *time.Location,
) *RateLifecycleUseCase {
	if cache == nil {
		cache = noCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RateLifecycleUseCase{
		txRunner: txRunner,
		rates:    rates,
		products: products,
		cache:    cache,
		log:      log.With().Str("component", "rate_lifecycle").Logger(),
		loc:      loc,
		now:      time.Now,
	}
}

// Create valida la tasa, cierra las tasas abiertas anteriores del producto en
// StartDate-1 y persiste la nueva como ACTIVE.
func (uc *RateLifecycleUseCase) Create(ctx context.Context, in RateInput) (*entity.InterestRate, error) {
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}
	now := uc.now()
	status := in.Status
	if status == "" {
		status = entity.StatusActive
	}
	rate := &entity.InterestRate{
		ID:                      uuid.New().String(),
		ProductID:               in.ProductID,
		CalculationBasis:        in.CalculationBasis,
		CalculationMethod:       in.CalculationMethod,
		CapitalizationFrequency: in.CapitalizationFrequency,
		Value:                   in.Value,
		StartDate:               *in.StartDate,
		EndDate:                 in.EndDate,
		Status:                  status,
		Version:                 1,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	// El ID recién generado no está en el almacenamiento: en creación nada se excluye.
	err := uc.txRunner.RunForProduct(ctx, rate.ProductID, func(rates repository.InterestRateRepository) error {
		active, err := rates.ListActiveByProduct(ctx, rate.ProductID)
		if err != nil {
			return err
		}
		closures, err := planClosures(rate, active)
		if err != nil {
			return err
		}
		if err := uc.applyClosures(ctx, rates, closures, now); err != nil {
			return err
		}
		return rates.Create(ctx, rate)
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, rate.ProductID)
	uc.log.Info().
		Str("rate_id", rate.ID).
		Str("product_id", rate.ProductID).
		Str("start_date", rate.StartDate.String()).
		Msg("tasa de interés creada")
	return rate, nil
}

// Update reemplaza los campos de la tasa id con la misma secuencia de validación que Create.
// La propia tasa se excluye tanto del control de traslapes como del cierre de tasas abiertas.
func (uc *RateLifecycleUseCase) Update(ctx context.Context, id string, in RateInput) (*entity.InterestRate, error) {
	existing, err := uc.rates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NewNotFoundError(domain.EntityInterestRate, id)
	}
	if err := uc.validate(ctx, in); err != nil {
		return nil, err
	}

	now := uc.now()
	var updated *entity.InterestRate
	err = uc.txRunner.RunForProduct(ctx, in.ProductID, func(rates repository.InterestRateRepository) error {
		current, err := rates.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError(domain.EntityInterestRate, id)
		}
		if in.Version != nil && *in.Version != current.Version {
			return domain.NewConflictError(domain.EntityInterestRate, id, "la versión no coincide")
		}
		candidate := current.Clone()
		candidate.ProductID = in.ProductID
		candidate.CalculationBasis = in.CalculationBasis
		candidate.CalculationMethod = in.CalculationMethod
		candidate.CapitalizationFrequency = in.CapitalizationFrequency
		candidate.Value = in.Value
		candidate.StartDate = *in.StartDate
		candidate.EndDate = in.EndDate
		if in.Status != "" {
			candidate.Status = in.Status
		}
		candidate.UpdatedAt = now

		active, err := rates.ListActiveByProduct(ctx, candidate.ProductID)
		if err != nil {
			return err
		}
		closures, err := planClosures(candidate, active)
		if err != nil {
			return err
		}
		if err := uc.applyClosures(ctx, rates, closures, now); err != nil {
			return err
		}
		if err := rates.Update(ctx, candidate); err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, updated.ProductID)
	if existing.ProductID != updated.ProductID {
		uc.cache.Invalidate(ctx, existing.ProductID)
	}
	uc.log.Info().Str("rate_id", id).Str("product_id", updated.ProductID).Msg("tasa de interés actualizada")
	return updated, nil
}

// GetByID obtiene una tasa por ID.
func (uc *RateLifecycleUseCase) GetByID(ctx context.Context, id string) (*entity.InterestRate, error) {
	rate, err := uc.rates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.NewNotFoundError(domain.EntityInterestRate, id)
	}
	return rate, nil
}

// ListByProduct lista todas las tasas del producto (cualquier estado), la más reciente primero.
func (uc *RateLifecycleUseCase) ListByProduct(ctx context.Context, productID string) ([]*entity.InterestRate, error) {
	if err := uc.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return uc.rates.ListByProduct(ctx, productID)
}

// CurrentFor devuelve la tasa ACTIVE cuyo periodo contiene on (hoy si on es nil).
// Si hay más de una se elige la de StartDate más reciente y se registra un aviso de integridad.
func (uc *RateLifecycleUseCase) CurrentFor(ctx context.Context, productID string, on *civil.Date) (*CurrentRate, error) {
	day := civil.DateOf(uc.now().In(uc.loc))
	if on != nil {
		day = *on
	}
	if err := uc.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	if cached, ok := uc.cache.Get(ctx, productID, day); ok {
		return &CurrentRate{Rate: cached, OnDate: day, CandidateIDs: []string{cached.ID}}, nil
	}
	// La generación se lee antes que el almacenamiento: si una escritura confirma en medio,
	// Set descarta este resultado.
	gen, cacheable := uc.cache.Generation(ctx, productID)

	list, err := uc.rates.ListEffectiveOn(ctx, productID, day)
	if err != nil {
		return nil, err
	}
	candidates := make([]*entity.InterestRate, 0, len(list))
	for _, r := range list {
		if r.IsActive() && r.Validity().Contains(day) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.NewNotFoundError(domain.EntityInterestRate, fmt.Sprintf("vigente %s@%s", productID, day))
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].StartDate != candidates[j].StartDate {
			return candidates[i].StartDate.After(candidates[j].StartDate)
		}
		return candidates[i].ID < candidates[j].ID
	})

	result := &CurrentRate{Rate: candidates[0], OnDate: day}
	for _, c := range candidates {
		result.CandidateIDs = append(result.CandidateIDs, c.ID)
	}
	if result.Ambiguous() {
		uc.log.Warn().
			Str("product_id", productID).
			Str("on_date", day.String()).
			Strs("candidate_ids", result.CandidateIDs).
			Str("chosen_id", result.Rate.ID).
			Msg("más de una tasa vigente para la fecha; se usa la de inicio más reciente")
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d tasas vigentes el %s para el producto; se eligió la de inicio más reciente", len(candidates), day))
		return result, nil
	}
	if cacheable {
		uc.cache.Set(ctx, productID, day, result.Rate, gen)
	}
	return result, nil
}

func (uc *RateLifecycleUseCase) validate(ctx context.Context, in RateInput) error {
	if in.ProductID == "" {
		return domain.NewValidationError(domain.EntityInterestRate, "product_id", domain.CodeRequired,
			"el ID del producto de crédito es requerido")
	}
	exists, err := uc.products.Exists(ctx, in.ProductID)
	if err != nil {
		return fmt.Errorf("verificar producto: %w", err)
	}
	if !exists {
		return domain.NewValidationError(domain.EntityInterestRate, "product_id", domain.CodeUnknownProduct,
			"el producto de crédito no existe")
	}
	if in.StartDate == nil {
		return domain.NewValidationError(domain.EntityInterestRate, "start_date", domain.CodeInvalidInterval,
			"la fecha de inicio de vigencia es requerida")
	}
	if !in.StartDate.IsValid() || (in.EndDate != nil && !in.EndDate.IsValid()) {
		return domain.NewValidationError(domain.EntityInterestRate, "start_date", domain.CodeInvalidInterval,
			"fecha de vigencia no válida")
	}
	if in.EndDate != nil && in.StartDate.After(*in.EndDate) {
		return domain.NewValidationError(domain.EntityInterestRate, "start_date", domain.CodeInvalidInterval,
			"la fecha de inicio debe ser anterior a la fecha de fin")
	}
	if !in.Value.IsPositive() {
		return domain.NewValidationError(domain.EntityInterestRate, "value", domain.CodeOutOfRange,
			"el valor de la tasa debe ser mayor a 0")
	}
	if in.Value.GreaterThan(MaxRateValue) {
		return domain.NewValidationError(domain.EntityInterestRate, "value", domain.CodeOutOfRange,
			"el valor de la tasa no puede exceder "+MaxRateValue.String()+"%")
	}
	switch {
	case in.CalculationBasis == "":
		return domain.NewValidationError(domain.EntityInterestRate, "calculation_basis", domain.CodeRequired, "la base de cálculo es requerida")
	case in.CalculationMethod == "":
		return domain.NewValidationError(domain.EntityInterestRate, "calculation_method", domain.CodeRequired, "el método de cálculo es requerido")
	case in.CapitalizationFrequency == "":
		return domain.NewValidationError(domain.EntityInterestRate, "capitalization_frequency", domain.CodeRequired, "la frecuencia de capitalización es requerida")
	}
	return nil
}

func (uc *RateLifecycleUseCase) applyClosures(
	ctx context.Context,
	rates repository.InterestRateRepository,
	closures []*entity.InterestRate,
	now time.Time,
) error {
	for _, closed := range closures {
		closed.UpdatedAt = now
		if err := rates.Update(ctx, closed); err != nil {
			return err
		}
		uc.log.Info().
			Str("rate_id", closed.ID).
			Str("product_id", closed.ProductID).
			Str("end_date", closed.EndDate.String()).
			Msg("cerrada vigencia de tasa anterior")
	}
	return nil
}

func (uc *RateLifecycleUseCase) requireProduct(ctx context.Context, productID string) error {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewNotFoundError(domain.EntityCreditProduct, productID)
	}
	return nil
}
