package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var (
	productCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
	minProductAmount   = decimal.NewFromInt(1000)
	minFinancingPct    = decimal.NewFromInt(10)
	maxFinancingPct    = decimal.NewFromInt(100)
)

const maxTermMonths = 120

// CreditProductUseCase casos de uso del catálogo de productos de crédito.
type CreditProductUseCase struct {
	repo repository.CreditProductRepository
	now  func() time.Time
}

// NewCreditProductUseCase construye el caso de uso.
func NewCreditProductUseCase(repo repository.CreditProductRepository) *CreditProductUseCase {
	return &CreditProductUseCase{repo: repo, now: time.Now}
}

// Create registra un producto. El código se normaliza a mayúsculas y debe ser único.
func (uc *CreditProductUseCase) Create(ctx context.Context, in dto.CreateCreditProductRequest) (*dto.CreditProductResponse, error) {
	condition, err := entity.ParseVehicleCondition(in.VehicleCondition)
	if err != nil {
		return nil, err
	}
	status := entity.StatusActive
	if strings.TrimSpace(in.Status) != "" {
		if status, err = entity.ParseStatus(domain.EntityCreditProduct, in.Status); err != nil {
			return nil, err
		}
	}
	now := uc.now()
	product := &entity.CreditProduct{
		ID:               uuid.New().String(),
		Code:             normalizeCode(in.Code),
		Name:             strings.TrimSpace(in.Name),
		Description:      strings.TrimSpace(in.Description),
		AmountMin:        in.AmountMin,
		AmountMax:        in.AmountMax,
		TermMinMonths:    in.TermMinMonths,
		TermMaxMonths:    in.TermMaxMonths,
		MaxFinancingPct:  in.MaxFinancingPct,
		VehicleCondition: condition,
		Status:           status,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueCode(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, duplicateCode(err)
	}
	resp := dto.ToCreditProductResponse(product)
	return &resp, nil
}

// Update aplica los campos informados y revalida el producto completo.
func (uc *CreditProductUseCase) Update(ctx context.Context, id string, in dto.UpdateCreditProductRequest) (*dto.CreditProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError(domain.EntityCreditProduct, id)
	}
	if in.Version != nil && *in.Version != product.Version {
		return nil, domain.NewConflictError(domain.EntityCreditProduct, id, "la versión no coincide")
	}
	if in.Code != nil {
		product.Code = normalizeCode(*in.Code)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.AmountMin != nil {
		product.AmountMin = *in.AmountMin
	}
	if in.AmountMax != nil {
		product.AmountMax = *in.AmountMax
	}
	if in.TermMinMonths != nil {
		product.TermMinMonths = *in.TermMinMonths
	}
	if in.TermMaxMonths != nil {
		product.TermMaxMonths = *in.TermMaxMonths
	}
	if in.MaxFinancingPct != nil {
		product.MaxFinancingPct = *in.MaxFinancingPct
	}
	if in.VehicleCondition != nil {
		if product.VehicleCondition, err = entity.ParseVehicleCondition(*in.VehicleCondition); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		if product.Status, err = entity.ParseStatus(domain.EntityCreditProduct, *in.Status); err != nil {
			return nil, err
		}
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueCode(ctx, product); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, duplicateCode(err)
	}
	resp := dto.ToCreditProductResponse(product)
	return &resp, nil
}

// GetByID obtiene un producto por ID.
func (uc *CreditProductUseCase) GetByID(ctx context.Context, id string) (*dto.CreditProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError(domain.EntityCreditProduct, id)
	}
	resp := dto.ToCreditProductResponse(product)
	return &resp, nil
}

// GetByCode obtiene un producto por código (sin distinguir mayúsculas).
func (uc *CreditProductUseCase) GetByCode(ctx context.Context, code string) (*dto.CreditProductResponse, error) {
	code = normalizeCode(code)
	product, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError(domain.EntityCreditProduct, code)
	}
	resp := dto.ToCreditProductResponse(product)
	return &resp, nil
}

// ListActive lista los productos ACTIVE ordenados por nombre.
func (uc *CreditProductUseCase) ListActive(ctx context.Context) (dto.ListResponse[dto.CreditProductResponse], error) {
	list, err := uc.repo.ListByStatus(ctx, entity.StatusActive)
	if err != nil {
		return dto.ListResponse[dto.CreditProductResponse]{}, err
	}
	items := make([]dto.CreditProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToCreditProductResponse(p))
	}
	return dto.NewListResponse(items), nil
}

func (uc *CreditProductUseCase) ensureUniqueCode(ctx context.Context, product *entity.CreditProduct) error {
	existing, err := uc.repo.GetByCode(ctx, product.Code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != product.ID {
		return codeTaken(product.Code)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func codeTaken(code string) error {
	return domain.NewValidationError(domain.EntityCreditProduct, "code", domain.CodeDuplicate,
		"ya existe un producto con el código "+code)
}

// duplicateCode traduce la violación de unicidad que gana la carrera contra ensureUniqueCode.
func duplicateCode(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.NewValidationError(domain.EntityCreditProduct, "code", domain.CodeDuplicate,
			"ya existe un producto con ese código")
	}
	return err
}

func validateProduct(p *entity.CreditProduct) error {
	invalid := func(field, code, msg string) error {
		return domain.NewValidationError(domain.EntityCreditProduct, field, code, msg)
	}
	switch n := len(p.Code); {
	case n == 0:
		return invalid("code", domain.CodeRequired, "el código es requerido")
	case n < 3 || n > 20:
		return invalid("code", domain.CodeInvalidValue, "el código debe tener entre 3 y 20 caracteres")
	case !productCodePattern.MatchString(p.Code):
		return invalid("code", domain.CodeInvalidValue, "el código solo admite letras mayúsculas y dígitos")
	}
	switch n := utf8.RuneCountInString(p.Name); {
	case n == 0:
		return invalid("name", domain.CodeRequired, "el nombre es requerido")
	case n < 5 || n > 100:
		return invalid("name", domain.CodeInvalidValue, "el nombre debe tener entre 5 y 100 caracteres")
	}
	if utf8.RuneCountInString(p.Description) > 500 {
		return invalid("description", domain.CodeInvalidValue, "la descripción no puede exceder 500 caracteres")
	}
	if p.AmountMin.LessThan(minProductAmount) {
		return invalid("amount_min", domain.CodeOutOfRange, "el monto mínimo debe ser al menos 1000")
	}
	if !p.AmountMin.LessThan(p.AmountMax) {
		return invalid("amount_max", domain.CodeOutOfRange, "el monto máximo debe ser mayor al mínimo")
	}
	if p.TermMinMonths < 1 {
		return invalid("term_min_months", domain.CodeOutOfRange, "el plazo mínimo debe ser al menos 1 mes")
	}
	if p.TermMaxMonths > maxTermMonths {
		return invalid("term_max_months", domain.CodeOutOfRange, "el plazo máximo no puede exceder 120 meses")
	}
	if p.TermMinMonths >= p.TermMaxMonths {
		return invalid("term_max_months", domain.CodeOutOfRange, "el plazo máximo debe ser mayor al mínimo")
	}
	if p.MaxFinancingPct.LessThan(minFinancingPct) || p.MaxFinancingPct.GreaterThan(maxFinancingPct) {
		return invalid("max_financing_pct", domain.CodeOutOfRange, "el porcentaje de financiamiento debe estar entre 10 y 100")
	}
	return nil
}
