package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// CreateCreditProductRequest entrada para crear un producto de crédito.
type CreateCreditProductRequest struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	AmountMin        decimal.Decimal `json:"amount_min"`
	AmountMax        decimal.Decimal `json:"amount_max"`
	TermMinMonths    int             `json:"term_min_months"`
	TermMaxMonths    int             `json:"term_max_months"`
	MaxFinancingPct  decimal.Decimal `json:"max_financing_pct"`
	VehicleCondition string          `json:"vehicle_condition"`
	Status           string          `json:"status"` // vacío = ACTIVE
}

// UpdateCreditProductRequest actualización parcial; los campos nil no cambian.
type UpdateCreditProductRequest struct {
	Code             *string          `json:"code"`
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	AmountMin        *decimal.Decimal `json:"amount_min"`
	AmountMax        *decimal.Decimal `json:"amount_max"`
	TermMinMonths    *int             `json:"term_min_months"`
	TermMaxMonths    *int             `json:"term_max_months"`
	MaxFinancingPct  *decimal.Decimal `json:"max_financing_pct"`
	VehicleCondition *string          `json:"vehicle_condition"`
	Status           *string          `json:"status"`
	Version          *int64           `json:"version"`
}

// CreditProductResponse salida de un producto de crédito.
type CreditProductResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	AmountMin        decimal.Decimal `json:"amount_min"`
	AmountMax        decimal.Decimal `json:"amount_max"`
	TermMinMonths    int             `json:"term_min_months"`
	TermMaxMonths    int             `json:"term_max_months"`
	MaxFinancingPct  decimal.Decimal `json:"max_financing_pct"`
	VehicleCondition string          `json:"vehicle_condition"`
	Status           string          `json:"status"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToCreditProductResponse mapea la entidad a su representación HTTP.
func ToCreditProductResponse(p *entity.CreditProduct) CreditProductResponse {
	return CreditProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		Description:      p.Description,
		AmountMin:        p.AmountMin,
		AmountMax:        p.AmountMax,
		TermMinMonths:    p.TermMinMonths,
		TermMaxMonths:    p.TermMaxMonths,
		MaxFinancingPct:  p.MaxFinancingPct,
		VehicleCondition: string(p.VehicleCondition),
		Status:           string(p.Status),
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
