package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditProduct producto de financiamiento vehicular. Las tasas y documentos lo referencian por ID.
type CreditProduct struct {
	ID               string
	Code             string // único, mayúsculas y dígitos
	Name             string
	Description      string
	AmountMin        decimal.Decimal
	AmountMax        decimal.Decimal
	TermMinMonths    int
	TermMaxMonths    int
	MaxFinancingPct  decimal.Decimal // porcentaje del valor del vehículo, 10..100
	VehicleCondition VehicleCondition
	Status           Status
	Version          int64 // token de bloqueo optimista
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive indica si el producto está en estado ACTIVE.
func (p *CreditProduct) IsActive() bool { return p.Status == StatusActive }
