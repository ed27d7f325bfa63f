package entity

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parametros-credito/internal/domain/validity"
)

// InterestRate tasa de interés de un producto con su periodo de vigencia [StartDate, EndDate].
// EndDate nil = vigencia abierta hasta que otra tasa la cierre.
type InterestRate struct {
	ID                      string
	ProductID               string
	CalculationBasis        CalculationBasis
	CalculationMethod       CalculationMethod
	CapitalizationFrequency CapitalizationFrequency
	Value                   decimal.Decimal // porcentaje, (0, 50]
	StartDate               civil.Date
	EndDate                 *civil.Date
	Status                  Status
	Version                 int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Validity devuelve el intervalo de vigencia de la tasa.
func (r *InterestRate) Validity() validity.Interval {
	return validity.Interval{Start: r.StartDate, End: r.EndDate}
}

// IsActive indica si la tasa está en estado ACTIVE.
func (r *InterestRate) IsActive() bool { return r.Status == StatusActive }

// IsOpen indica si la tasa no tiene fecha de fin.
func (r *InterestRate) IsOpen() bool { return r.EndDate == nil }

// Clone copia la tasa, incluida la fecha de fin.
func (r *InterestRate) Clone() *InterestRate {
	c := *r
	if r.EndDate != nil {
		end := *r.EndDate
		c.EndDate = &end
	}
	return &c
}
