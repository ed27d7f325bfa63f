package dto

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// InterestRateRequest entrada para crear o actualizar una tasa. Las fechas van como AAAA-MM-DD;
// end_date ausente o null = vigencia indefinida.
type InterestRateRequest struct {
	ProductID               string          `json:"product_id"`
	CalculationBasis        string          `json:"calculation_basis"`
	CalculationMethod       string          `json:"calculation_method"`
	CapitalizationFrequency string          `json:"capitalization_frequency"`
	Value                   decimal.Decimal `json:"value"`
	StartDate               string          `json:"start_date"`
	EndDate                 *string         `json:"end_date"`
	Status                  string          `json:"status"`
	Version                 *int64          `json:"version"`
}

// ToInput convierte la petición al modelo del núcleo. Solo rechaza valores mal formados
// (enum desconocido, fecha ilegible); los campos vacíos los valida el caso de uso en su orden.
func (r InterestRateRequest) ToInput() (rates.RateInput, error) {
	in := rates.RateInput{
		ProductID: strings.TrimSpace(r.ProductID),
		Value:     r.Value,
		Version:   r.Version,
	}
	var err error
	if strings.TrimSpace(r.CalculationBasis) != "" {
		if in.CalculationBasis, err = entity.ParseCalculationBasis(r.CalculationBasis); err != nil {
			return in, err
		}
	}
	if strings.TrimSpace(r.CalculationMethod) != "" {
		if in.CalculationMethod, err = entity.ParseCalculationMethod(r.CalculationMethod); err != nil {
			return in, err
		}
	}
	if strings.TrimSpace(r.CapitalizationFrequency) != "" {
		if in.CapitalizationFrequency, err = entity.ParseCapitalizationFrequency(r.CapitalizationFrequency); err != nil {
			return in, err
		}
	}
	if strings.TrimSpace(r.Status) != "" {
		if in.Status, err = entity.ParseStatus(domain.EntityInterestRate, r.Status); err != nil {
			return in, err
		}
	}
	if in.StartDate, err = parseDate("start_date", r.StartDate); err != nil {
		return in, err
	}
	if r.EndDate != nil {
		if in.EndDate, err = parseDate("end_date", *r.EndDate); err != nil {
			return in, err
		}
	}
	return in, nil
}

// parseDate devuelve nil para texto vacío.
func parseDate(field, raw string) (*civil.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return nil, domain.NewValidationError(domain.EntityInterestRate, field, domain.CodeInvalidInterval,
			"fecha no válida, se espera AAAA-MM-DD: "+raw)
	}
	return &d, nil
}

// ParseQueryDate interpreta el parámetro ?date= de la consulta de tasa vigente.
func ParseQueryDate(raw string) (*civil.Date, error) {
	return parseDate("date", raw)
}

// InterestRateResponse salida de una tasa.
type InterestRateResponse struct {
	ID                      string          `json:"id"`
	ProductID               string          `json:"product_id"`
	CalculationBasis        string          `json:"calculation_basis"`
	CalculationMethod       string          `json:"calculation_method"`
	CapitalizationFrequency string          `json:"capitalization_frequency"`
	Value                   decimal.Decimal `json:"value"`
	StartDate               string          `json:"start_date"`
	EndDate                 *string         `json:"end_date"`
	Status                  string          `json:"status"`
	Version                 int64           `json:"version"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// ToInterestRateResponse mapea la entidad a su representación HTTP.
func ToInterestRateResponse(r *entity.InterestRate) InterestRateResponse {
	resp := InterestRateResponse{
		ID:                      r.ID,
		ProductID:               r.ProductID,
		CalculationBasis:        string(r.CalculationBasis),
		CalculationMethod:       string(r.CalculationMethod),
		CapitalizationFrequency: string(r.CapitalizationFrequency),
		Value:                   r.Value,
		StartDate:               r.StartDate.String(),
		Status:                  string(r.Status),
		Version:                 r.Version,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
	if r.EndDate != nil {
		end := r.EndDate.String()
		resp.EndDate = &end
	}
	return resp
}

// ToInterestRateList mapea una lista de tasas.
func ToInterestRateList(list []*entity.InterestRate) ListResponse[InterestRateResponse] {
	items := make([]InterestRateResponse, 0, len(list))
	for _, r := range list {
		items = append(items, ToInterestRateResponse(r))
	}
	return NewListResponse(items)
}

// CurrentRateResponse tasa vigente para una fecha. Warnings no vacío indica datos inconsistentes.
type CurrentRateResponse struct {
	OnDate       string               `json:"on_date"`
	Rate         InterestRateResponse `json:"rate"`
	Ambiguous    bool                 `json:"ambiguous"`
	CandidateIDs []string             `json:"candidate_ids,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// ToCurrentRateResponse mapea el resultado de la consulta de tasa vigente.
func ToCurrentRateResponse(c *rates.CurrentRate) CurrentRateResponse {
	resp := CurrentRateResponse{
		OnDate:    c.OnDate.String(),
		Rate:      ToInterestRateResponse(c.Rate),
		Ambiguous: c.Ambiguous(),
		Warnings:  c.Warnings,
	}
	if resp.Ambiguous {
		resp.CandidateIDs = c.CandidateIDs
	}
	return resp
}
