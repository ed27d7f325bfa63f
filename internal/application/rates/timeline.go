package rates

import (
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/validity"
)

// planClosures decide qué tasas activas hay que cerrar para insertar candidate.
//
// Las tasas abiertas que empiezan antes que candidate se comparan ya cerradas en
// candidate.StartDate-1; todas (no solo la primera) se cierran. Una tasa abierta que
// empieza en la misma fecha o después no se puede cerrar sin invertir su intervalo,
// así que se compara tal cual. Cualquier traslape devuelve OVERLAPPING_PERIOD.
// La propia candidate (mismo ID) se ignora.
func planClosures(candidate *entity.InterestRate, active []*entity.InterestRate) ([]*entity.InterestRate, error) {
	if !candidate.IsActive() {
		return nil, nil
	}
	target := candidate.Validity()
	var closures []*entity.InterestRate
	for _, existing := range active {
		if existing == nil || !existing.IsActive() {
			continue
		}
		if candidate.ID != "" && existing.ID == candidate.ID {
			continue
		}
		projected := existing.Validity()
		closing := existing.IsOpen() && existing.StartDate.Before(candidate.StartDate)
		if closing {
			projected = projected.ClosedBefore(candidate.StartDate)
		}
		if validity.Overlaps(target, projected) {
			return nil, domain.NewValidationError(domain.EntityInterestRate, "start_date", domain.CodeOverlappingPeriod,
				"existe traslape con la tasa vigente "+existing.ID)
		}
		if closing {
			closed := existing.Clone()
			closed.EndDate = projected.End
			closures = append(closures, closed)
		}
	}
	return closures, nil
}
