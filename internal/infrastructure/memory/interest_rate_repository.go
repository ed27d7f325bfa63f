package memory

import (
	"context"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
	"github.com/jhoicas/parametros-credito/internal/domain/validity"
)

var _ repository.InterestRateRepository = (*InterestRateRepo)(nil)

// InterestRateRepo tasas en memoria. Replica la unicidad del periodo abierto y la
// exclusión de traslapes entre tasas ACTIVE del esquema PostgreSQL.
//
// Dentro de TxRunner opera sobre las filas de la transacción; fuera, cada escritura es una
// transacción propia (autocommit) que espera a las transacciones en curso.
type InterestRateRepo struct {
	s  *Store
	tx *rateTx
}

// NewInterestRateRepository construye el repositorio.
func NewInterestRateRepository(s *Store) *InterestRateRepo {
	return &InterestRateRepo{s: s}
}

// Create persiste una tasa nueva.
func (r *InterestRateRepo) Create(_ context.Context, rate *entity.InterestRate) error {
	return r.write(func(rows map[string]*entity.InterestRate) error {
		if _, ok := rows[rate.ID]; ok {
			return domain.ErrDuplicate
		}
		if err := checkConstraints(rows, rate); err != nil {
			return err
		}
		if rate.Version == 0 {
			rate.Version = 1
		}
		rows[rate.ID] = rate.Clone()
		return nil
	})
}

// Update persiste la tasa si la versión coincide.
func (r *InterestRateRepo) Update(_ context.Context, rate *entity.InterestRate) error {
	return r.write(func(rows map[string]*entity.InterestRate) error {
		stored, ok := rows[rate.ID]
		if !ok || stored.Version != rate.Version {
			return domain.NewConflictError(domain.EntityInterestRate, rate.ID, "la tasa fue modificada por otra operación")
		}
		if err := checkConstraints(rows, rate); err != nil {
			return err
		}
		rate.Version++
		rows[rate.ID] = rate.Clone()
		return nil
	})
}

// write aplica fn sobre las filas de la transacción o, fuera de ella, sobre las compartidas.
// Sin transacción no se debe llamar mientras se ejecuta un fn de TxRunner en la misma goroutine.
func (r *InterestRateRepo) write(fn func(rows map[string]*entity.InterestRate) error) error {
	if r.tx != nil {
		return fn(r.tx.rows)
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.rates)
}

func (r *InterestRateRepo) read(fn func(rows map[string]*entity.InterestRate)) {
	if r.tx != nil {
		fn(r.tx.rows)
		return
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	fn(r.s.rates)
}

func checkConstraints(rows map[string]*entity.InterestRate, rate *entity.InterestRate) error {
	if !rate.IsActive() {
		return nil
	}
	for _, other := range rows {
		if other.ID == rate.ID || other.ProductID != rate.ProductID || !other.IsActive() {
			continue
		}
		if other.IsOpen() && rate.IsOpen() {
			return domain.NewConflictError(domain.EntityInterestRate, rate.ID, "ya existe un periodo abierto para el producto")
		}
		if validity.Overlaps(other.Validity(), rate.Validity()) {
			return domain.NewConflictError(domain.EntityInterestRate, rate.ID, "periodo traslapado con otra tasa activa")
		}
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InterestRateRepo) GetByID(_ context.Context, id string) (*entity.InterestRate, error) {
	var found *entity.InterestRate
	r.read(func(rows map[string]*entity.InterestRate) {
		if rate, ok := rows[id]; ok {
			found = rate.Clone()
		}
	})
	return found, nil
}

// ListByProduct todas las tasas del producto, inicio más reciente primero.
func (r *InterestRateRepo) ListByProduct(_ context.Context, productID string) ([]*entity.InterestRate, error) {
	return r.filter(func(rate *entity.InterestRate) bool { return rate.ProductID == productID }), nil
}

// ListActiveByProduct tasas ACTIVE del producto, inicio más reciente primero.
func (r *InterestRateRepo) ListActiveByProduct(_ context.Context, productID string) ([]*entity.InterestRate, error) {
	return r.filter(func(rate *entity.InterestRate) bool {
		return rate.ProductID == productID && rate.IsActive()
	}), nil
}

// ListEffectiveOn tasas ACTIVE del producto cuyo periodo contiene on.
func (r *InterestRateRepo) ListEffectiveOn(_ context.Context, productID string, on civil.Date) ([]*entity.InterestRate, error) {
	return r.filter(func(rate *entity.InterestRate) bool {
		return rate.ProductID == productID && rate.IsActive() && rate.Validity().Contains(on)
	}), nil
}

func (r *InterestRateRepo) filter(keep func(*entity.InterestRate) bool) []*entity.InterestRate {
	var list []*entity.InterestRate
	r.read(func(rows map[string]*entity.InterestRate) {
		for _, rate := range rows {
			if keep(rate) {
				list = append(list, rate.Clone())
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartDate == list[j].StartDate {
			return list[i].ID < list[j].ID
		}
		return list[i].StartDate.After(list[j].StartDate)
	})
	return list
}
