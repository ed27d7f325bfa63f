package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var _ repository.CreditProductRepository = (*CreditProductRepo)(nil)

// CreditProductRepo productos en memoria.
type CreditProductRepo struct {
	s *Store
}

// NewCreditProductRepository construye el repositorio.
func NewCreditProductRepository(s *Store) *CreditProductRepo {
	return &CreditProductRepo{s: s}
}

func cloneProduct(p *entity.CreditProduct) *entity.CreditProduct {
	c := *p
	return &c
}

// Create persiste el producto; el código es único.
func (r *CreditProductRepo) Create(_ context.Context, product *entity.CreditProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Code == product.Code {
			return domain.ErrDuplicate
		}
	}
	if product.Version == 0 {
		product.Version = 1
	}
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

// Update aplica bloqueo optimista sobre Version.
func (r *CreditProductRepo) Update(_ context.Context, product *entity.CreditProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.products[product.ID]
	if !ok || stored.Version != product.Version {
		return domain.NewConflictError(domain.EntityCreditProduct, product.ID, "el producto fue modificado por otra operación")
	}
	for _, p := range r.s.products {
		if p.ID != product.ID && p.Code == product.Code {
			return domain.ErrDuplicate
		}
	}
	product.Version++
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *CreditProductRepo) GetByID(_ context.Context, id string) (*entity.CreditProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

// GetByCode devuelve (nil, nil) si no existe.
func (r *CreditProductRepo) GetByCode(_ context.Context, code string) (*entity.CreditProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.Code == code {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

// ListByStatus lista productos por estado ordenados por nombre.
func (r *CreditProductRepo) ListByStatus(_ context.Context, status entity.Status) ([]*entity.CreditProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.CreditProduct
	for _, p := range r.s.products {
		if p.Status == status {
			list = append(list, cloneProduct(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Exists indica si el producto existe.
func (r *CreditProductRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.products[id]
	return ok, nil
}
