package repository

import (
	"context"

	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// CreditProductRepository define el puerto de persistencia para CreditProduct (DIP).
// GetByID y GetByCode devuelven (nil, nil) si no existe.
type CreditProductRepository interface {
	Create(ctx context.Context, product *entity.CreditProduct) error
	Update(ctx context.Context, product *entity.CreditProduct) error
	GetByID(ctx context.Context, id string) (*entity.CreditProduct, error)
	GetByCode(ctx context.Context, code string) (*entity.CreditProduct, error)
	ListByStatus(ctx context.Context, status entity.Status) ([]*entity.CreditProduct, error)
	Exists(ctx context.Context, id string) (bool, error)
}
