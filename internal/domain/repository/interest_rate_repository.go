package repository

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// InterestRateRepository define el puerto de persistencia para InterestRate.
// Las listas se devuelven ordenadas por StartDate descendente.
type InterestRateRepository interface {
	Create(ctx context.Context, rate *entity.InterestRate) error
	// Update persiste la tasa si rate.Version coincide con la almacenada e incrementa Version.
	// Una versión distinta devuelve *domain.ConflictError.
	Update(ctx context.Context, rate *entity.InterestRate) error
	GetByID(ctx context.Context, id string) (*entity.InterestRate, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.InterestRate, error)
	ListActiveByProduct(ctx context.Context, productID string) ([]*entity.InterestRate, error)
	// ListEffectiveOn devuelve las tasas ACTIVE del producto cuyo periodo contiene on.
	ListEffectiveOn(ctx context.Context, productID string, on civil.Date) ([]*entity.InterestRate, error)
}
