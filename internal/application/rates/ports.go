package rates

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el producto bloqueado para escritores
// concurrentes. El repositorio recibido está atado a esa transacción: todo lo que fn
// escribe se confirma junto o no se confirma.
type TxRunner interface {
	RunForProduct(ctx context.Context, productID string, fn func(rates repository.InterestRateRepository) error) error
}

// ProductRegistry resuelve la existencia de productos referenciados por las tasas.
type ProductRegistry interface {
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.CreditProduct, error)
}

// CurrentRateCache guarda la tasa vigente por producto y fecha. Los fallos se tratan como miss.
//
// Cada producto tiene una generación que Invalidate incrementa. Quien va a poblar la caché
// lee la generación antes de consultar el almacenamiento y Set solo escribe si sigue igual:
// un resultado leído antes de una escritura confirmada nunca queda guardado.
type CurrentRateCache interface {
	Get(ctx context.Context, productID string, on civil.Date) (*entity.InterestRate, bool)
	// Generation devuelve la generación actual; ok=false si no se pudo leer (no se debe llamar a Set).
	Generation(ctx context.Context, productID string) (gen int64, ok bool)
	Set(ctx context.Context, productID string, on civil.Date, rate *entity.InterestRate, gen int64)
	Invalidate(ctx context.Context, productID string)
}

type noCache struct{}

func (noCache) Get(context.Context, string, civil.Date) (*entity.InterestRate, bool) {
	return nil, false
}
func (noCache) Generation(context.Context, string) (int64, bool)                     { return 0, false }
func (noCache) Set(context.Context, string, civil.Date, *entity.InterestRate, int64) {}
func (noCache) Invalidate(context.Context, string)                                   {}
