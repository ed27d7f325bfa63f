package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var _ rates.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunForProduct inicia una transacción, toma el advisory lock del producto (liberado al terminar
// la transacción), ejecuta fn con el repositorio de tasas atado a la tx y hace Commit o Rollback.
// Dos escrituras de tasas del mismo producto quedan así serializadas.
func (r *TxRunner) RunForProduct(ctx context.Context, productID string, fn func(rates repository.InterestRateRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, productID); err != nil {
		return fmt.Errorf("lock producto %s: %w", productID, err)
	}
	if err := fn(NewInterestRateRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isConcurrencyFailure(err) {
			return conflict("", err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
