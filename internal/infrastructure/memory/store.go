// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y
// con STORAGE_DRIVER=memory; aplica las mismas restricciones que el esquema PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

// Store datos compartidos por los repositorios en memoria.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	products map[string]*entity.CreditProduct
	rates    map[string]*entity.InterestRate
	docs     map[string]*entity.RequiredDocument
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.CreditProduct),
		rates:    make(map[string]*entity.InterestRate),
		docs:     make(map[string]*entity.RequiredDocument),
	}
}

var _ rates.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones de tasas. Cada transacción escribe sobre una copia
// privada de las tasas que reemplaza a la compartida solo si fn termina sin error: fuera de
// la transacción nunca se ven escrituras sin confirmar.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// rateTx filas de tasas de una transacción abierta. Solo la usa la goroutine que ejecuta fn.
type rateTx struct {
	rows map[string]*entity.InterestRate
}

// RunForProduct ejecuta fn con todas las transacciones de tasas serializadas.
func (r *TxRunner) RunForProduct(ctx context.Context, productID string, fn func(repository.InterestRateRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	tx := &rateTx{rows: r.s.snapshotRates()}
	if err := fn(&InterestRateRepo{s: r.s, tx: tx}); err != nil {
		return err
	}
	r.s.mu.Lock()
	r.s.rates = tx.rows
	r.s.mu.Unlock()
	return nil
}

func (s *Store) snapshotRates() map[string]*entity.InterestRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*entity.InterestRate, len(s.rates))
	for id, r := range s.rates {
		out[id] = r.Clone()
	}
	return out
}
