package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var _ repository.InterestRateRepository = (*InterestRateRepo)(nil)

// InterestRateRepo implementación de InterestRateRepository sobre PostgreSQL (usable con pool o tx).
type InterestRateRepo struct {
	q Querier
}

// NewInterestRateRepository construye el adaptador de tasas. Pasar pool o tx (Querier).
func NewInterestRateRepository(q Querier) *InterestRateRepo {
	return &InterestRateRepo{q: q}
}

const rateColumns = `id, product_id, calculation_basis, calculation_method, capitalization_frequency,
		value, start_date, end_date, status, version, created_at, updated_at`

// conflict traduce violaciones de las restricciones de periodo (índice único parcial,
// exclusión gist) y fallos de serialización a ConflictError.
func conflict(id string, err error) error {
	return domain.NewConflictError(domain.EntityInterestRate, id, err.Error())
}

func (r *InterestRateRepo) writeError(op, id string, err error) error {
	switch {
	case isUniqueViolation(err), isConcurrencyFailure(err):
		return conflict(id, err)
	case isForeignKeyViolation(err):
		return unknownProduct(domain.EntityInterestRate)
	}
	return fmt.Errorf("%s interest rate: %w", op, err)
}

// Create persiste una tasa nueva.
func (r *InterestRateRepo) Create(ctx context.Context, rate *entity.InterestRate) error {
	if rate.Version == 0 {
		rate.Version = 1
	}
	query := `
		INSERT INTO interest_rates (` + rateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rate.ID, rate.ProductID, string(rate.CalculationBasis), string(rate.CalculationMethod),
		string(rate.CapitalizationFrequency), rate.Value, toDBDate(rate.StartDate), toDBDatePtr(rate.EndDate),
		string(rate.Status), rate.Version, rate.CreatedAt, rate.UpdatedAt,
	)
	if err != nil {
		return r.writeError("insert", rate.ID, err)
	}
	return nil
}

// Update persiste la tasa si la versión coincide e incrementa Version.
func (r *InterestRateRepo) Update(ctx context.Context, rate *entity.InterestRate) error {
	query := `
		UPDATE interest_rates SET product_id = $3, calculation_basis = $4, calculation_method = $5,
			capitalization_frequency = $6, value = $7, start_date = $8, end_date = $9, status = $10,
			updated_at = $11, version = version + 1
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		rate.ID, rate.Version, rate.ProductID, string(rate.CalculationBasis), string(rate.CalculationMethod),
		string(rate.CapitalizationFrequency), rate.Value, toDBDate(rate.StartDate), toDBDatePtr(rate.EndDate),
		string(rate.Status), rate.UpdatedAt,
	)
	if err != nil {
		return r.writeError("update", rate.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewConflictError(domain.EntityInterestRate, rate.ID, "la tasa fue modificada por otra operación")
	}
	rate.Version++
	return nil
}

// GetByID obtiene una tasa por ID. Devuelve (nil, nil) si no existe.
func (r *InterestRateRepo) GetByID(ctx context.Context, id string) (*entity.InterestRate, error) {
	query := `SELECT ` + rateColumns + ` FROM interest_rates WHERE id = $1`
	rate, err := scanRate(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interest rate: %w", err)
	}
	return rate, nil
}

// ListByProduct lista todas las tasas del producto, inicio más reciente primero.
func (r *InterestRateRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InterestRate, error) {
	query := `SELECT ` + rateColumns + ` FROM interest_rates
		WHERE product_id = $1 ORDER BY start_date DESC, id`
	return r.list(ctx, query, productID)
}

// ListActiveByProduct lista las tasas ACTIVE del producto, inicio más reciente primero.
func (r *InterestRateRepo) ListActiveByProduct(ctx context.Context, productID string) ([]*entity.InterestRate, error) {
	query := `SELECT ` + rateColumns + ` FROM interest_rates
		WHERE product_id = $1 AND status = 'ACTIVE' ORDER BY start_date DESC, id`
	return r.list(ctx, query, productID)
}

// ListEffectiveOn lista las tasas ACTIVE del producto cuyo periodo contiene on.
func (r *InterestRateRepo) ListEffectiveOn(ctx context.Context, productID string, on civil.Date) ([]*entity.InterestRate, error) {
	query := `SELECT ` + rateColumns + ` FROM interest_rates
		WHERE product_id = $1 AND status = 'ACTIVE'
			AND start_date <= $2 AND (end_date IS NULL OR end_date >= $2)
		ORDER BY start_date DESC, id`
	return r.list(ctx, query, productID, toDBDate(on))
}

func (r *InterestRateRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InterestRate, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interest rates: %w", err)
	}
	defer rows.Close()
	var list []*entity.InterestRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interest rate: %w", err)
		}
		list = append(list, rate)
	}
	return list, rows.Err()
}

func scanRate(row pgx.Row) (*entity.InterestRate, error) {
	var (
		rate                    entity.InterestRate
		basis, method, freq, st string
		start                   time.Time
		end                     *time.Time
	)
	err := row.Scan(&rate.ID, &rate.ProductID, &basis, &method, &freq, &rate.Value, &start, &end,
		&st, &rate.Version, &rate.CreatedAt, &rate.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rate.CalculationBasis = entity.CalculationBasis(basis)
	rate.CalculationMethod = entity.CalculationMethod(method)
	rate.CapitalizationFrequency = entity.CapitalizationFrequency(freq)
	rate.Status = entity.Status(st)
	rate.StartDate = civil.DateOf(start)
	rate.EndDate = fromDBDatePtr(end)
	return &rate, nil
}
