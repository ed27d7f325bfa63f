package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var _ repository.CreditProductRepository = (*CreditProductRepo)(nil)

// CreditProductRepo implementación del puerto CreditProductRepository sobre PostgreSQL (usable con pool o tx).
type CreditProductRepo struct {
	q Querier
}

// NewCreditProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewCreditProductRepository(q Querier) *CreditProductRepo {
	return &CreditProductRepo{q: q}
}

const productColumns = `id, code, name, description, amount_min, amount_max, term_min_months, term_max_months,
		max_financing_pct, vehicle_condition, status, version, created_at, updated_at`

// Create persiste un nuevo producto. Un código repetido devuelve domain.ErrDuplicate.
func (r *CreditProductRepo) Create(ctx context.Context, p *entity.CreditProduct) error {
	if p.Version == 0 {
		p.Version = 1
	}
	query := `
		INSERT INTO credit_products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.Description, p.AmountMin, p.AmountMax, p.TermMinMonths, p.TermMaxMonths,
		p.MaxFinancingPct, string(p.VehicleCondition), string(p.Status), p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit product: %w", err)
	}
	return nil
}

// Update actualiza un producto si la versión coincide.
func (r *CreditProductRepo) Update(ctx context.Context, p *entity.CreditProduct) error {
	query := `
		UPDATE credit_products SET code = $3, name = $4, description = $5, amount_min = $6, amount_max = $7,
			term_min_months = $8, term_max_months = $9, max_financing_pct = $10, vehicle_condition = $11,
			status = $12, updated_at = $13, version = version + 1
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Version, p.Code, p.Name, p.Description, p.AmountMin, p.AmountMax, p.TermMinMonths,
		p.TermMaxMonths, p.MaxFinancingPct, string(p.VehicleCondition), string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update credit product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewConflictError(domain.EntityCreditProduct, p.ID, "el producto fue modificado por otra operación")
	}
	p.Version++
	return nil
}

// GetByID obtiene un producto por ID.
func (r *CreditProductRepo) GetByID(ctx context.Context, id string) (*entity.CreditProduct, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM credit_products WHERE id = $1`, id)
}

// GetByCode obtiene un producto por código.
func (r *CreditProductRepo) GetByCode(ctx context.Context, code string) (*entity.CreditProduct, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM credit_products WHERE code = $1`, code)
}

func (r *CreditProductRepo) getOne(ctx context.Context, query string, arg string) (*entity.CreditProduct, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit product: %w", err)
	}
	return p, nil
}

// ListByStatus lista productos por estado ordenados por nombre.
func (r *CreditProductRepo) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.CreditProduct, error) {
	query := `SELECT ` + productColumns + ` FROM credit_products WHERE status = $1 ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list credit products: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Exists indica si hay un producto con ese ID, en cualquier estado.
func (r *CreditProductRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM credit_products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists credit product: %w", err)
	}
	return exists, nil
}

func scanProduct(row pgx.Row) (*entity.CreditProduct, error) {
	var (
		p        entity.CreditProduct
		cond, st string
	)
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.AmountMin, &p.AmountMax, &p.TermMinMonths,
		&p.TermMaxMonths, &p.MaxFinancingPct, &cond, &st, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.VehicleCondition = entity.VehicleCondition(cond)
	p.Status = entity.Status(st)
	return &p, nil
}
