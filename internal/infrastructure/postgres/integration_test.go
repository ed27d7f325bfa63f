package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/infrastructure/postgres"
)

// Requiere TEST_DATABASE_URL apuntando a una base desechable.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool) *entity.CreditProduct {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.CreditProduct{
		ID:               uuid.New().String(),
		Name:             "Producto de integración",
		AmountMin:        decimal.NewFromInt(5000),
		AmountMax:        decimal.NewFromInt(50000),
		TermMinMonths:    12,
		TermMaxMonths:    60,
		MaxFinancingPct:  decimal.NewFromInt(80),
		VehicleCondition: entity.VehicleNew,
		Status:           entity.StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.Code = "IT" + p.ID[:8]
	require.NoError(t, postgres.NewCreditProductRepository(pool).Create(context.Background(), p))
	return p
}

func TestIntegracion_CicloDeVidaDeTasas(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	product := seedProduct(t, pool)

	repo := postgres.NewInterestRateRepository(pool)
	uc := rates.NewRateLifecycleUseCase(postgres.NewTxRunner(pool), repo,
		postgres.NewCreditProductRepository(pool), nil, zerolog.Nop(), time.UTC)

	start1 := civil.Date{Year: 2024, Month: time.January, Day: 1}
	start2 := civil.Date{Year: 2024, Month: time.June, Day: 1}
	in := rates.RateInput{
		ProductID:               product.ID,
		CalculationBasis:        entity.Basis360,
		CalculationMethod:       entity.MethodCompound,
		CapitalizationFrequency: entity.FrequencyMonthly,
		Value:                   decimal.RequireFromString("12.00"),
		StartDate:               &start1,
	}
	r1, err := uc.Create(ctx, in)
	require.NoError(t, err)

	in.StartDate = &start2
	in.Value = decimal.RequireFromString("11.50")
	r2, err := uc.Create(ctx, in)
	require.NoError(t, err)

	got1, err := repo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	require.NotNil(t, got1.EndDate)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.May, Day: 31}, *got1.EndDate)

	cur, err := uc.CurrentFor(ctx, product.ID, &start2)
	require.NoError(t, err)
	assert.Equal(t, r2.ID, cur.Rate.ID)
	assert.True(t, cur.Rate.Value.Equal(decimal.RequireFromString("11.50")))
}

func TestIntegracion_ExclusionRespaldaTraslape(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	product := seedProduct(t, pool)
	repo := postgres.NewInterestRateRepository(pool)

	start := civil.Date{Year: 2024, Month: time.January, Day: 1}
	base := func() *entity.InterestRate {
		return &entity.InterestRate{
			ID:                      uuid.New().String(),
			ProductID:               product.ID,
			CalculationBasis:        entity.Basis365,
			CalculationMethod:       entity.MethodSimple,
			CapitalizationFrequency: entity.FrequencyAnnual,
			Value:                   decimal.NewFromInt(10),
			StartDate:               start,
			Status:                  entity.StatusActive,
			CreatedAt:               time.Now(),
			UpdatedAt:               time.Now(),
		}
	}
	require.NoError(t, repo.Create(ctx, base()))

	// Escritura directa que se salta el caso de uso: la base la rechaza como conflicto.
	err := repo.Create(ctx, base())
	require.ErrorIs(t, err, domain.ErrConflict)
}
