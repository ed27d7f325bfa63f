package rates_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
	"github.com/jhoicas/parametros-credito/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const productX = "prod-x"

type fixture struct {
	store    *memory.Store
	rateRepo *memory.InterestRateRepo
	products *memory.CreditProductRepo
	uc       *rates.RateLifecycleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil, nil, zerolog.Nop())
}

func newFixtureWith(t *testing.T, wrapRunner func(rates.TxRunner) rates.TxRunner, cache rates.CurrentRateCache, log zerolog.Logger) *fixture {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewCreditProductRepository(store)
	require.NoError(t, products.Create(context.Background(), &entity.CreditProduct{
		ID:     productX,
		Code:   "AUTO001",
		Name:   "Crédito Automotriz",
		Status: entity.StatusActive,
	}))
	rateRepo := memory.NewInterestRateRepository(store)
	var runner rates.TxRunner = memory.NewTxRunner(store)
	if wrapRunner != nil {
		runner = wrapRunner(runner)
	}
	return &fixture{
		store:    store,
		rateRepo: rateRepo,
		products: products,
		uc:       rates.NewRateLifecycleUseCase(runner, rateRepo, products, cache, log, time.UTC),
	}
}

func d(t *testing.T, s string) *civil.Date {
	t.Helper()
	v, err := civil.ParseDate(s)
	require.NoError(t, err)
	return &v
}

func input(t *testing.T, value, start, end string) rates.RateInput {
	t.Helper()
	in := rates.RateInput{
		ProductID:               productX,
		CalculationBasis:        entity.Basis360,
		CalculationMethod:       entity.MethodCompound,
		CapitalizationFrequency: entity.FrequencyMonthly,
		Value:                   decimal.RequireFromString(value),
		StartDate:               d(t, start),
	}
	if end != "" {
		in.EndDate = d(t, end)
	}
	return in
}

func requireValidation(t *testing.T, err error, code string) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrValidation)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, code, ve.Code)
	assert.Equal(t, domain.EntityInterestRate, ve.Entity)
	return ve
}

func (f *fixture) openActive(t *testing.T) []*entity.InterestRate {
	t.Helper()
	list, err := f.rateRepo.ListActiveByProduct(context.Background(), productX)
	require.NoError(t, err)
	var open []*entity.InterestRate
	for _, r := range list {
		if r.IsOpen() {
			open = append(open, r)
		}
	}
	return open
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EscenarioA_CierraTasaAbiertaAnterior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	r2, err := f.uc.Create(ctx, input(t, "11.50", "2024-06-01", ""))
	require.NoError(t, err)

	got1, err := f.rateRepo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	require.NotNil(t, got1.EndDate)
	assert.Equal(t, *d(t, "2024-05-31"), *got1.EndDate)
	assert.Equal(t, entity.StatusActive, got1.Status)

	got2, err := f.rateRepo.GetByID(ctx, r2.ID)
	require.NoError(t, err)
	assert.Nil(t, got2.EndDate)
	assert.Equal(t, entity.StatusActive, got2.Status)
}

func TestCreate_EscenarioB_RechazaTraslape(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", "2024-05-31"))
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, input(t, "10.00", "2024-03-01", "2024-04-01"))
	requireValidation(t, err, domain.CodeOverlappingPeriod)
}

func TestCreate_EscenarioC_RangoDelValor(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"0", false},
		{"-1", false},
		{"55", false},
		{"50.01", false},
		{"50", true},
		{"0.01", true},
		{"12.75", true},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			f := newFixture(t)
			rate, err := f.uc.Create(context.Background(), input(t, tc.value, "2024-01-01", ""))
			if tc.ok {
				require.NoError(t, err)
				assert.True(t, rate.Value.Equal(decimal.RequireFromString(tc.value)))
				return
			}
			ve := requireValidation(t, err, domain.CodeOutOfRange)
			assert.Equal(t, "value", ve.Field)
		})
	}
}

func TestCreate_EscenarioD_IntervaloInvertido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), input(t, "12.00", "2024-06-01", "2024-05-01"))
	requireValidation(t, err, domain.CodeInvalidInterval)
}

func TestCreate_SinFechaInicio(t *testing.T) {
	f := newFixture(t)
	in := input(t, "12.00", "2024-06-01", "")
	in.StartDate = nil
	_, err := f.uc.Create(context.Background(), in)
	ve := requireValidation(t, err, domain.CodeInvalidInterval)
	assert.Equal(t, "start_date", ve.Field)
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	in := input(t, "12.00", "2024-01-01", "")
	in.ProductID = "no-existe"
	_, err := f.uc.Create(context.Background(), in)
	ve := requireValidation(t, err, domain.CodeUnknownProduct)
	assert.Equal(t, "product_id", ve.Field)
}

func TestCreate_OrdenDeValidacion_ProductoAntesQueIntervaloYValor(t *testing.T) {
	f := newFixture(t)
	in := input(t, "99", "2024-06-01", "2024-05-01")
	in.ProductID = "no-existe"
	_, err := f.uc.Create(context.Background(), in)
	requireValidation(t, err, domain.CodeUnknownProduct)

	in.ProductID = productX
	_, err = f.uc.Create(context.Background(), in)
	requireValidation(t, err, domain.CodeInvalidInterval)
}

func TestCreate_PeriodosEncadenadosSinTraslape(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", "2024-05-31"))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	require.NoError(t, err, "un periodo que termina el día D y otro que empieza en D+1 no se traslapan")
}

func TestCreate_PeriodosQueSeTocanElMismoDia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", "2024-06-01"))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	requireValidation(t, err, domain.CodeOverlappingPeriod)
}

func TestCreate_AbiertaConMismaFechaInicio_Rechazada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-06-01", ""))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	requireValidation(t, err, domain.CodeOverlappingPeriod)
	assert.Len(t, f.openActive(t), 1)
}

func TestCreate_TasaAbiertaFuturaNoSeCierra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	future, err := f.uc.Create(ctx, input(t, "12.00", "2025-01-01", ""))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, input(t, "13.00", "2024-01-01", "2024-06-30"))
	require.NoError(t, err)

	got, err := f.rateRepo.GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EndDate, "una tasa que empieza después de la nueva no se cierra")

	_, err = f.uc.Create(ctx, input(t, "13.00", "2024-07-01", ""))
	requireValidation(t, err, domain.CodeOverlappingPeriod)
}

func TestCreate_TasaInactivaNoCierraNiSeValidaTraslape(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	in := input(t, "11.00", "2024-01-01", "")
	in.Status = entity.StatusInactive
	_, err = f.uc.Create(ctx, in)
	require.NoError(t, err)

	got, err := f.rateRepo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EndDate)
}

func TestCreate_UnaSolaTasaAbiertaTrasVariasCreaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, start := range []string{"2024-01-01", "2024-03-01", "2024-06-01", "2024-09-15"} {
		_, err := f.uc.Create(ctx, input(t, "10.00", start, ""))
		require.NoError(t, err)
		assert.Len(t, f.openActive(t), 1)
	}

	all, err := f.rateRepo.ListActiveByProduct(ctx, productX)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, *d(t, "2024-09-14"), *all[1].EndDate)
	assert.Equal(t, *d(t, "2024-05-31"), *all[2].EndDate)
	assert.Equal(t, *d(t, "2024-02-29"), *all[3].EndDate)
}

func TestCreate_ConcurrenteMantieneUnaTasaAbierta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	starts := []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01", "2024-05-01", "2024-06-01", "2024-07-01", "2024-08-01"}
	inputs := make([]rates.RateInput, 0, len(starts))
	for _, s := range starts {
		inputs = append(inputs, input(t, "10.00", s, ""))
	}
	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(in rates.RateInput) {
			defer wg.Done()
			if _, err := f.uc.Create(ctx, in); err != nil {
				assert.ErrorIs(t, err, domain.ErrValidation)
			}
		}(in)
	}
	wg.Wait()

	assert.Len(t, f.openActive(t), 1)
	all, err := f.rateRepo.ListActiveByProduct(ctx, productX)
	require.NoError(t, err)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t, all[i].Validity().Contains(all[j].StartDate) || all[j].Validity().Contains(all[i].StartDate),
				"las tasas %s y %s se traslapan", all[i].ID, all[j].ID)
		}
	}
}

// failingCreateRepo deja pasar todo salvo la inserción, para comprobar la atomicidad.
type failingCreateRepo struct {
	repository.InterestRateRepository
}

func (failingCreateRepo) Create(context.Context, *entity.InterestRate) error {
	return errors.New("insert falló")
}

type failingRunner struct {
	inner rates.TxRunner
}

func (w failingRunner) RunForProduct(ctx context.Context, productID string, fn func(repository.InterestRateRepository) error) error {
	return w.inner.RunForProduct(ctx, productID, func(r repository.InterestRateRepository) error {
		return fn(failingCreateRepo{r})
	})
}

func TestCreate_FalloAlInsertarNoDejaLaAnteriorCerrada(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewCreditProductRepository(store)
	require.NoError(t, products.Create(context.Background(), &entity.CreditProduct{ID: productX, Code: "AUTO001", Status: entity.StatusActive}))
	rateRepo := memory.NewInterestRateRepository(store)
	ctx := context.Background()

	ok := rates.NewRateLifecycleUseCase(memory.NewTxRunner(store), rateRepo, products, nil, zerolog.Nop(), time.UTC)
	r1, err := ok.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	broken := rates.NewRateLifecycleUseCase(failingRunner{memory.NewTxRunner(store)}, rateRepo, products, nil, zerolog.Nop(), time.UTC)
	_, err = broken.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	require.Error(t, err)

	got, err := rateRepo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EndDate, "el cierre de la tasa anterior debe deshacerse")
	list, err := rateRepo.ListByProduct(ctx, productX)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type conflictRunner struct{}

func (conflictRunner) RunForProduct(context.Context, string, func(repository.InterestRateRepository) error) error {
	return domain.NewConflictError(domain.EntityInterestRate, "", "serialization failure")
}

func TestCreate_PropagaConflicto(t *testing.T) {
	f := newFixtureWith(t, func(rates.TxRunner) rates.TxRunner { return conflictRunner{} }, nil, zerolog.Nop())
	_, err := f.uc.Create(context.Background(), input(t, "12.00", "2024-01-01", ""))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_NoSeTraslapaNiSeCierraASiMisma(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	updated, err := f.uc.Update(ctx, r1.ID, input(t, "12.75", "2024-01-01", ""))
	require.NoError(t, err)
	assert.Nil(t, updated.EndDate)
	assert.True(t, updated.Value.Equal(decimal.RequireFromString("12.75")))
	assert.Equal(t, int64(2), updated.Version)
}

func TestUpdate_ActivarCierraLaTasaAbiertaAnterior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	draft := input(t, "11.00", "2024-06-01", "")
	draft.Status = entity.StatusInactive
	r2, err := f.uc.Create(ctx, draft)
	require.NoError(t, err)

	activate := input(t, "11.00", "2024-06-01", "")
	activate.Status = entity.StatusActive
	_, err = f.uc.Update(ctx, r2.ID, activate)
	require.NoError(t, err)

	got1, err := f.rateRepo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	require.NotNil(t, got1.EndDate)
	assert.Equal(t, *d(t, "2024-05-31"), *got1.EndDate)
	assert.Len(t, f.openActive(t), 1)
}

func TestUpdate_TraslapeConOtraTasa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", "2024-05-31"))
	require.NoError(t, err)
	r2, err := f.uc.Create(ctx, input(t, "11.00", "2024-06-01", "2024-12-31"))
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, r2.ID, input(t, "11.00", "2024-05-15", "2024-12-31"))
	requireValidation(t, err, domain.CodeOverlappingPeriod)
}

func TestUpdate_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Update(context.Background(), "no-existe", input(t, "12.00", "2024-01-01", ""))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_VersionDistinta_Conflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	in := input(t, "13.00", "2024-01-01", "")
	stale := int64(7)
	in.Version = &stale
	_, err = f.uc.Update(ctx, r1.ID, in)
	require.ErrorIs(t, err, domain.ErrConflict)

	current := r1.Version
	in.Version = &current
	_, err = f.uc.Update(ctx, r1.ID, in)
	require.NoError(t, err)
}

func TestUpdate_DesactivarNoAfectaOtras(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	in := input(t, "12.00", "2024-01-01", "")
	in.Status = entity.StatusInactive
	updated, err := f.uc.Update(ctx, r1.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInactive, updated.Status)
	assert.Empty(t, f.openActive(t))
}

const productY = "prod-y"

func (f *fixture) addProductY(t *testing.T) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &entity.CreditProduct{
		ID:     productY,
		Code:   "AUTO002",
		Name:   "Crédito Automotriz Usados",
		Status: entity.StatusActive,
	}))
}

// staleActiveRunner entrega a la transacción una lista de tasas activas leída antes de una
// escritura concurrente en otro producto.
type staleActiveRunner struct {
	inner rates.TxRunner
	stale []*entity.InterestRate
}

type staleActiveRepo struct {
	repository.InterestRateRepository
	stale []*entity.InterestRate
}

func (r staleActiveRepo) ListActiveByProduct(context.Context, string) ([]*entity.InterestRate, error) {
	out := make([]*entity.InterestRate, len(r.stale))
	for i, rate := range r.stale {
		out[i] = rate.Clone()
	}
	return out, nil
}

func (w *staleActiveRunner) RunForProduct(ctx context.Context, productID string, fn func(repository.InterestRateRepository) error) error {
	return w.inner.RunForProduct(ctx, productID, func(r repository.InterestRateRepository) error {
		if w.stale == nil {
			return fn(r)
		}
		return fn(staleActiveRepo{InterestRateRepository: r, stale: w.stale})
	})
}

// Una tasa que pasa a otro producto mientras el producto original recibe una creación: la
// creación, que todavía ve la tasa como abierta en su producto, no puede cerrarla.
func TestUpdate_MoverDeProductoConCreacionConcurrente_Conflicto(t *testing.T) {
	runner := &staleActiveRunner{}
	f := newFixtureWith(t, func(inner rates.TxRunner) rates.TxRunner {
		runner.inner = inner
		return runner
	}, nil, zerolog.Nop())
	f.addProductY(t)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	stale, err := f.rateRepo.ListActiveByProduct(ctx, productX)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	move := input(t, "12.00", "2024-01-01", "")
	move.ProductID = productY
	moved, err := f.uc.Update(ctx, r.ID, move)
	require.NoError(t, err)
	require.Equal(t, int64(2), moved.Version)

	runner.stale = stale
	_, err = f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.rateRepo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, productY, got.ProductID)
	assert.Nil(t, got.EndDate, "la tasa movida no debe quedar cerrada")
	assert.Equal(t, int64(2), got.Version)

	onX, err := f.rateRepo.ListByProduct(ctx, productX)
	require.NoError(t, err)
	assert.Empty(t, onX, "la creación fallida no se persiste")
}

func TestUpdate_MoverDeProductoConcurrente_MantieneInvariantes(t *testing.T) {
	f := newFixture(t)
	f.addProductY(t)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		move := input(t, "12.00", "2024-01-01", "")
		move.ProductID = productY
		_, _ = f.uc.Update(ctx, r.ID, move)
	}()
	go func() {
		defer wg.Done()
		_, _ = f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	}()
	wg.Wait()

	for _, productID := range []string{productX, productY} {
		list, err := f.rateRepo.ListActiveByProduct(ctx, productID)
		require.NoError(t, err)
		open := 0
		for i, a := range list {
			assert.Equal(t, productID, a.ProductID)
			if a.IsOpen() {
				open++
			}
			for _, b := range list[i+1:] {
				assert.False(t, a.Validity().Contains(b.StartDate) || b.Validity().Contains(a.StartDate),
					"las tasas %s y %s se traslapan", a.ID, b.ID)
			}
		}
		assert.LessOrEqual(t, open, 1, "producto %s", productID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrentFor_DevuelveLaTasaDelPeriodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	r2, err := f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	require.NoError(t, err)

	cur, err := f.uc.CurrentFor(ctx, productX, d(t, "2024-05-31"))
	require.NoError(t, err)
	assert.Equal(t, r1.ID, cur.Rate.ID)
	assert.Empty(t, cur.Warnings)

	cur, err = f.uc.CurrentFor(ctx, productX, d(t, "2024-06-01"))
	require.NoError(t, err)
	assert.Equal(t, r2.ID, cur.Rate.ID)

	_, err = f.uc.CurrentFor(ctx, productX, d(t, "2023-12-31"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurrentFor_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	a, err := f.uc.CurrentFor(ctx, productX, d(t, "2024-03-01"))
	require.NoError(t, err)
	b, err := f.uc.CurrentFor(ctx, productX, d(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCurrentFor_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CurrentFor(context.Background(), "no-existe", d(t, "2024-03-01"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ambiguousRepo simula datos históricos que violan la unicidad de la tasa vigente.
type ambiguousRepo struct {
	repository.InterestRateRepository
	list []*entity.InterestRate
}

func (r ambiguousRepo) ListEffectiveOn(context.Context, string, civil.Date) ([]*entity.InterestRate, error) {
	return r.list, nil
}

func TestCurrentFor_AmbiguoEligeInicioMasRecienteYAvisa(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewCreditProductRepository(store)
	require.NoError(t, products.Create(context.Background(), &entity.CreditProduct{ID: productX, Code: "AUTO001", Status: entity.StatusActive}))

	older := &entity.InterestRate{ID: "r-old", ProductID: productX, Value: decimal.NewFromInt(12), StartDate: *d(t, "2024-01-01"), Status: entity.StatusActive}
	newer := &entity.InterestRate{ID: "r-new", ProductID: productX, Value: decimal.NewFromInt(11), StartDate: *d(t, "2024-03-01"), Status: entity.StatusActive}
	repo := ambiguousRepo{InterestRateRepository: memory.NewInterestRateRepository(store), list: []*entity.InterestRate{older, newer}}

	var buf bytes.Buffer
	cache := newRecordingCache()
	uc := rates.NewRateLifecycleUseCase(memory.NewTxRunner(store), repo, products, cache, zerolog.New(&buf), time.UTC)

	cur, err := uc.CurrentFor(context.Background(), productX, d(t, "2024-04-01"))
	require.NoError(t, err)
	assert.Equal(t, "r-new", cur.Rate.ID)
	assert.True(t, cur.Ambiguous())
	assert.ElementsMatch(t, []string{"r-old", "r-new"}, cur.CandidateIDs)
	assert.NotEmpty(t, cur.Warnings)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "r-old")
	assert.Zero(t, cache.sets, "un resultado ambiguo no se guarda en caché")
}

type recordingCache struct {
	mu          sync.Mutex
	data        map[string]*entity.InterestRate
	gens        map[string]int64
	sets        int
	staleSets   int
	hits        int
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{data: make(map[string]*entity.InterestRate), gens: make(map[string]int64)}
}

func (c *recordingCache) Get(_ context.Context, productID string, on civil.Date) (*entity.InterestRate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[productID+on.String()]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *recordingCache) Generation(_ context.Context, productID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[productID], true
}

func (c *recordingCache) Set(_ context.Context, productID string, on civil.Date, rate *entity.InterestRate, gen int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[productID] != gen {
		c.staleSets++
		return
	}
	c.sets++
	c.data[productID+on.String()] = rate
}

func (c *recordingCache) Invalidate(_ context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, productID)
	c.gens[productID]++
	for k := range c.data {
		if strings.HasPrefix(k, productID) {
			delete(c.data, k)
		}
	}
}

func TestCurrentFor_UsaCacheYSeInvalidaAlEscribir(t *testing.T) {
	cache := newRecordingCache()
	f := newFixtureWith(t, nil, cache, zerolog.Nop())
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{productX}, cache.invalidated)

	_, err = f.uc.CurrentFor(ctx, productX, d(t, "2024-08-01"))
	require.NoError(t, err)
	cur, err := f.uc.CurrentFor(ctx, productX, d(t, "2024-08-01"))
	require.NoError(t, err)
	assert.Equal(t, r1.ID, cur.Rate.ID)
	assert.Equal(t, 1, cache.hits)

	r2, err := f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	require.NoError(t, err)
	cur, err = f.uc.CurrentFor(ctx, productX, d(t, "2024-08-01"))
	require.NoError(t, err)
	assert.Equal(t, r2.ID, cur.Rate.ID, "la escritura invalida la tasa vigente en caché")
}

// writeAfterReadRepo ejecuta una escritura justo después de la primera lectura de tasas
// vigentes, antes de que la consulta guarde su resultado en caché.
type writeAfterReadRepo struct {
	repository.InterestRateRepository
	once  sync.Once
	write func()
}

func (r *writeAfterReadRepo) ListEffectiveOn(ctx context.Context, productID string, on civil.Date) ([]*entity.InterestRate, error) {
	list, err := r.InterestRateRepository.ListEffectiveOn(ctx, productID, on)
	r.once.Do(r.write)
	return list, err
}

func TestCurrentFor_EscrituraEntreLecturaYCacheNoDejaTasaVieja(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewCreditProductRepository(store)
	require.NoError(t, products.Create(context.Background(), &entity.CreditProduct{ID: productX, Code: "AUTO001", Status: entity.StatusActive}))
	ctx := context.Background()

	cache := newRecordingCache()
	repo := &writeAfterReadRepo{InterestRateRepository: memory.NewInterestRateRepository(store)}
	uc := rates.NewRateLifecycleUseCase(memory.NewTxRunner(store), repo, products, cache, zerolog.Nop(), time.UTC)

	r1, err := uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	var r2 *entity.InterestRate
	repo.write = func() {
		var err error
		r2, err = uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
		require.NoError(t, err)
	}

	// La lectura ve r1; r2 se confirma antes de que el resultado llegue a la caché.
	cur, err := uc.CurrentFor(ctx, productX, d(t, "2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, r1.ID, cur.Rate.ID)
	require.NotNil(t, r2)
	assert.Equal(t, 1, cache.staleSets)
	assert.Zero(t, cache.sets)

	cur, err = uc.CurrentFor(ctx, productX, d(t, "2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, r2.ID, cur.Rate.ID)
	assert.Zero(t, cache.hits)

	cur, err = uc.CurrentFor(ctx, productX, d(t, "2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, r2.ID, cur.Rate.ID)
	assert.Equal(t, 1, cache.hits)
}

func TestListByProduct_IncluyeInactivasOrdenDescendente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)
	in := input(t, "9.00", "2023-01-01", "2023-12-31")
	in.Status = entity.StatusInactive
	_, err = f.uc.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, input(t, "11.00", "2024-06-01", ""))
	require.NoError(t, err)

	list, err := f.uc.ListByProduct(ctx, productX)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, *d(t, "2024-06-01"), list[0].StartDate)
	assert.Equal(t, *d(t, "2023-01-01"), list[2].StartDate)

	_, err = f.uc.ListByProduct(ctx, "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1, err := f.uc.Create(ctx, input(t, "12.00", "2024-01-01", ""))
	require.NoError(t, err)

	got, err := f.uc.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, got.ID)

	_, err = f.uc.GetByID(ctx, "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
