package landedcost_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/lock"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/memory"
	"github.com/jhoicas/LandedCost-api/pkg/logger"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	svc     *landedcost.Service
	store   *memory.ShipmentStore
	catalog *memory.CatalogStore
	events  *memory.EventStore
	locker  *lock.LocalLocker
}

func newFixture(t *testing.T, cfg landedcost.Config) fixture {
	t.Helper()
	return newFixtureWith(t, cfg, memory.NewCategoryStore(entity.DefaultExpenseCategories()...))
}

func newFixtureWith(t *testing.T, cfg landedcost.Config, cats landedcost.CategoryLookup) fixture {
	t.Helper()
	var seq atomic.Int64
	f := fixture{
		store:   memory.NewShipmentStore(),
		catalog: memory.NewCatalogStore(),
		events:  memory.NewEventStore(),
		locker:  lock.NewLocalLocker(0),
	}
	f.svc = landedcost.NewService(landedcost.Deps{
		Shipments:  f.store,
		Tx:         f.store,
		Locker:     f.locker,
		Categories: cats,
		Prices:     f.catalog,
		Events:     f.events,
		Log:        logger.Nop(),
		Clock:      func() time.Time { return t0 },
		NewID:      func() string { return fmt.Sprintf("id-%d", seq.Add(1)) },
		Config:     cfg,
	})
	return f
}

// proportionalShipment: A 10×10, B 5×40, flete 30 (ejemplo proporcional).
func proportionalShipment(t *testing.T, f fixture) (shipmentID, itemA, itemB string) {
	t.Helper()
	ctx := context.Background()
	sh, err := f.svc.CreateShipment(ctx, landedcost.CreateShipmentInput{
		Name:              "Contenedor 1",
		CalculationMethod: "proportional",
		BaseCurrency:      "USD",
		ExchangeRate:      d("1"),
		CreatedBy:         "user-1",
	})
	require.NoError(t, err)
	sh, err = f.svc.AddItem(ctx, sh.ID, landedcost.AddItemInput{ProductID: "prod-a", ItemName: "A", Quantity: d("10"), UnitCost: d("10")})
	require.NoError(t, err)
	sh, err = f.svc.AddItem(ctx, sh.ID, landedcost.AddItemInput{ProductID: "prod-b", ItemName: "B", Quantity: d("5"), UnitCost: d("40")})
	require.NoError(t, err)
	sh, err = f.svc.AddSharedCost(ctx, sh.ID, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryFreight, Description: "Flete", Amount: d("30")})
	require.NoError(t, err)
	return sh.ID, sh.Items[0].ID, sh.Items[1].ID
}

// ─── Creación y consulta ─────────────────────────────────────────────────────

func TestCreateShipment_ReferenciaPorDefecto(t *testing.T) {
	f := newFixture(t, landedcost.Config{ReferenceCurrency: "USD"})
	sh, err := f.svc.CreateShipment(context.Background(), landedcost.CreateShipmentInput{
		Name: "MVR", CalculationMethod: "equal", BaseCurrency: "mvr", ExchangeRate: d("15.42"),
	})
	require.NoError(t, err)
	assert.Equal(t, "MVR", sh.BaseCurrency)
	assert.Equal(t, "USD", sh.ReferenceCurrency)
	assert.Equal(t, int64(1), sh.Version)
	assert.False(t, sh.IsFinalized)
	assert.Equal(t, t0, sh.ShipmentDate)
}

func TestCreateShipment_Validaciones(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	cases := []landedcost.CreateShipmentInput{
		{Name: "x", CalculationMethod: "fifo", BaseCurrency: "USD", ExchangeRate: d("1")},
		{Name: "x", CalculationMethod: "equal", BaseCurrency: "ZZZ", ExchangeRate: d("1")},
		{Name: "x", CalculationMethod: "equal", BaseCurrency: "MVR", ExchangeRate: d("0")},
		{Name: "", CalculationMethod: "equal", BaseCurrency: "USD", ExchangeRate: d("1")},
	}
	for _, in := range cases {
		_, err := f.svc.CreateShipment(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "%+v", in)
	}
	_, total, err := f.svc.ListShipments(ctx, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetShipment_NoExiste(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	_, err := f.svc.GetShipment(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListShipments_Paginado(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateShipment(ctx, landedcost.CreateShipmentInput{
			Name: fmt.Sprintf("S%d", i), CalculationMethod: "equal", BaseCurrency: "USD", ExchangeRate: d("1"),
		})
		require.NoError(t, err)
	}
	page, total, err := f.svc.ListShipments(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	page, _, err = f.svc.ListShipments(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

// ─── Ciclo de vida completo ──────────────────────────────────────────────────

func TestFlujoCompleto_Proporcional(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)

	sh, res, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sh.CalculatedAt)
	assert.True(t, res.Reconciliation.OK())
	assert.True(t, sh.Items[0].AllocatedSharedCost.Amount.Equal(d("10")))
	assert.True(t, sh.Items[1].AllocatedSharedCost.Amount.Equal(d("20")))
	assert.True(t, sh.Items[0].LandedCostPerUnit.Amount.Equal(d("11")))
	assert.True(t, sh.Items[1].LandedCostPerUnit.Amount.Equal(d("44")))
	assert.True(t, sh.TotalLandedCost.Amount.Equal(d("330")))

	stored, err := f.svc.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.TotalLandedCost.Amount.Equal(d("330")))

	sh, err = f.svc.Finalize(ctx, id, "user-1")
	require.NoError(t, err)
	assert.True(t, sh.IsFinalized)
	require.NotNil(t, sh.FinalizedAt)

	push, err := f.svc.PushPricesToCatalog(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, push.Updated)
	assert.Equal(t, 0, push.Skipped)
	assert.Empty(t, push.Failed)
	pa, ok := f.catalog.Price("prod-a")
	require.True(t, ok)
	assert.True(t, pa.Amount.Equal(d("11")))
	assert.Equal(t, "USD", pa.Currency)

	// Reintento idempotente.
	push, err = f.svc.PushPricesToCatalog(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, push.Updated)
	assert.Equal(t, 2, push.Skipped)

	events, err := f.events.ListByShipment(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, entity.EventShipmentFinalized, events[0].Type)
	assert.Equal(t, entity.EventPricesPushed, events[1].Type)
	assert.Equal(t, "user-1", events[0].Actor)

	listed, err := f.svc.ListEvents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, events, listed)

	_, err = f.svc.ListEvents(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestRecalculate_Idempotente(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)

	first, r1, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	second, r2, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, r1.Items, r2.Items)
	for i := range first.Items {
		assert.True(t, first.Items[i].TotalLandedCost.Equal(second.Items[i].TotalLandedCost))
	}
}

func TestFinalize_RequiereCalculoVigente(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)

	_, err := f.svc.Finalize(ctx, id, "u")
	assert.ErrorIs(t, err, domain.ErrNotCalculated)
	assert.ErrorIs(t, err, domain.ErrState)

	_, _, err = f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	// Una edición invalida el cálculo.
	sh, err := f.svc.AddSharedCost(ctx, id, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryInsurance, Amount: d("5")})
	require.NoError(t, err)
	assert.Nil(t, sh.CalculatedAt)
	_, err = f.svc.Finalize(ctx, id, "u")
	assert.ErrorIs(t, err, domain.ErrNotCalculated)
}

func TestFinalizado_RechazaEdicionesSinCambios(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, itemA, _ := proportionalShipment(t, f)
	_, _, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, id, "u")
	require.NoError(t, err)
	before, err := f.svc.GetShipment(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, id, landedcost.AddItemInput{ProductID: "p", ItemName: "C", Quantity: d("1"), UnitCost: d("1")})
	assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
	_, err = f.svc.RemoveItem(ctx, id, itemA)
	assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
	_, err = f.svc.AddSharedCost(ctx, id, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryFreight, Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
	_, err = f.svc.SetItemOverride(ctx, id, itemA, landedcost.ItemOverrideInput{ExpenseCategoryID: entity.CategoryCustomsDuty, Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
	_, _, err = f.svc.Recalculate(ctx, id)
	assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
	_, err = f.svc.Finalize(ctx, id, "u")
	assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
	assert.ErrorIs(t, f.svc.DeleteShipment(ctx, id), domain.ErrShipmentFinalized)

	after, err := f.svc.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRecalculate_FalloNoMutaElEmbarque(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	sh, err := f.svc.CreateShipment(ctx, landedcost.CreateShipmentInput{
		Name: "Peso", CalculationMethod: "weight_based", BaseCurrency: "USD", ExchangeRate: d("1"),
	})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, sh.ID, landedcost.AddItemInput{ProductID: "p1", ItemName: "sin peso", Quantity: d("2"), UnitCost: d("5")})
	require.NoError(t, err)
	_, err = f.svc.AddSharedCost(ctx, sh.ID, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryFreight, Amount: d("10")})
	require.NoError(t, err)
	before, err := f.svc.GetShipment(ctx, sh.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Recalculate(ctx, sh.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidBasis)

	after, err := f.svc.GetShipment(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Nil(t, after.CalculatedAt)
}

func TestAddItem_Validaciones(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)

	_, err := f.svc.AddItem(ctx, id, landedcost.AddItemInput{ProductID: "p", ItemName: "x", Quantity: d("0"), UnitCost: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.svc.AddItem(ctx, id, landedcost.AddItemInput{ProductID: "p", ItemName: "x", Quantity: d("1"), UnitCost: d("-1")})
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)
	_, err = f.svc.AddItem(ctx, id, landedcost.AddItemInput{ProductID: "p", ItemName: "x", Quantity: d("1"), UnitCost: d("1"), Currency: "EUR"})
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	_, err = f.svc.AddSharedCost(ctx, id, landedcost.AddSharedCostInput{ExpenseCategoryID: "inexistente", Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	_, err = f.svc.RemoveItem(ctx, id, "nope")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = f.svc.RemoveSharedCost(ctx, id, "nope")
	assert.ErrorIs(t, err, domain.ErrSharedCostNotFound)

	sh, err := f.svc.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.Len(t, sh.Items, 2)
	assert.Len(t, sh.SharedCosts, 1)
}

// ─── Asignación manual ───────────────────────────────────────────────────────

func TestSetItemOverride_AisladoDelReparto(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, itemA, itemB := proportionalShipment(t, f)
	_, err := f.svc.AddSharedCost(ctx, id, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryCustomsDuty, Amount: d("60")})
	require.NoError(t, err)

	_, err = f.svc.SetItemOverride(ctx, id, itemB, landedcost.ItemOverrideInput{ExpenseCategoryID: entity.CategoryCustomsDuty, Amount: d("50")})
	require.NoError(t, err)

	sh, _, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	a, _ := sh.Item(itemA)
	b, _ := sh.Item(itemB)
	assert.True(t, a.AllocatedSharedCost.Amount.Equal(d("40")))
	assert.True(t, a.PercentageShare.Equal(d("1")))
	assert.True(t, b.AllocatedSharedCost.Amount.Equal(d("50")))
	assert.True(t, b.PercentageShare.IsZero())
	assert.True(t, sh.TotalSharedCost.Amount.Equal(d("90")))

	sh, err = f.svc.ClearItemOverride(ctx, id, itemB)
	require.NoError(t, err)
	b, _ = sh.Item(itemB)
	assert.Nil(t, b.Override)
	assert.Nil(t, sh.CalculatedAt)
}

func TestSetItemOverride_CategoriaNoPermitida(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, itemA, _ := proportionalShipment(t, f)

	_, err := f.svc.SetItemOverride(ctx, id, itemA, landedcost.ItemOverrideInput{ExpenseCategoryID: entity.CategoryFreight, Amount: d("5")})
	assert.ErrorIs(t, err, domain.ErrOverrideNotAllowed)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SetItemOverride(ctx, id, itemA, landedcost.ItemOverrideInput{ExpenseCategoryID: "nope", Amount: d("5")})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

type brokenCategories struct{}

func (brokenCategories) GetByID(context.Context, string) (*entity.ExpenseCategory, error) {
	return nil, errors.New("timeout")
}

func (brokenCategories) List(context.Context) ([]*entity.ExpenseCategory, error) {
	return nil, errors.New("timeout")
}

func TestCategoryLookup_FalloEsErrorDeColaborador(t *testing.T) {
	f := newFixtureWith(t, landedcost.Config{}, brokenCategories{})
	ctx := context.Background()
	sh, err := f.svc.CreateShipment(ctx, landedcost.CreateShipmentInput{Name: "x", CalculationMethod: "equal", BaseCurrency: "USD", ExchangeRate: d("1")})
	require.NoError(t, err)

	_, err = f.svc.AddSharedCost(ctx, sh.ID, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryFreight, Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrCollaborator)
	_, err = f.svc.ListCategories(ctx)
	assert.ErrorIs(t, err, domain.ErrCategoryLookup)
}

// ─── Envío al catálogo ───────────────────────────────────────────────────────

func TestPushPrices_RequiereFinalizado(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	id, _, _ := proportionalShipment(t, f)
	_, err := f.svc.PushPricesToCatalog(context.Background(), id, "u")
	assert.ErrorIs(t, err, domain.ErrShipmentNotFinalized)
}

func TestPushPrices_FalloParcial(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, itemB := proportionalShipment(t, f)
	_, _, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, id, "u")
	require.NoError(t, err)

	f.catalog.FailFor("prod-b", errors.New("catálogo caído"))
	res, err := f.svc.PushPricesToCatalog(ctx, id, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, itemB, res.Failed[0].ItemID)
	assert.Equal(t, "prod-b", res.Failed[0].ProductID)

	f.catalog.FailFor("prod-b", nil)
	res, err = f.svc.PushPricesToCatalog(ctx, id, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Failed)
}

func TestPushPrices_MonedaDeReferencia(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	sh, err := f.svc.CreateShipment(ctx, landedcost.CreateShipmentInput{
		Name: "Malé", CalculationMethod: "proportional", BaseCurrency: "MVR", ReferenceCurrency: "USD", ExchangeRate: d("15.42"),
	})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, sh.ID, landedcost.AddItemInput{ProductID: "prod-x", ItemName: "X", Quantity: d("10"), UnitCost: d("100")})
	require.NoError(t, err)
	_, err = f.svc.AddSharedCost(ctx, sh.ID, landedcost.AddSharedCostInput{ExpenseCategoryID: entity.CategoryFreight, Amount: d("542")})
	require.NoError(t, err)
	_, res, err := f.svc.Recalculate(ctx, sh.ID)
	require.NoError(t, err)
	assert.True(t, res.TotalLandedCostReference.Amount.Equal(d("100")))
	_, err = f.svc.Finalize(ctx, sh.ID, "u")
	require.NoError(t, err)

	push, err := f.svc.PushPricesToCatalog(ctx, sh.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, "USD", push.Currency)
	p, ok := f.catalog.Price("prod-x")
	require.True(t, ok)
	assert.Equal(t, "USD", p.Currency)
	assert.True(t, p.Amount.Equal(d("10")))
}

func TestPushPrices_MonedaDeCatalogoDesconocida(t *testing.T) {
	f := newFixture(t, landedcost.Config{CatalogCurrency: "EUR"})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)
	_, _, err := f.svc.Recalculate(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, id, "u")
	require.NoError(t, err)

	_, err = f.svc.PushPricesToCatalog(ctx, id, "u")
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

// ─── Concurrencia y borrado ──────────────────────────────────────────────────

func TestMutacion_ConCandadoTomadoFallaConConcurrencia(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)
	before, err := f.svc.GetShipment(ctx, id)
	require.NoError(t, err)

	err = f.locker.WithLock(ctx, id, func(ctx context.Context) error {
		_, err := f.svc.AddItem(ctx, id, landedcost.AddItemInput{ProductID: "p", ItemName: "C", Quantity: d("1"), UnitCost: d("1")})
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
		_, _, err = f.svc.Recalculate(ctx, id)
		assert.ErrorIs(t, err, domain.ErrConcurrency)
		return nil
	})
	require.NoError(t, err)

	after, err := f.svc.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestDeleteShipment(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	id, _, _ := proportionalShipment(t, f)

	require.NoError(t, f.svc.DeleteShipment(ctx, id))
	_, err := f.svc.GetShipment(ctx, id)
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	assert.ErrorIs(t, f.svc.DeleteShipment(ctx, id), domain.ErrShipmentNotFound)
}

// ─── Simulación ──────────────────────────────────────────────────────────────

func TestPreview_NoPersiste(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	ctx := context.Background()
	res, err := f.svc.Preview(ctx, landedcost.PreviewInput{
		CalculationMethod: "equal",
		BaseCurrency:      "USD",
		ExchangeRate:      d("1"),
		Items: []landedcost.PreviewItem{
			{ProductID: "a", ItemName: "A", Quantity: d("1"), UnitCost: d("1")},
			{ProductID: "b", ItemName: "B", Quantity: d("1"), UnitCost: d("1")},
			{ProductID: "c", ItemName: "C", Quantity: d("1"), UnitCost: d("1")},
		},
		SharedCosts: []landedcost.AddSharedCostInput{{ExpenseCategoryID: entity.CategoryFreight, Amount: d("10")}},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.True(t, res.Items[0].AllocatedSharedCost.Amount.Equal(d("3.33")))
	assert.True(t, res.Items[1].AllocatedSharedCost.Amount.Equal(d("3.33")))
	assert.True(t, res.Items[2].AllocatedSharedCost.Amount.Equal(d("3.34")))

	_, total, err := f.svc.ListShipments(ctx, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPreview_OverrideExigeCategoriaPermitida(t *testing.T) {
	f := newFixture(t, landedcost.Config{})
	_, err := f.svc.Preview(context.Background(), landedcost.PreviewInput{
		CalculationMethod: "equal",
		BaseCurrency:      "USD",
		ExchangeRate:      d("1"),
		Items: []landedcost.PreviewItem{
			{ProductID: "a", ItemName: "A", Quantity: d("1"), UnitCost: d("1"),
				Override: &landedcost.ItemOverrideInput{ExpenseCategoryID: entity.CategoryHandling, Amount: d("1")}},
		},
	})
	assert.ErrorIs(t, err, domain.ErrOverrideNotAllowed)
}
