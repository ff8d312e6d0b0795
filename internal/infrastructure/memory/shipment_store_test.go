package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/memory"
)

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newShipment(t *testing.T, id string) *entity.Shipment {
	t.Helper()
	s, err := entity.NewShipment(entity.NewShipmentParams{
		ID: id, Name: id, CalculationMethod: entity.MethodEqual,
		BaseCurrency: "USD", ReferenceCurrency: "USD", ExchangeRate: decimal.NewFromInt(1),
	}, now)
	require.NoError(t, err)
	return s
}

// ─── Versionado optimista ────────────────────────────────────────────────────

func TestShipmentStore_SaveConVersionVieja(t *testing.T) {
	st := memory.NewShipmentStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newShipment(t, "s1")))

	a, err := st.GetForUpdate(ctx, "s1")
	require.NoError(t, err)
	b, err := st.GetForUpdate(ctx, "s1")
	require.NoError(t, err)

	a.Name = "primero"
	require.NoError(t, st.Save(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	b.Name = "segundo"
	assert.ErrorIs(t, st.Save(ctx, b), domain.ErrConcurrentModification)

	got, err := st.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "primero", got.Name)
}

func TestShipmentStore_CopiasAisladas(t *testing.T) {
	st := memory.NewShipmentStore()
	ctx := context.Background()
	s := newShipment(t, "s1")
	require.NoError(t, st.Create(ctx, s))
	s.Name = "mutado fuera"

	got, err := st.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.Name)
}

// ─── Transacciones ───────────────────────────────────────────────────────────

func TestShipmentStore_RunRollback(t *testing.T) {
	st := memory.NewShipmentStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newShipment(t, "s1")))

	boom := errors.New("boom")
	err := st.Run(ctx, func(repo repository.ShipmentRepository) error {
		s, err := repo.GetForUpdate(ctx, "s1")
		require.NoError(t, err)
		s.Name = "no debe quedar"
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.Create(ctx, newShipment(t, "s2")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := st.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.Name)
	assert.Equal(t, int64(1), got.Version)
	_, err = st.GetByID(ctx, "s2")
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestShipmentStore_RunCommit(t *testing.T) {
	st := memory.NewShipmentStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newShipment(t, "s1")))
	require.NoError(t, st.Create(ctx, newShipment(t, "s2")))

	err := st.Run(ctx, func(repo repository.ShipmentRepository) error {
		s, err := repo.GetForUpdate(ctx, "s1")
		if err != nil {
			return err
		}
		s.Name = "editado"
		if err := repo.Save(ctx, s); err != nil {
			return err
		}
		return repo.Delete(ctx, "s2")
	})
	require.NoError(t, err)

	got, err := st.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "editado", got.Name)
	assert.Equal(t, int64(2), got.Version)
	_, total, err := st.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// ─── Catálogo ────────────────────────────────────────────────────────────────

func TestCatalogStore_Idempotencia(t *testing.T) {
	cat := memory.NewCatalogStore()
	ctx := context.Background()
	u := landedcost.PriceUpdate{IdempotencyKey: "k1", ProductID: "p1", Amount: money.New(decimal.NewFromInt(11), "USD")}

	applied, err := cat.SetUnitPrice(ctx, u)
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = cat.SetUnitPrice(ctx, u)
	require.NoError(t, err)
	assert.False(t, applied)

	p, ok := cat.Price("p1")
	require.True(t, ok)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(11)))
}

func TestCategoryStore_OrdenYNoEncontrada(t *testing.T) {
	st := memory.NewCategoryStore(entity.DefaultExpenseCategories()...)
	cats, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 5)
	assert.Equal(t, entity.CategoryFreight, cats[0].ID)

	_, err = st.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
