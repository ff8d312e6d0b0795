package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

var now = time.Date(2025, 10, 27, 12, 0, 0, 0, time.UTC)

func newDraft(t *testing.T) *entity.Shipment {
	t.Helper()
	s, err := entity.NewShipment(entity.NewShipmentParams{
		ID:                "shp-1",
		Name:              "Contenedor Shanghai",
		ShipmentDate:      now,
		CalculationMethod: entity.MethodProportional,
		BaseCurrency:      "usd",
		ReferenceCurrency: "USD",
		ExchangeRate:      decimal.NewFromInt(1),
		CreatedBy:         "user-1",
	}, now)
	require.NoError(t, err)
	return s
}

func newItem(t *testing.T, id string, qty, unitCost int64) *entity.ShipmentItem {
	t.Helper()
	it, err := entity.NewShipmentItem(id, "prod-"+id, "Item "+id, decimal.NewFromInt(qty), money.New(decimal.NewFromInt(unitCost), "USD"), decimal.Zero)
	require.NoError(t, err)
	return it
}

func TestNewShipment_Validaciones(t *testing.T) {
	base := entity.NewShipmentParams{
		ID: "s", Name: "x", CalculationMethod: entity.MethodEqual,
		BaseCurrency: "MVR", ReferenceCurrency: "USD", ExchangeRate: decimal.RequireFromString("15.42"),
	}

	s, err := entity.NewShipment(base, now)
	require.NoError(t, err)
	assert.False(t, s.IsFinalized)
	assert.Equal(t, "MVR", s.BaseCurrency)
	assert.True(t, s.TotalLandedCost.IsZero())

	p := base
	p.ExchangeRate = decimal.Zero
	_, err = entity.NewShipment(p, now)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	p = base
	p.CalculationMethod = "volume"
	_, err = entity.NewShipment(p, now)
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	p = base
	p.BaseCurrency = "??"
	_, err = entity.NewShipment(p, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewShipmentItem_CantidadDebeSerPositiva(t *testing.T) {
	_, err := entity.NewShipmentItem("i", "p", "n", decimal.Zero, money.New(decimal.NewFromInt(1), "USD"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = entity.NewShipmentItem("i", "p", "n", decimal.NewFromInt(1), money.New(decimal.NewFromInt(1), "USD"), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrNegativeWeight)

	it, err := entity.NewShipmentItem("i", "p", "n", decimal.RequireFromString("2.5"), money.New(decimal.RequireFromString("3.333"), "USD"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "8.33", it.TotalItemCost.Amount.String())
}

func TestNewShipmentItem_EscalaDecimalAcotada(t *testing.T) {
	usd := func(v string) money.Money { return money.New(decimal.RequireFromString(v), "USD") }

	_, err := entity.NewShipmentItem("i", "p", "n", decimal.RequireFromString("0.0000001"), usd("1"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = entity.NewShipmentItem("i", "p", "n", decimal.RequireFromString("1.1234567"), usd("1"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = entity.NewShipmentItem("i", "p", "n", decimal.NewFromInt(1), usd("1"), decimal.RequireFromString("0.0000001"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = entity.NewShipmentItem("i", "p", "n", decimal.NewFromInt(1), usd("0.00000000001"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)

	it, err := entity.NewShipmentItem("i", "p", "n", decimal.RequireFromString("1.500000000"), usd("2"), decimal.RequireFromString("0.000001"))
	require.NoError(t, err, "ceros a la derecha no cuentan como decimales")
	assert.Equal(t, "3", it.TotalItemCost.Amount.String())
}

func TestShipment_EdicionInvalidaCalculo(t *testing.T) {
	s := newDraft(t)
	require.NoError(t, s.AddItem(newItem(t, "a", 1, 10), now))
	s.MarkCalculated(now)
	require.NotNil(t, s.CalculatedAt)

	require.NoError(t, s.AddItem(newItem(t, "b", 1, 10), now))
	assert.Nil(t, s.CalculatedAt)
	assert.Equal(t, "shp-1", s.Items[1].ShipmentID)
}

func TestShipment_FinalizeRequiereCalculo(t *testing.T) {
	s := newDraft(t)
	require.NoError(t, s.AddItem(newItem(t, "a", 1, 10), now))
	assert.ErrorIs(t, s.Finalize(now), domain.ErrNotCalculated)

	s.MarkCalculated(now)
	require.NoError(t, s.Finalize(now))
	assert.True(t, s.IsFinalized)
	require.NotNil(t, s.FinalizedAt)
}

// Cualquier mutación sobre un embarque finalizado falla con StateError y no cambia nada.
func TestShipment_FinalizadoRechazaMutaciones(t *testing.T) {
	s := newDraft(t)
	require.NoError(t, s.AddItem(newItem(t, "a", 1, 10), now))
	cost, err := entity.NewSharedCost("c1", "freight", "Flete", money.New(decimal.NewFromInt(5), "USD"), now)
	require.NoError(t, err)
	require.NoError(t, s.AddSharedCost(cost, now))
	s.MarkCalculated(now)
	require.NoError(t, s.Finalize(now))
	before := s.Clone()

	errs := []error{
		s.AddItem(newItem(t, "b", 1, 1), now),
		s.RemoveItem("a", now),
		s.AddSharedCost(cost, now),
		s.RemoveSharedCost("c1", now),
		s.SetItemOverride("a", entity.ItemOverride{ExpenseCategoryID: "duty", Amount: money.Zero("USD")}, now),
		s.ClearItemOverride("a", now),
		s.Finalize(now),
	}
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrShipmentFinalized)
		assert.ErrorIs(t, err, domain.ErrState)
	}
	assert.Equal(t, before, s)
}

func TestShipment_OverrideRedondeaYValidaMoneda(t *testing.T) {
	s := newDraft(t)
	require.NoError(t, s.AddItem(newItem(t, "a", 1, 10), now))

	err := s.SetItemOverride("a", entity.ItemOverride{ExpenseCategoryID: "duty", Amount: money.New(decimal.NewFromInt(1), "MVR")}, now)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	err = s.SetItemOverride("zzz", entity.ItemOverride{Amount: money.Zero("USD")}, now)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	require.NoError(t, s.SetItemOverride("a", entity.ItemOverride{ExpenseCategoryID: "duty", Amount: money.New(decimal.RequireFromString("4.005"), "USD")}, now))
	it, _ := s.Item("a")
	require.True(t, it.IsOverridden())
	assert.Equal(t, "4.01", it.Override.Amount.Amount.String())

	require.NoError(t, s.ClearItemOverride("a", now))
	assert.False(t, it.IsOverridden())
}

func TestShipment_CloneEsProfundo(t *testing.T) {
	s := newDraft(t)
	require.NoError(t, s.AddItem(newItem(t, "a", 1, 10), now))
	c := s.Clone()
	c.Items[0].ItemName = "otro"
	c.Name = "otro"
	assert.Equal(t, "Item a", s.Items[0].ItemName)
	assert.Equal(t, "Contenedor Shanghai", s.Name)
}
