package money_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

func usd(s string) money.Money {
	return money.New(decimal.RequireFromString(s), "USD")
}

// ──────────────────────────────────────────────────────────────────────────────
// Aritmética
// ──────────────────────────────────────────────────────────────────────────────

func TestMoney_AddSubMismaMoneda(t *testing.T) {
	sum, err := usd("10.10").Add(usd("0.20"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(usd("10.30")))

	diff, err := usd("10").Sub(usd("0.01"))
	require.NoError(t, err)
	assert.True(t, diff.Equal(usd("9.99")))
}

func TestMoney_MonedasDistintasSeRechazan(t *testing.T) {
	_, err := usd("1").Add(money.New(decimal.NewFromInt(1), "MVR"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCurrencyMismatch))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestMoney_DivPorCero(t *testing.T) {
	_, err := usd("10").Div(decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
	assert.ErrorIs(t, err, domain.ErrArithmetic)
}

func TestMoney_DivMantienePrecisionInterna(t *testing.T) {
	q, err := usd("10").Div(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "3.3333333333", q.Amount.String())
	assert.Equal(t, "3.33 USD", q.String())
}

func TestMoney_RoundToMinorSegunISO4217(t *testing.T) {
	assert.Equal(t, "3.34", usd("3.335").RoundToMinor().Amount.String())
	jpy := money.New(decimal.RequireFromString("100.5"), "JPY").RoundToMinor()
	assert.Equal(t, "101", jpy.Amount.String())
}

func TestMoney_ConvertRechazaTasaNoPositiva(t *testing.T) {
	_, err := usd("1").Convert("MVR", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
	_, err = usd("1").Convert("MVR", decimal.NewFromInt(-2))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	mvr, err := usd("2").Convert("MVR", decimal.RequireFromString("15.42"))
	require.NoError(t, err)
	assert.Equal(t, "MVR", mvr.Currency)
	assert.Equal(t, "30.84", mvr.Amount.String())
}

func TestSum(t *testing.T) {
	total, err := money.Sum("USD", usd("1.01"), usd("2.02"), usd("3.03"))
	require.NoError(t, err)
	assert.True(t, total.Equal(usd("6.06")))

	empty, err := money.Sum("USD")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Monedas y conversión
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalizeCurrency(t *testing.T) {
	code, err := money.NormalizeCurrency(" mvr ")
	require.NoError(t, err)
	assert.Equal(t, "MVR", code)

	_, err = money.NormalizeCurrency("XXXX")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
	_, err = money.NormalizeCurrency("ZZZ")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int32(2), money.MinorUnits("USD"))
	assert.Equal(t, int32(2), money.MinorUnits("MVR"))
	assert.Equal(t, int32(0), money.MinorUnits("JPY"))
	assert.Equal(t, int32(3), money.MinorUnits("KWD"))
}

func TestConverter_ReferenciaEsBaseEntreTasa(t *testing.T) {
	c, err := money.NewConverter("MVR", "USD", decimal.RequireFromString("15.42"))
	require.NoError(t, err)

	ref, err := c.ToReference(money.New(decimal.RequireFromString("154.20"), "MVR"))
	require.NoError(t, err)
	assert.Equal(t, "USD", ref.Currency)
	assert.True(t, ref.Amount.Equal(decimal.NewFromInt(10)))

	back, err := c.ToBase(ref)
	require.NoError(t, err)
	assert.True(t, back.Amount.Equal(decimal.RequireFromString("154.2")))

	_, err = c.ToReference(usd("1"))
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestNewConverter_Validaciones(t *testing.T) {
	_, err := money.NewConverter("MVR", "USD", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = money.NewConverter("USD", "USD", decimal.NewFromInt(2))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	c, err := money.NewConverter("USD", "USD", decimal.NewFromInt(1))
	require.NoError(t, err)
	ref, err := c.ToReference(usd("12.34"))
	require.NoError(t, err)
	assert.True(t, ref.Equal(usd("12.34")))
}
