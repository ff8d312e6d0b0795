// Package money implementa el valor monetario de punto fijo (shopspring/decimal) con moneda ISO 4217
// asociada. Toda la aritmética del motor de costo en destino pasa por aquí; ningún monto usa float64.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
)

// InternalPlaces es la precisión de los cálculos intermedios. Se redondea a unidades menores
// (centavos) solo al persistir.
const InternalPlaces int32 = 10

// Money monto decimal con su moneda (código ISO 4217 en mayúsculas).
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New construye un Money. No valida el código de moneda; usar NormalizeCurrency en los bordes.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero devuelve cero en la moneda indicada.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add suma dos montos de la misma moneda.
func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub resta o de m (misma moneda).
func (m Money) Sub(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Mul multiplica por un escalar sin redondear.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Div divide por un escalar a precisión interna.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, domain.ErrDivisionByZero
	}
	return Money{Amount: m.Amount.DivRound(divisor, InternalPlaces), Currency: m.Currency}, nil
}

// Convert multiplica por rate (unidades de destino por unidad de origen) y cambia la moneda.
func (m Money) Convert(to string, rate decimal.Decimal) (Money, error) {
	if !rate.IsPositive() {
		return Money{}, domain.ErrInvalidRate
	}
	return Money{Amount: m.Amount.Mul(rate), Currency: to}, nil
}

// Round redondea a places decimales (mitad alejándose de cero).
func (m Money) Round(places int32) Money {
	return Money{Amount: m.Amount.Round(places), Currency: m.Currency}
}

// RoundToMinor redondea a la unidad menor de la moneda (2 para USD/MVR, 0 para JPY...).
func (m Money) RoundToMinor() Money {
	return m.Round(MinorUnits(m.Currency))
}

// Equal compara moneda y valor numérico (1.5 == 1.50).
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// String formatea con la precisión de la moneda, ej. "110.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(MinorUnits(m.Currency)), m.Currency)
}

func (m Money) sameCurrency(o Money) error {
	if m.Currency != o.Currency {
		return fmt.Errorf("%w: %s vs %s", domain.ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return nil
}

// Sum suma montos de una misma moneda; con lista vacía devuelve cero en currency.
func Sum(currency string, values ...Money) (Money, error) {
	total := Zero(currency)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
