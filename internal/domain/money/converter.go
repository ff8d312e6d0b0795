package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
)

// Converter convierte entre la moneda base del embarque y la moneda de referencia con una sola tasa.
// Convención fija: Rate = unidades de Base por 1 unidad de Reference, es decir
//
//	referencia = base / Rate
//	base       = referencia * Rate
type Converter struct {
	Base      string
	Reference string
	Rate      decimal.Decimal
}

// NewConverter valida la tasa. Si base y referencia coinciden la tasa debe ser 1.
func NewConverter(base, reference string, rate decimal.Decimal) (Converter, error) {
	if !rate.IsPositive() {
		return Converter{}, domain.ErrInvalidRate
	}
	if base == reference && !rate.Equal(decimal.NewFromInt(1)) {
		return Converter{}, fmt.Errorf("%w: misma moneda %s con tasa %s", domain.ErrInvalidRate, base, rate)
	}
	return Converter{Base: base, Reference: reference, Rate: rate}, nil
}

// ToReference convierte un monto en moneda base a la moneda de referencia (sin redondear).
func (c Converter) ToReference(m Money) (Money, error) {
	if m.Currency != c.Base {
		return Money{}, fmt.Errorf("%w: se esperaba %s, llegó %s", domain.ErrCurrencyMismatch, c.Base, m.Currency)
	}
	if !c.Rate.IsPositive() {
		return Money{}, domain.ErrInvalidRate
	}
	return Money{Amount: m.Amount.DivRound(c.Rate, InternalPlaces), Currency: c.Reference}, nil
}

// ToBase convierte un monto en moneda de referencia a la moneda base (sin redondear).
func (c Converter) ToBase(m Money) (Money, error) {
	if m.Currency != c.Reference {
		return Money{}, fmt.Errorf("%w: se esperaba %s, llegó %s", domain.ErrCurrencyMismatch, c.Reference, m.Currency)
	}
	return m.Convert(c.Base, c.Rate)
}
