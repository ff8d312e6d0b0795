package money

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"

	"github.com/jhoicas/LandedCost-api/internal/domain"
)

// defaultMinorUnits se usa cuando el código no es reconocible.
const defaultMinorUnits int32 = 2

// NormalizeCurrency valida un código ISO 4217 y lo devuelve en mayúsculas.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, code)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

// MinorUnits devuelve los decimales de la unidad menor de la moneda según ISO 4217.
func MinorUnits(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return defaultMinorUnits
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}
