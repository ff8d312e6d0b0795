package landedcost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// SharePlaces decimales con que se guarda percentage_share (fracción 0–1).
const SharePlaces int32 = 12

// Strategy algoritmo de reparto del pool. Allocate devuelve, en el orden de items, la fracción
// del pool que corresponde a cada uno. Weight es la base de asignación del ítem.
type Strategy interface {
	Method() entity.CalculationMethod
	Weight(item *entity.ShipmentItem) decimal.Decimal
	Allocate(items []*entity.ShipmentItem, pool money.Money) ([]decimal.Decimal, error)
}

// Proportional reparte según el valor de cada ítem (total_item_cost): prorrateo ad valorem.
type Proportional struct{}

func (Proportional) Method() entity.CalculationMethod { return entity.MethodProportional }

func (Proportional) Weight(item *entity.ShipmentItem) decimal.Decimal {
	return item.TotalItemCost.Amount
}

func (p Proportional) Allocate(items []*entity.ShipmentItem, pool money.Money) ([]decimal.Decimal, error) {
	return allocate(p, items, pool)
}

// Equal reparte 1/N a cada ítem.
type Equal struct{}

func (Equal) Method() entity.CalculationMethod { return entity.MethodEqual }

func (Equal) Weight(*entity.ShipmentItem) decimal.Decimal { return decimal.NewFromInt(1) }

func (e Equal) Allocate(items []*entity.ShipmentItem, pool money.Money) ([]decimal.Decimal, error) {
	return allocate(e, items, pool)
}

// WeightBased reparte según el peso físico (fletes).
type WeightBased struct{}

func (WeightBased) Method() entity.CalculationMethod { return entity.MethodWeightBased }

func (WeightBased) Weight(item *entity.ShipmentItem) decimal.Decimal { return item.Weight }

func (w WeightBased) Allocate(items []*entity.ShipmentItem, pool money.Money) ([]decimal.Decimal, error) {
	return allocate(w, items, pool)
}

// QuantityBased reparte según la cantidad de unidades (manipulación por pieza).
type QuantityBased struct{}

func (QuantityBased) Method() entity.CalculationMethod { return entity.MethodQuantityBased }

func (QuantityBased) Weight(item *entity.ShipmentItem) decimal.Decimal { return item.Quantity }

func (q QuantityBased) Allocate(items []*entity.ShipmentItem, pool money.Money) ([]decimal.Decimal, error) {
	return allocate(q, items, pool)
}

// StrategyFor devuelve la estrategia del método indicado.
func StrategyFor(method entity.CalculationMethod) (Strategy, error) {
	switch method {
	case entity.MethodProportional:
		return Proportional{}, nil
	case entity.MethodEqual:
		return Equal{}, nil
	case entity.MethodWeightBased:
		return WeightBased{}, nil
	case entity.MethodQuantityBased:
		return QuantityBased{}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMethod, method)
}

// basis devuelve la base de cada ítem y su suma. Falla si no hay ítems, si alguna base es
// negativa o si la suma es cero (no se puede dividir por una base nula).
func basis(s Strategy, items []*entity.ShipmentItem) ([]decimal.Decimal, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, domain.ErrEmptyShipment
	}
	weights := make([]decimal.Decimal, len(items))
	sum := decimal.Zero
	for i, it := range items {
		w := s.Weight(it)
		if w.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: base negativa en el ítem %s", domain.ErrInvalidBasis, it.ID)
		}
		weights[i] = w
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		return nil, decimal.Zero, fmt.Errorf("%w (método %s)", domain.ErrInvalidBasis, s.Method())
	}
	return weights, sum, nil
}

func allocate(s Strategy, items []*entity.ShipmentItem, pool money.Money) ([]decimal.Decimal, error) {
	if pool.IsNegative() {
		return nil, domain.ErrNegativePool
	}
	weights, sum, err := basis(s, items)
	if err != nil {
		return nil, err
	}
	return splitTruncated(decimal.NewFromInt(1), weights, sum, SharePlaces), nil
}

// splitTruncated reparte total en proporción a weights. Cada parte se trunca a places decimales y
// el residuo (total - Σ partes, nunca negativo) va al ítem de mayor peso; en empate, al último.
// total debe venir ya redondeado a places para que Σ partes == total exactamente.
func splitTruncated(total decimal.Decimal, weights []decimal.Decimal, sum decimal.Decimal, places int32) []decimal.Decimal {
	parts := make([]decimal.Decimal, len(weights))
	acc := decimal.Zero
	largest := 0
	for i, w := range weights {
		parts[i], _ = total.Mul(w).QuoRem(sum, places)
		acc = acc.Add(parts[i])
		if w.GreaterThanOrEqual(weights[largest]) {
			largest = i
		}
	}
	parts[largest] = parts[largest].Add(total.Sub(acc))
	return parts
}
