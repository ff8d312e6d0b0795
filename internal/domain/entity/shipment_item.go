package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// Decimales máximos admitidos por ítem; coinciden con las columnas NUMERIC del esquema para que
// el resultado no dependa del almacenamiento.
const (
	QuantityPlaces int32 = 6
	WeightPlaces   int32 = 6
	UnitCostPlaces int32 = 10
)

// ItemOverride asignación manual del costo compartido de un ítem, ligada a una categoría de gasto
// con AllowsItemOverride. El ítem queda fuera del reparto automático.
type ItemOverride struct {
	ExpenseCategoryID string
	Amount            money.Money
}

// ShipmentItem línea de producto dentro de un embarque.
// PercentageShare es siempre una fracción 0–1 (nunca un porcentaje ×100).
type ShipmentItem struct {
	ID                  string
	ShipmentID          string
	ProductID           string
	ItemName            string
	Quantity            decimal.Decimal // > 0
	UnitCost            money.Money
	Weight              decimal.Decimal // >= 0
	TotalItemCost       money.Money     // Quantity * UnitCost, redondeado a centavos
	PercentageShare     decimal.Decimal
	AllocatedSharedCost money.Money
	TotalLandedCost     money.Money
	LandedCostPerUnit   money.Money
	Override            *ItemOverride
}

// NewShipmentItem valida cantidad, costo y peso y calcula TotalItemCost.
func NewShipmentItem(id, productID, itemName string, quantity decimal.Decimal, unitCost money.Money, weight decimal.Decimal) (*ShipmentItem, error) {
	if id == "" || productID == "" || strings.TrimSpace(itemName) == "" {
		return nil, domain.ErrInvalidInput
	}
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}
	if weight.IsNegative() {
		return nil, domain.ErrNegativeWeight
	}
	if !fitsScale(quantity, QuantityPlaces) {
		return nil, fmt.Errorf("%w: a lo sumo %d decimales", domain.ErrInvalidQuantity, QuantityPlaces)
	}
	if !fitsScale(weight, WeightPlaces) {
		return nil, fmt.Errorf("%w: el peso admite a lo sumo %d decimales", domain.ErrInvalidInput, WeightPlaces)
	}
	if !fitsScale(unitCost.Amount, UnitCostPlaces) {
		return nil, fmt.Errorf("%w: el costo unitario admite a lo sumo %d decimales", domain.ErrInvalidInput, UnitCostPlaces)
	}
	zero := money.Zero(unitCost.Currency)
	return &ShipmentItem{
		ID:                  id,
		ProductID:           productID,
		ItemName:            strings.TrimSpace(itemName),
		Quantity:            quantity,
		UnitCost:            unitCost,
		Weight:              weight,
		TotalItemCost:       unitCost.Mul(quantity).RoundToMinor(),
		PercentageShare:     decimal.Zero,
		AllocatedSharedCost: zero,
		TotalLandedCost:     zero,
		LandedCostPerUnit:   zero,
	}, nil
}

func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// IsOverridden indica si el ítem tiene asignación manual.
func (it *ShipmentItem) IsOverridden() bool {
	return it.Override != nil
}

// Clone copia el ítem incluyendo el override.
func (it *ShipmentItem) Clone() *ShipmentItem {
	c := *it
	if it.Override != nil {
		ov := *it.Override
		c.Override = &ov
	}
	return &c
}
