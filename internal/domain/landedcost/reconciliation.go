package landedcost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// ShareEpsilon tolerancia de Σ percentage_share frente a 1.
var ShareEpsilon = decimal.New(1, -9)

// Reconciliation estado de los invariantes tras un cálculo.
type Reconciliation struct {
	BaseCostBalanced   bool            // Σ total_item_cost == total_base_cost
	SharedCostBalanced bool            // Σ allocated_shared_cost == total_shared_cost
	ItemsBalanced      bool            // landed = costo + asignado y unitario = landed / cantidad
	LandedCostBalanced bool            // Σ total_landed_cost == total_landed_cost del embarque
	ShareSum           decimal.Decimal // Σ percentage_share de ítems sin override
	SharesSumToOne     bool
}

// OK indica si todos los invariantes se cumplen.
func (r Reconciliation) OK() bool {
	return r.BaseCostBalanced && r.SharedCostBalanced && r.ItemsBalanced && r.LandedCostBalanced && r.SharesSumToOne
}

// Verify comprueba los invariantes del resultado. Una violación es un bug interno y se reporta
// como ErrInvariantViolation.
func Verify(r *CalculationResult) (Reconciliation, error) {
	cur := r.BaseCurrency
	minor := money.MinorUnits(cur)
	sumCost, sumAlloc, sumLanded := decimal.Zero, decimal.Zero, decimal.Zero
	shareSum := decimal.Zero
	autoCount := 0
	itemsOK := true

	for _, it := range r.Items {
		sumCost = sumCost.Add(it.TotalItemCost.Amount)
		sumAlloc = sumAlloc.Add(it.AllocatedSharedCost.Amount)
		sumLanded = sumLanded.Add(it.TotalLandedCost.Amount)
		if !it.Overridden {
			shareSum = shareSum.Add(it.PercentageShare)
			autoCount++
		}
		if !it.TotalLandedCost.Amount.Equal(it.TotalItemCost.Amount.Add(it.AllocatedSharedCost.Amount)) {
			itemsOK = false
		}
		if it.Quantity.IsPositive() {
			want := it.TotalLandedCost.Amount.DivRound(it.Quantity, money.InternalPlaces).Round(minor)
			if !it.LandedCostPerUnit.Amount.Equal(want) {
				itemsOK = false
			}
		} else {
			itemsOK = false
		}
	}

	rec := Reconciliation{
		BaseCostBalanced:   sumCost.Equal(r.TotalBaseCost.Amount),
		SharedCostBalanced: sumAlloc.Equal(r.TotalSharedCost.Amount),
		ItemsBalanced:      itemsOK,
		LandedCostBalanced: sumLanded.Equal(r.TotalLandedCost.Amount),
		ShareSum:           shareSum,
		SharesSumToOne:     autoCount == 0 || shareSum.Sub(decimal.NewFromInt(1)).Abs().LessThanOrEqual(ShareEpsilon),
	}
	if !rec.OK() {
		return rec, fmt.Errorf("%w: %+v", domain.ErrInvariantViolation, rec)
	}
	return rec, nil
}
