// Package landedcost implementa el cálculo de costo en destino (landed cost): reparte los costos
// compartidos de un embarque entre sus ítems según una estrategia, concilia el redondeo y deriva
// el costo unitario en moneda base y de referencia.
package landedcost

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// ItemResult valores calculados de un ítem.
type ItemResult struct {
	ItemID                     string
	ProductID                  string
	ItemName                   string
	Quantity                   decimal.Decimal
	TotalItemCost              money.Money
	PercentageShare            decimal.Decimal // fracción 0–1; 0 si el ítem tiene override
	Overridden                 bool
	AllocatedSharedCost        money.Money
	TotalLandedCost            money.Money
	LandedCostPerUnit          money.Money
	TotalLandedCostReference   money.Money
	LandedCostPerUnitReference money.Money
	Breakdown                  []CostShare // por categoría de gasto; Σ == AllocatedSharedCost
}

// CalculationResult resultado completo del cálculo, con los invariantes de conciliación para que
// el llamador pueda verificarlos en el borde de la API.
type CalculationResult struct {
	ShipmentID               string
	Method                   entity.CalculationMethod
	BaseCurrency             string
	ReferenceCurrency        string
	ExchangeRate             decimal.Decimal
	TotalBaseCost            money.Money
	TotalSharedCost          money.Money
	TotalLandedCost          money.Money
	TotalLandedCostReference money.Money
	Pool                     Pool
	Items                    []ItemResult
	Reconciliation           Reconciliation
}

// Calculator motor de costo en destino. No guarda estado: el mismo embarque produce siempre el
// mismo resultado.
type Calculator struct{}

// NewCalculator construye el calculador.
func NewCalculator() *Calculator { return &Calculator{} }

// Calculate ejecuta el cálculo sobre el embarque sin mutarlo. Usar ApplyTo para escribir los
// resultados una vez que no hubo error.
func (c *Calculator) Calculate(s *entity.Shipment) (*CalculationResult, error) {
	if s.IsFinalized {
		return nil, domain.ErrShipmentFinalized
	}
	if len(s.Items) == 0 {
		return nil, domain.ErrEmptyShipment
	}
	conv, err := s.Converter()
	if err != nil {
		return nil, err
	}
	strategy, err := StrategyFor(s.CalculationMethod)
	if err != nil {
		return nil, err
	}
	minor := money.MinorUnits(s.BaseCurrency)
	refMinor := money.MinorUnits(s.ReferenceCurrency)

	// Costos directos.
	totalBase := money.Zero(s.BaseCurrency)
	itemCosts := make([]money.Money, len(s.Items))
	for i, it := range s.Items {
		if !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if it.UnitCost.Currency != s.BaseCurrency {
			return nil, domain.ErrCurrencyMismatch
		}
		itemCosts[i] = it.UnitCost.Mul(it.Quantity).Round(minor)
		if totalBase, err = totalBase.Add(itemCosts[i]); err != nil {
			return nil, err
		}
	}

	pool, err := BuildPool(s)
	if err != nil {
		return nil, err
	}

	// Partición: ítems con override vs. reparto automático.
	var autoIdx []int
	var autoItems []*entity.ShipmentItem
	for i, it := range s.Items {
		if !it.IsOverridden() {
			autoIdx = append(autoIdx, i)
			cp := it.Clone()
			cp.TotalItemCost = itemCosts[i]
			autoItems = append(autoItems, cp)
		}
	}

	allocated := make([]money.Money, len(s.Items))
	shares := make([]decimal.Decimal, len(s.Items))
	for i, it := range s.Items {
		shares[i] = decimal.Zero
		if it.IsOverridden() {
			allocated[i] = it.Override.Amount.Round(minor)
		}
	}

	if len(autoItems) == 0 {
		if !pool.Remaining.IsZero() {
			return nil, domain.ErrUnallocatedPool
		}
	} else {
		autoShares, err := strategy.Allocate(autoItems, pool.Remaining)
		if err != nil {
			return nil, err
		}
		amounts, err := distribute(strategy, autoItems, pool.Remaining, minor)
		if err != nil {
			return nil, err
		}
		for k, idx := range autoIdx {
			shares[idx] = autoShares[k]
			allocated[idx] = amounts[k]
		}
	}

	res := &CalculationResult{
		ShipmentID:        s.ID,
		Method:            s.CalculationMethod,
		BaseCurrency:      s.BaseCurrency,
		ReferenceCurrency: s.ReferenceCurrency,
		ExchangeRate:      s.ExchangeRate,
		TotalBaseCost:     totalBase,
		TotalSharedCost:   pool.Total.Round(minor),
		Pool:              pool,
		Items:             make([]ItemResult, len(s.Items)),
	}

	for i, it := range s.Items {
		landed, err := itemCosts[i].Add(allocated[i])
		if err != nil {
			return nil, err
		}
		perUnit, err := landed.Div(it.Quantity)
		if err != nil {
			return nil, err
		}
		landedRef, err := conv.ToReference(landed)
		if err != nil {
			return nil, err
		}
		perUnitRef, err := landedRef.Div(it.Quantity)
		if err != nil {
			return nil, err
		}
		res.Items[i] = ItemResult{
			ItemID:                     it.ID,
			ProductID:                  it.ProductID,
			ItemName:                   it.ItemName,
			Quantity:                   it.Quantity,
			TotalItemCost:              itemCosts[i],
			PercentageShare:            shares[i],
			Overridden:                 it.IsOverridden(),
			AllocatedSharedCost:        allocated[i],
			TotalLandedCost:            landed,
			LandedCostPerUnit:          perUnit.Round(minor),
			TotalLandedCostReference:   landedRef.Round(refMinor),
			LandedCostPerUnitReference: perUnitRef.Round(refMinor),
			Breakdown:                  pool.Breakdown(it, allocated[i], minor),
		}
	}

	if res.TotalLandedCost, err = totalBase.Add(res.TotalSharedCost); err != nil {
		return nil, err
	}
	totalRef, err := conv.ToReference(res.TotalLandedCost)
	if err != nil {
		return nil, err
	}
	res.TotalLandedCostReference = totalRef.Round(refMinor)

	rec, err := Verify(res)
	res.Reconciliation = rec
	if err != nil {
		return nil, err
	}
	return res, nil
}

// distribute reparte pool entre items a minor decimales. Cada parte se trunca y el residuo del
// redondeo va completo al ítem con mayor participación bruta (en empate, al último), de modo que
// Σ asignado == pool y ninguna asignación queda negativa.
func distribute(s Strategy, items []*entity.ShipmentItem, pool money.Money, minor int32) ([]money.Money, error) {
	weights, sum, err := basis(s, items)
	if err != nil {
		return nil, err
	}
	parts := splitTruncated(pool.Amount.Round(minor), weights, sum, minor)
	out := make([]money.Money, len(items))
	for i, p := range parts {
		if p.IsNegative() {
			return nil, fmt.Errorf("%w: asignación negativa tras conciliar redondeo", domain.ErrInvariantViolation)
		}
		out[i] = money.New(p, pool.Currency)
	}
	return out, nil
}

// ApplyTo escribe los resultados en el embarque y lo marca como calculado. Solo se llama con un
// resultado exitoso, de modo que un cálculo fallido nunca deja valores a medias.
func (r *CalculationResult) ApplyTo(s *entity.Shipment, now time.Time) error {
	if r.ShipmentID != s.ID || len(r.Items) != len(s.Items) {
		return fmt.Errorf("%w: el resultado no corresponde al embarque", domain.ErrInvalidInput)
	}
	for i, it := range s.Items {
		ir := r.Items[i]
		if ir.ItemID != it.ID {
			return fmt.Errorf("%w: el resultado no corresponde al embarque", domain.ErrInvalidInput)
		}
		it.TotalItemCost = ir.TotalItemCost
		it.PercentageShare = ir.PercentageShare
		it.AllocatedSharedCost = ir.AllocatedSharedCost
		it.TotalLandedCost = ir.TotalLandedCost
		it.LandedCostPerUnit = ir.LandedCostPerUnit
	}
	s.TotalBaseCost = r.TotalBaseCost
	s.TotalSharedCost = r.TotalSharedCost
	s.TotalLandedCost = r.TotalLandedCost
	s.MarkCalculated(now)
	return nil
}
