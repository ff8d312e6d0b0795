package landedcost

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// PoolLine total de costos compartidos de una categoría de gasto.
//
//	Manual = Σ override de ítems en la categoría
//	Auto   = max(Amount - Manual, 0), la parte que reparte la estrategia
type PoolLine struct {
	ExpenseCategoryID string
	Amount            money.Money
	Manual            money.Money
	Auto              money.Money
}

// CostShare parte de una categoría de gasto asignada a un ítem.
type CostShare struct {
	ExpenseCategoryID string
	Amount            money.Money
	Manual            bool
}

// Pool agrega los costos compartidos del embarque y separa la parte asignada a mano.
//
//	Total      = Σ shared_cost.amount
//	Overridden = Σ override de ítems
//	Remaining  = Total - Overridden (lo que reparte la estrategia)
type Pool struct {
	Total      money.Money
	Overridden money.Money
	Remaining  money.Money
	Lines      []PoolLine // por categoría, ordenado por ID de categoría
}

// BuildPool suma los costos compartidos y los overrides del embarque.
func BuildPool(s *entity.Shipment) (Pool, error) {
	total := money.Zero(s.BaseCurrency)
	byCategory := make(map[string]money.Money)
	for _, c := range s.SharedCosts {
		if c.Amount.IsNegative() {
			return Pool{}, domain.ErrNegativeAmount
		}
		var err error
		if total, err = total.Add(c.Amount); err != nil {
			return Pool{}, err
		}
		acc, ok := byCategory[c.ExpenseCategoryID]
		if !ok {
			acc = money.Zero(s.BaseCurrency)
		}
		if byCategory[c.ExpenseCategoryID], err = acc.Add(c.Amount); err != nil {
			return Pool{}, err
		}
	}

	overridden := money.Zero(s.BaseCurrency)
	manual := make(map[string]money.Money)
	for _, it := range s.Items {
		if !it.IsOverridden() {
			continue
		}
		var err error
		if overridden, err = overridden.Add(it.Override.Amount); err != nil {
			return Pool{}, err
		}
		acc, ok := manual[it.Override.ExpenseCategoryID]
		if !ok {
			acc = money.Zero(s.BaseCurrency)
		}
		if manual[it.Override.ExpenseCategoryID], err = acc.Add(it.Override.Amount); err != nil {
			return Pool{}, err
		}
	}

	remaining, err := total.Sub(overridden)
	if err != nil {
		return Pool{}, err
	}
	if remaining.IsNegative() {
		return Pool{}, fmt.Errorf("%w: asignado a mano %s, total %s", domain.ErrOverrideExceedsPool, overridden, total)
	}

	lines := make([]PoolLine, 0, len(byCategory))
	for id, amount := range byCategory {
		line := PoolLine{ExpenseCategoryID: id, Amount: amount, Manual: money.Zero(s.BaseCurrency), Auto: amount}
		if m, ok := manual[id]; ok {
			line.Manual = m
			if line.Auto, err = amount.Sub(m); err != nil {
				return Pool{}, err
			}
			if line.Auto.IsNegative() {
				line.Auto = money.Zero(s.BaseCurrency)
			}
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ExpenseCategoryID < lines[j].ExpenseCategoryID })

	return Pool{Total: total, Overridden: overridden, Remaining: remaining, Lines: lines}, nil
}

// Breakdown desglosa lo asignado a un ítem por categoría de gasto. Un ítem con override lleva todo
// en la categoría del override; el resto se reparte según la parte automática de cada línea,
// con el mismo truncado y residuo que el reparto entre ítems. Σ Amount == allocated.
func (p Pool) Breakdown(it *entity.ShipmentItem, allocated money.Money, minor int32) []CostShare {
	if it.IsOverridden() {
		return []CostShare{{ExpenseCategoryID: it.Override.ExpenseCategoryID, Amount: allocated, Manual: true}}
	}
	weights := make([]decimal.Decimal, 0, len(p.Lines))
	ids := make([]string, 0, len(p.Lines))
	sum := decimal.Zero
	for _, l := range p.Lines {
		if !l.Auto.Amount.IsPositive() {
			continue
		}
		weights = append(weights, l.Auto.Amount)
		ids = append(ids, l.ExpenseCategoryID)
		sum = sum.Add(l.Auto.Amount)
	}
	if !sum.IsPositive() || allocated.IsZero() {
		return nil
	}
	parts := splitTruncated(allocated.Amount.Round(minor), weights, sum, minor)
	out := make([]CostShare, len(parts))
	for i, part := range parts {
		out[i] = CostShare{ExpenseCategoryID: ids[i], Amount: money.New(part, allocated.Currency)}
	}
	return out
}

// ItemBreakdowns desglose por categoría de cada ítem de un embarque ya calculado, en el orden de
// s.Items.
func ItemBreakdowns(s *entity.Shipment) ([][]CostShare, error) {
	pool, err := BuildPool(s)
	if err != nil {
		return nil, err
	}
	minor := money.MinorUnits(s.BaseCurrency)
	out := make([][]CostShare, len(s.Items))
	for i, it := range s.Items {
		out[i] = pool.Breakdown(it, it.AllocatedSharedCost, minor)
	}
	return out, nil
}
