package landedcost

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	calc "github.com/jhoicas/LandedCost-api/internal/domain/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// PreviewItem ítem de una simulación. Override opcional.
type PreviewItem struct {
	ProductID string
	ItemName  string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Weight    decimal.Decimal
	Override  *ItemOverrideInput
}

// PreviewInput embarque transitorio para simular el cálculo sin guardar nada.
type PreviewInput struct {
	CalculationMethod string
	BaseCurrency      string
	ReferenceCurrency string
	ExchangeRate      decimal.Decimal
	Items             []PreviewItem
	SharedCosts       []AddSharedCostInput
}

// Preview calcula el costo en destino de un embarque que no existe en el almacenamiento.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (*calc.CalculationResult, error) {
	ref := in.ReferenceCurrency
	if ref == "" {
		ref = s.cfg.ReferenceCurrency
	}
	now := s.clock()
	sh, err := entity.NewShipment(entity.NewShipmentParams{
		ID:                "preview",
		Name:              "preview",
		ShipmentDate:      now,
		CalculationMethod: entity.CalculationMethod(in.CalculationMethod),
		BaseCurrency:      in.BaseCurrency,
		ReferenceCurrency: ref,
		ExchangeRate:      in.ExchangeRate,
	}, now)
	if err != nil {
		return nil, err
	}

	for i, c := range in.SharedCosts {
		if _, err := s.category(ctx, c.ExpenseCategoryID); err != nil {
			return nil, err
		}
		cost, err := entity.NewSharedCost(fmt.Sprintf("cost-%d", i+1), c.ExpenseCategoryID, c.Description, money.New(c.Amount, sh.BaseCurrency), now)
		if err != nil {
			return nil, err
		}
		if err := sh.AddSharedCost(cost, now); err != nil {
			return nil, err
		}
	}
	for i, p := range in.Items {
		itemID := fmt.Sprintf("item-%d", i+1)
		item, err := entity.NewShipmentItem(itemID, p.ProductID, p.ItemName, p.Quantity, money.New(p.UnitCost, sh.BaseCurrency), p.Weight)
		if err != nil {
			return nil, fmt.Errorf("ítem %d: %w", i+1, err)
		}
		if err := sh.AddItem(item, now); err != nil {
			return nil, err
		}
		if p.Override == nil {
			continue
		}
		cat, err := s.category(ctx, p.Override.ExpenseCategoryID)
		if err != nil {
			return nil, err
		}
		if !cat.AllowsItemOverride {
			return nil, fmt.Errorf("%w: %s", domain.ErrOverrideNotAllowed, cat.Name)
		}
		if err := sh.SetItemOverride(itemID, entity.ItemOverride{
			ExpenseCategoryID: cat.ID,
			Amount:            money.New(p.Override.Amount, sh.BaseCurrency),
		}, now); err != nil {
			return nil, err
		}
	}

	start := s.clock()
	res, err := s.calculator.Calculate(sh)
	s.metrics.ObserveCalculation(string(sh.CalculationMethod), s.clock().Sub(start), err)
	return res, err
}
