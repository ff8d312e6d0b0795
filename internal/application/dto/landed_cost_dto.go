package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	applc "github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	calc "github.com/jhoicas/LandedCost-api/internal/domain/landedcost"
)

var hundred = decimal.NewFromInt(100)

// CreateShipmentRequest body para POST /api/shipments.
type CreateShipmentRequest struct {
	Name              string          `json:"name" validate:"required,max=255"`
	ShipmentDate      *time.Time      `json:"shipment_date,omitempty"`
	CalculationMethod string          `json:"calculation_method" validate:"required,oneof=proportional equal weight_based quantity_based"`
	BaseCurrency      string          `json:"base_currency" validate:"required,len=3,alpha"`
	ReferenceCurrency string          `json:"reference_currency,omitempty" validate:"omitempty,len=3,alpha"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
}

// ToInput convierte el request al input del servicio.
func (r CreateShipmentRequest) ToInput(userID string) applc.CreateShipmentInput {
	in := applc.CreateShipmentInput{
		Name:              r.Name,
		CalculationMethod: r.CalculationMethod,
		BaseCurrency:      r.BaseCurrency,
		ReferenceCurrency: r.ReferenceCurrency,
		ExchangeRate:      r.ExchangeRate,
		CreatedBy:         userID,
	}
	if r.ShipmentDate != nil {
		in.ShipmentDate = *r.ShipmentDate
	}
	return in
}

// AddItemRequest body para POST /api/shipments/:id/items.
type AddItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,max=64"`
	ItemName  string          `json:"item_name" validate:"required,max=255"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Weight    decimal.Decimal `json:"weight"`
	Currency  string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// ToInput convierte el request al input del servicio.
func (r AddItemRequest) ToInput() applc.AddItemInput {
	return applc.AddItemInput{
		ProductID: r.ProductID,
		ItemName:  r.ItemName,
		Quantity:  r.Quantity,
		UnitCost:  r.UnitCost,
		Weight:    r.Weight,
		Currency:  r.Currency,
	}
}

// AddSharedCostRequest body para POST /api/shipments/:id/shared-costs.
type AddSharedCostRequest struct {
	ExpenseCategoryID string          `json:"expense_category_id" validate:"required,max=64"`
	Description       string          `json:"description" validate:"max=500"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// ToInput convierte el request al input del servicio.
func (r AddSharedCostRequest) ToInput() applc.AddSharedCostInput {
	return applc.AddSharedCostInput{
		ExpenseCategoryID: r.ExpenseCategoryID,
		Description:       r.Description,
		Amount:            r.Amount,
		Currency:          r.Currency,
	}
}

// ItemOverrideRequest body para PUT /api/shipments/:id/items/:itemId/override.
type ItemOverrideRequest struct {
	ExpenseCategoryID string          `json:"expense_category_id" validate:"required,max=64"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// ToInput convierte el request al input del servicio.
func (r ItemOverrideRequest) ToInput() applc.ItemOverrideInput {
	return applc.ItemOverrideInput{ExpenseCategoryID: r.ExpenseCategoryID, Amount: r.Amount, Currency: r.Currency}
}

// PreviewItemRequest ítem de POST /api/landed-cost/calculate.
type PreviewItemRequest struct {
	ProductID string               `json:"product_id" validate:"required,max=64"`
	ItemName  string               `json:"item_name" validate:"required,max=255"`
	Quantity  decimal.Decimal      `json:"quantity"`
	UnitCost  decimal.Decimal      `json:"unit_cost"`
	Weight    decimal.Decimal      `json:"weight"`
	Override  *ItemOverrideRequest `json:"override,omitempty"`
}

// PreviewRequest body para POST /api/landed-cost/calculate (no guarda nada).
type PreviewRequest struct {
	CalculationMethod string                 `json:"calculation_method" validate:"required,oneof=proportional equal weight_based quantity_based"`
	BaseCurrency      string                 `json:"base_currency" validate:"required,len=3,alpha"`
	ReferenceCurrency string                 `json:"reference_currency,omitempty" validate:"omitempty,len=3,alpha"`
	ExchangeRate      decimal.Decimal        `json:"exchange_rate"`
	Items             []PreviewItemRequest   `json:"items" validate:"required,min=1,dive"`
	SharedCosts       []AddSharedCostRequest `json:"shared_costs" validate:"dive"`
}

// ToInput convierte el request al input del servicio.
func (r PreviewRequest) ToInput() applc.PreviewInput {
	in := applc.PreviewInput{
		CalculationMethod: r.CalculationMethod,
		BaseCurrency:      r.BaseCurrency,
		ReferenceCurrency: r.ReferenceCurrency,
		ExchangeRate:      r.ExchangeRate,
	}
	for _, it := range r.Items {
		p := applc.PreviewItem{
			ProductID: it.ProductID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			Weight:    it.Weight,
		}
		if it.Override != nil {
			ov := it.Override.ToInput()
			p.Override = &ov
		}
		in.Items = append(in.Items, p)
	}
	for _, c := range r.SharedCosts {
		in.SharedCosts = append(in.SharedCosts, c.ToInput())
	}
	return in
}

// ExpenseCategoryResponse categoría de gasto.
type ExpenseCategoryResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	AllowsItemOverride bool   `json:"allows_item_override"`
	SortOrder          int    `json:"sort_order"`
}

// ItemOverrideResponse asignación manual de un ítem.
type ItemOverrideResponse struct {
	ExpenseCategoryID string          `json:"expense_category_id"`
	Amount            decimal.Decimal `json:"amount"`
}

// ShipmentItemResponse ítem del embarque. percentage_share es fracción 0–1;
// percentage_share_pct es el mismo valor ×100 para mostrar.
type ShipmentItemResponse struct {
	ID                  string                `json:"id"`
	ProductID           string                `json:"product_id"`
	ItemName            string                `json:"item_name"`
	Quantity            decimal.Decimal       `json:"quantity"`
	UnitCost            decimal.Decimal       `json:"unit_cost"`
	Weight              decimal.Decimal       `json:"weight"`
	TotalItemCost       decimal.Decimal       `json:"total_item_cost"`
	PercentageShare     decimal.Decimal       `json:"percentage_share"`
	PercentageSharePct  decimal.Decimal       `json:"percentage_share_pct"`
	AllocatedSharedCost decimal.Decimal       `json:"allocated_shared_cost"`
	TotalLandedCost     decimal.Decimal       `json:"total_landed_cost"`
	LandedCostPerUnit   decimal.Decimal       `json:"landed_cost_per_unit"`
	Override            *ItemOverrideResponse `json:"override,omitempty"`
}

// SharedCostResponse costo compartido.
type SharedCostResponse struct {
	ID                string          `json:"id"`
	ExpenseCategoryID string          `json:"expense_category_id"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CalculationSummary resumen del cálculo vigente del embarque.
type CalculationSummary struct {
	CalculationMethod        string          `json:"calculation_method"`
	BaseCurrency             string          `json:"base_currency"`
	ReferenceCurrency        string          `json:"reference_currency"`
	ExchangeRate             decimal.Decimal `json:"exchange_rate"`
	TotalBaseCost            decimal.Decimal `json:"total_base_cost"`
	TotalSharedCost          decimal.Decimal `json:"total_shared_cost"`
	TotalLandedCost          decimal.Decimal `json:"total_landed_cost"`
	TotalLandedCostReference decimal.Decimal `json:"total_landed_cost_reference"`
	ItemCount                int             `json:"item_count"`
	IsCalculated             bool            `json:"is_calculated"`
	CalculatedAt             *time.Time      `json:"calculated_at,omitempty"`
}

// ShipmentResponse embarque completo con ítems, costos y resumen.
type ShipmentResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	ShipmentDate time.Time              `json:"shipment_date"`
	Status       string                 `json:"status"`
	IsFinalized  bool                   `json:"is_finalized"`
	FinalizedAt  *time.Time             `json:"finalized_at,omitempty"`
	Version      int64                  `json:"version"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Summary      CalculationSummary     `json:"summary"`
	Items        []ShipmentItemResponse `json:"items"`
	SharedCosts  []SharedCostResponse   `json:"shared_costs"`
}

// ShipmentListResponse página de embarques.
type ShipmentListResponse struct {
	Shipments []ShipmentResponse `json:"shipments"`
	Page      PageResponse       `json:"page"`
}

// ItemResultResponse resultado por ítem de un cálculo.
type ItemResultResponse struct {
	ItemID                     string              `json:"item_id"`
	ProductID                  string              `json:"product_id"`
	ItemName                   string              `json:"item_name"`
	Quantity                   decimal.Decimal     `json:"quantity"`
	TotalItemCost              decimal.Decimal     `json:"total_item_cost"`
	PercentageShare            decimal.Decimal     `json:"percentage_share"`
	PercentageSharePct         decimal.Decimal     `json:"percentage_share_pct"`
	Overridden                 bool                `json:"overridden"`
	AllocatedSharedCost        decimal.Decimal     `json:"allocated_shared_cost"`
	TotalLandedCost            decimal.Decimal     `json:"total_landed_cost"`
	LandedCostPerUnit          decimal.Decimal     `json:"landed_cost_per_unit"`
	TotalLandedCostReference   decimal.Decimal     `json:"total_landed_cost_reference"`
	LandedCostPerUnitReference decimal.Decimal     `json:"landed_cost_per_unit_reference"`
	Breakdown                  []CostShareResponse `json:"breakdown"`
}

// CostShareResponse parte de una categoría de gasto asignada al ítem.
type CostShareResponse struct {
	ExpenseCategoryID string          `json:"expense_category_id"`
	Amount            decimal.Decimal `json:"amount"`
	IsManualOverride  bool            `json:"is_manual_override"`
}

// ReconciliationResponse invariantes verificados tras el cálculo.
type ReconciliationResponse struct {
	BaseCostBalanced   bool            `json:"base_cost_balanced"`
	SharedCostBalanced bool            `json:"shared_cost_balanced"`
	ItemsBalanced      bool            `json:"items_balanced"`
	LandedCostBalanced bool            `json:"landed_cost_balanced"`
	ShareSum           decimal.Decimal `json:"share_sum"`
	SharesSumToOne     bool            `json:"shares_sum_to_one"`
}

// CalculationResponse respuesta de recalculate y del preview.
type CalculationResponse struct {
	ShipmentID               string                 `json:"shipment_id,omitempty"`
	CalculationMethod        string                 `json:"calculation_method"`
	BaseCurrency             string                 `json:"base_currency"`
	ReferenceCurrency        string                 `json:"reference_currency"`
	ExchangeRate             decimal.Decimal        `json:"exchange_rate"`
	TotalBaseCost            decimal.Decimal        `json:"total_base_cost"`
	TotalSharedCost          decimal.Decimal        `json:"total_shared_cost"`
	OverriddenSharedCost     decimal.Decimal        `json:"overridden_shared_cost"`
	TotalLandedCost          decimal.Decimal        `json:"total_landed_cost"`
	TotalLandedCostReference decimal.Decimal        `json:"total_landed_cost_reference"`
	Items                    []ItemResultResponse   `json:"items"`
	Reconciliation           ReconciliationResponse `json:"reconciliation"`
}

// ShipmentEventResponse evento de trazabilidad del embarque.
type ShipmentEventResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Actor      string          `json:"actor"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToShipmentEventsResponse mapea el historial; nunca devuelve nil para que el JSON sea [].
func ToShipmentEventsResponse(events []*entity.ShipmentEvent) []ShipmentEventResponse {
	out := make([]ShipmentEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, ShipmentEventResponse{
			ID:         ev.ID,
			Type:       ev.Type,
			Actor:      ev.Actor,
			Payload:    ev.Payload,
			OccurredAt: ev.OccurredAt,
		})
	}
	return out
}

// ToExpenseCategoryResponse mapea la entidad.
func ToExpenseCategoryResponse(c *entity.ExpenseCategory) ExpenseCategoryResponse {
	return ExpenseCategoryResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Description:        c.Description,
		AllowsItemOverride: c.AllowsItemOverride,
		SortOrder:          c.SortOrder,
	}
}

// ToShipmentResponse mapea el agregado con su resumen de cálculo.
func ToShipmentResponse(s *entity.Shipment) ShipmentResponse {
	status := "draft"
	if s.IsFinalized {
		status = "finalized"
	}
	out := ShipmentResponse{
		ID:           s.ID,
		Name:         s.Name,
		ShipmentDate: s.ShipmentDate,
		Status:       status,
		IsFinalized:  s.IsFinalized,
		FinalizedAt:  s.FinalizedAt,
		Version:      s.Version,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Summary:      summary(s),
		Items:        make([]ShipmentItemResponse, 0, len(s.Items)),
		SharedCosts:  make([]SharedCostResponse, 0, len(s.SharedCosts)),
	}
	for _, it := range s.Items {
		ir := ShipmentItemResponse{
			ID:                  it.ID,
			ProductID:           it.ProductID,
			ItemName:            it.ItemName,
			Quantity:            it.Quantity,
			UnitCost:            it.UnitCost.Amount,
			Weight:              it.Weight,
			TotalItemCost:       it.TotalItemCost.Amount,
			PercentageShare:     it.PercentageShare,
			PercentageSharePct:  SharePct(it.PercentageShare),
			AllocatedSharedCost: it.AllocatedSharedCost.Amount,
			TotalLandedCost:     it.TotalLandedCost.Amount,
			LandedCostPerUnit:   it.LandedCostPerUnit.Amount,
		}
		if it.Override != nil {
			ir.Override = &ItemOverrideResponse{ExpenseCategoryID: it.Override.ExpenseCategoryID, Amount: it.Override.Amount.Amount}
		}
		out.Items = append(out.Items, ir)
	}
	for _, c := range s.SharedCosts {
		out.SharedCosts = append(out.SharedCosts, SharedCostResponse{
			ID:                c.ID,
			ExpenseCategoryID: c.ExpenseCategoryID,
			Description:       c.Description,
			Amount:            c.Amount.Amount,
			CreatedAt:         c.CreatedAt,
		})
	}
	return out
}

func summary(s *entity.Shipment) CalculationSummary {
	sum := CalculationSummary{
		CalculationMethod: string(s.CalculationMethod),
		BaseCurrency:      s.BaseCurrency,
		ReferenceCurrency: s.ReferenceCurrency,
		ExchangeRate:      s.ExchangeRate,
		TotalBaseCost:     s.TotalBaseCost.Amount,
		TotalSharedCost:   s.TotalSharedCost.Amount,
		TotalLandedCost:   s.TotalLandedCost.Amount,
		ItemCount:         len(s.Items),
		IsCalculated:      s.CalculatedAt != nil,
		CalculatedAt:      s.CalculatedAt,
	}
	if conv, err := s.Converter(); err == nil {
		if ref, err := conv.ToReference(s.TotalLandedCost); err == nil {
			sum.TotalLandedCostReference = ref.RoundToMinor().Amount
		}
	}
	return sum
}

// ToCalculationResponse mapea el resultado del calculador.
func ToCalculationResponse(r *calc.CalculationResult, persisted bool) CalculationResponse {
	out := CalculationResponse{
		CalculationMethod:        string(r.Method),
		BaseCurrency:             r.BaseCurrency,
		ReferenceCurrency:        r.ReferenceCurrency,
		ExchangeRate:             r.ExchangeRate,
		TotalBaseCost:            r.TotalBaseCost.Amount,
		TotalSharedCost:          r.TotalSharedCost.Amount,
		OverriddenSharedCost:     r.Pool.Overridden.Amount,
		TotalLandedCost:          r.TotalLandedCost.Amount,
		TotalLandedCostReference: r.TotalLandedCostReference.Amount,
		Items:                    make([]ItemResultResponse, 0, len(r.Items)),
		Reconciliation: ReconciliationResponse{
			BaseCostBalanced:   r.Reconciliation.BaseCostBalanced,
			SharedCostBalanced: r.Reconciliation.SharedCostBalanced,
			ItemsBalanced:      r.Reconciliation.ItemsBalanced,
			LandedCostBalanced: r.Reconciliation.LandedCostBalanced,
			ShareSum:           r.Reconciliation.ShareSum,
			SharesSumToOne:     r.Reconciliation.SharesSumToOne,
		},
	}
	if persisted {
		out.ShipmentID = r.ShipmentID
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, ItemResultResponse{
			ItemID:                     it.ItemID,
			ProductID:                  it.ProductID,
			ItemName:                   it.ItemName,
			Quantity:                   it.Quantity,
			TotalItemCost:              it.TotalItemCost.Amount,
			PercentageShare:            it.PercentageShare,
			PercentageSharePct:         SharePct(it.PercentageShare),
			Overridden:                 it.Overridden,
			AllocatedSharedCost:        it.AllocatedSharedCost.Amount,
			TotalLandedCost:            it.TotalLandedCost.Amount,
			LandedCostPerUnit:          it.LandedCostPerUnit.Amount,
			TotalLandedCostReference:   it.TotalLandedCostReference.Amount,
			LandedCostPerUnitReference: it.LandedCostPerUnitReference.Amount,
			Breakdown:                  toCostShares(it.Breakdown),
		})
	}
	return out
}

func toCostShares(in []calc.CostShare) []CostShareResponse {
	out := make([]CostShareResponse, 0, len(in))
	for _, cs := range in {
		out = append(out, CostShareResponse{
			ExpenseCategoryID: cs.ExpenseCategoryID,
			Amount:            cs.Amount.Amount,
			IsManualOverride:  cs.Manual,
		})
	}
	return out
}

// SharePct convierte la fracción 0–1 a porcentaje con 4 decimales (solo presentación).
func SharePct(share decimal.Decimal) decimal.Decimal {
	return share.Mul(hundred).Round(4)
}
