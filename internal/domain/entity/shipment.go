package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// CalculationMethod método de reparto del pool de costos compartidos.
type CalculationMethod string

// Métodos de cálculo soportados.
const (
	MethodProportional  CalculationMethod = "proportional"   // por valor (costo total del ítem)
	MethodEqual         CalculationMethod = "equal"          // partes iguales
	MethodWeightBased   CalculationMethod = "weight_based"   // por peso
	MethodQuantityBased CalculationMethod = "quantity_based" // por cantidad de unidades
)

// ParseCalculationMethod valida el método recibido desde la API o la BD.
func ParseCalculationMethod(s string) (CalculationMethod, error) {
	switch m := CalculationMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodProportional, MethodEqual, MethodWeightBased, MethodQuantityBased:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidMethod, s)
}

// Shipment agregado raíz: embarque con sus ítems y costos compartidos (composición).
// Se crea en borrador (IsFinalized = false); al finalizar los valores calculados quedan congelados.
//
// ExchangeRate = unidades de BaseCurrency por 1 unidad de ReferenceCurrency.
type Shipment struct {
	ID                string
	Name              string
	ShipmentDate      time.Time
	CalculationMethod CalculationMethod
	BaseCurrency      string
	ReferenceCurrency string
	ExchangeRate      decimal.Decimal
	TotalBaseCost     money.Money
	TotalSharedCost   money.Money
	TotalLandedCost   money.Money
	IsFinalized       bool
	FinalizedAt       *time.Time
	CalculatedAt      *time.Time // nil = sin cálculo vigente (cualquier edición lo invalida)
	Version           int64      // control optimista de concurrencia
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []*ShipmentItem
	SharedCosts       []*SharedCost
}

// NewShipmentParams datos para crear un embarque en borrador.
type NewShipmentParams struct {
	ID                string
	Name              string
	ShipmentDate      time.Time
	CalculationMethod CalculationMethod
	BaseCurrency      string
	ReferenceCurrency string
	ExchangeRate      decimal.Decimal
	CreatedBy         string
}

// NewShipment valida los parámetros y devuelve el embarque vacío en estado Draft.
func NewShipment(p NewShipmentParams, now time.Time) (*Shipment, error) {
	if strings.TrimSpace(p.Name) == "" || p.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	method, err := ParseCalculationMethod(string(p.CalculationMethod))
	if err != nil {
		return nil, err
	}
	base, err := money.NormalizeCurrency(p.BaseCurrency)
	if err != nil {
		return nil, err
	}
	ref, err := money.NormalizeCurrency(p.ReferenceCurrency)
	if err != nil {
		return nil, err
	}
	if _, err := money.NewConverter(base, ref, p.ExchangeRate); err != nil {
		return nil, err
	}
	return &Shipment{
		ID:                p.ID,
		Name:              strings.TrimSpace(p.Name),
		ShipmentDate:      p.ShipmentDate,
		CalculationMethod: method,
		BaseCurrency:      base,
		ReferenceCurrency: ref,
		ExchangeRate:      p.ExchangeRate,
		TotalBaseCost:     money.Zero(base),
		TotalSharedCost:   money.Zero(base),
		TotalLandedCost:   money.Zero(base),
		CreatedBy:         p.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Converter devuelve el conversor base → referencia del embarque.
func (s *Shipment) Converter() (money.Converter, error) {
	return money.NewConverter(s.BaseCurrency, s.ReferenceCurrency, s.ExchangeRate)
}

// EnsureDraft falla con ErrShipmentFinalized si el embarque ya no admite cambios.
func (s *Shipment) EnsureDraft() error {
	if s.IsFinalized {
		return domain.ErrShipmentFinalized
	}
	return nil
}

// Item busca un ítem por ID.
func (s *Shipment) Item(id string) (*ShipmentItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// AddItem agrega un ítem (solo Draft). El costo unitario debe estar en la moneda base.
func (s *Shipment) AddItem(item *ShipmentItem, now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	if item.UnitCost.Currency != s.BaseCurrency {
		return fmt.Errorf("%w: el ítem está en %s y el embarque en %s", domain.ErrCurrencyMismatch, item.UnitCost.Currency, s.BaseCurrency)
	}
	item.ShipmentID = s.ID
	s.Items = append(s.Items, item)
	s.touch(now)
	return nil
}

// RemoveItem elimina un ítem (solo Draft).
func (s *Shipment) RemoveItem(itemID string, now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	for i, it := range s.Items {
		if it.ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.touch(now)
			return nil
		}
	}
	return domain.ErrItemNotFound
}

// AddSharedCost agrega un costo compartido (solo Draft).
func (s *Shipment) AddSharedCost(cost *SharedCost, now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	if cost.Amount.Currency != s.BaseCurrency {
		return fmt.Errorf("%w: el costo está en %s y el embarque en %s", domain.ErrCurrencyMismatch, cost.Amount.Currency, s.BaseCurrency)
	}
	cost.ShipmentID = s.ID
	s.SharedCosts = append(s.SharedCosts, cost)
	s.touch(now)
	return nil
}

// RemoveSharedCost elimina un costo compartido (solo Draft).
func (s *Shipment) RemoveSharedCost(costID string, now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	for i, c := range s.SharedCosts {
		if c.ID == costID {
			s.SharedCosts = append(s.SharedCosts[:i], s.SharedCosts[i+1:]...)
			s.touch(now)
			return nil
		}
	}
	return domain.ErrSharedCostNotFound
}

// SetItemOverride fija a mano el costo compartido asignado a un ítem. La validación de que la
// categoría admite override la hace el caso de uso contra el catálogo de categorías.
func (s *Shipment) SetItemOverride(itemID string, override ItemOverride, now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	item, ok := s.Item(itemID)
	if !ok {
		return domain.ErrItemNotFound
	}
	if override.Amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	if override.Amount.Currency != s.BaseCurrency {
		return domain.ErrCurrencyMismatch
	}
	ov := ItemOverride{ExpenseCategoryID: override.ExpenseCategoryID, Amount: override.Amount.RoundToMinor()}
	item.Override = &ov
	s.touch(now)
	return nil
}

// ClearItemOverride vuelve el ítem al reparto automático.
func (s *Shipment) ClearItemOverride(itemID string, now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	item, ok := s.Item(itemID)
	if !ok {
		return domain.ErrItemNotFound
	}
	item.Override = nil
	s.touch(now)
	return nil
}

// MarkCalculated registra que los campos calculados están vigentes.
func (s *Shipment) MarkCalculated(now time.Time) {
	t := now
	s.CalculatedAt = &t
	s.UpdatedAt = now
}

// Finalize pasa Draft → Finalized. Requiere un cálculo vigente.
func (s *Shipment) Finalize(now time.Time) error {
	if err := s.EnsureDraft(); err != nil {
		return err
	}
	if s.CalculatedAt == nil {
		return domain.ErrNotCalculated
	}
	t := now
	s.IsFinalized = true
	s.FinalizedAt = &t
	s.UpdatedAt = now
	return nil
}

// Clone copia profunda del agregado (los cálculos trabajan sobre copias: todo o nada).
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	c := *s
	c.FinalizedAt = cloneTime(s.FinalizedAt)
	c.CalculatedAt = cloneTime(s.CalculatedAt)
	c.Items = make([]*ShipmentItem, len(s.Items))
	for i, it := range s.Items {
		c.Items[i] = it.Clone()
	}
	c.SharedCosts = make([]*SharedCost, len(s.SharedCosts))
	for i, sc := range s.SharedCosts {
		cp := *sc
		c.SharedCosts[i] = &cp
	}
	return &c
}

// touch invalida el cálculo vigente tras cualquier edición.
func (s *Shipment) touch(now time.Time) {
	s.CalculatedAt = nil
	s.UpdatedAt = now
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
