package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
)

var (
	_ repository.ExpenseCategoryRepository = (*CategoryStore)(nil)
	_ repository.ShipmentEventRepository   = (*EventStore)(nil)
	_ landedcost.PriceSink                 = (*CatalogStore)(nil)
)

// CategoryStore categorías de gasto de solo lectura.
type CategoryStore struct {
	byID map[string]*entity.ExpenseCategory
}

// NewCategoryStore crea el almacén con las categorías dadas.
func NewCategoryStore(cats ...*entity.ExpenseCategory) *CategoryStore {
	st := &CategoryStore{byID: make(map[string]*entity.ExpenseCategory, len(cats))}
	for _, c := range cats {
		cp := *c
		st.byID[c.ID] = &cp
	}
	return st
}

func (st *CategoryStore) GetByID(_ context.Context, id string) (*entity.ExpenseCategory, error) {
	c, ok := st.byID[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (st *CategoryStore) List(_ context.Context) ([]*entity.ExpenseCategory, error) {
	out := make([]*entity.ExpenseCategory, 0, len(st.byID))
	for _, c := range st.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].Name < out[j].Name
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// EventStore registro de eventos en memoria.
type EventStore struct {
	mu     sync.Mutex
	events []*entity.ShipmentEvent
}

// NewEventStore crea el registro vacío.
func NewEventStore() *EventStore { return &EventStore{} }

func (st *EventStore) Record(_ context.Context, ev *entity.ShipmentEvent) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *ev
	st.events = append(st.events, &cp)
	return nil
}

func (st *EventStore) ListByShipment(_ context.Context, shipmentID string) ([]*entity.ShipmentEvent, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []*entity.ShipmentEvent
	for _, ev := range st.events {
		if ev.ShipmentID == shipmentID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CatalogStore catálogo de productos en memoria: guarda el último costo en destino por producto
// y las claves de idempotencia ya aplicadas.
type CatalogStore struct {
	mu      sync.Mutex
	prices  map[string]money.Money
	applied map[string]bool
	failFor map[string]error
}

// NewCatalogStore crea el catálogo vacío.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		prices:  make(map[string]money.Money),
		applied: make(map[string]bool),
		failFor: make(map[string]error),
	}
}

// FailFor hace que las actualizaciones del producto devuelvan err (nil lo desactiva).
func (st *CatalogStore) FailFor(productID string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err == nil {
		delete(st.failFor, productID)
		return
	}
	st.failFor[productID] = err
}

func (st *CatalogStore) SetUnitPrice(_ context.Context, u landedcost.PriceUpdate) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.failFor[u.ProductID]; err != nil {
		return false, err
	}
	if st.applied[u.IdempotencyKey] {
		return false, nil
	}
	st.applied[u.IdempotencyKey] = true
	st.prices[u.ProductID] = u.Amount
	return true, nil
}

// Price último costo en destino recibido para el producto.
func (st *CatalogStore) Price(productID string) (money.Money, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	p, ok := st.prices[productID]
	return p, ok
}
