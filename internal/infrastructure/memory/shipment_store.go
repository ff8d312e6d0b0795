// Package memory implementa los puertos de persistencia en memoria (STORAGE_DRIVER=memory y
// tests). Los agregados se guardan como copias profundas; ningún llamador comparte punteros con
// el almacén.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
)

var (
	_ repository.ShipmentRepository = (*ShipmentStore)(nil)
	_ landedcost.TxRunner           = (*ShipmentStore)(nil)
)

// ShipmentStore almacén de embarques con transacciones serializadas.
type ShipmentStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data map[string]*entity.Shipment
}

// NewShipmentStore crea el almacén vacío.
func NewShipmentStore() *ShipmentStore {
	return &ShipmentStore{data: make(map[string]*entity.Shipment)}
}

// Create guarda un embarque nuevo con versión 1.
func (st *ShipmentStore) Create(_ context.Context, s *entity.Shipment) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.data[s.ID]; ok {
		return fmt.Errorf("%w: embarque %s duplicado", domain.ErrInvalidInput, s.ID)
	}
	s.Version = 1
	st.data[s.ID] = s.Clone()
	return nil
}

// GetByID devuelve una copia del embarque.
func (st *ShipmentStore) GetByID(_ context.Context, id string) (*entity.Shipment, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.data[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	return s.Clone(), nil
}

// GetForUpdate fuera de una transacción equivale a GetByID.
func (st *ShipmentStore) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return st.GetByID(ctx, id)
}

// Save guarda el embarque si la versión coincide e incrementa s.Version.
func (st *ShipmentStore) Save(_ context.Context, s *entity.Shipment) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.saveLocked(s)
}

func (st *ShipmentStore) saveLocked(s *entity.Shipment) error {
	cur, ok := st.data[s.ID]
	if !ok {
		return domain.ErrShipmentNotFound
	}
	if cur.Version != s.Version {
		return domain.ErrConcurrentModification
	}
	s.Version++
	st.data[s.ID] = s.Clone()
	return nil
}

// List devuelve la página pedida, más recientes primero.
func (st *ShipmentStore) List(_ context.Context, limit, offset int) ([]*entity.Shipment, int, error) {
	st.mu.RLock()
	all := make([]*entity.Shipment, 0, len(st.data))
	for _, s := range st.data {
		all = append(all, s.Clone())
	}
	st.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := len(all)
	if offset >= total {
		return []*entity.Shipment{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Delete elimina el embarque con sus ítems y costos.
func (st *ShipmentStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.data[id]; !ok {
		return domain.ErrShipmentNotFound
	}
	delete(st.data, id)
	return nil
}

// Run ejecuta fn con un repositorio transaccional: las escrituras se acumulan y se aplican juntas
// solo si fn no devuelve error. Las transacciones se serializan entre sí.
func (st *ShipmentStore) Run(ctx context.Context, fn func(shipments repository.ShipmentRepository) error) error {
	st.txMu.Lock()
	defer st.txMu.Unlock()

	tx := &shipmentTx{store: st, staged: make(map[string]*entity.Shipment), deleted: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for id := range tx.deleted {
		delete(st.data, id)
	}
	for id, s := range tx.staged {
		st.data[id] = s
	}
	return nil
}

// shipmentTx vista transaccional del almacén.
type shipmentTx struct {
	store   *ShipmentStore
	staged  map[string]*entity.Shipment
	deleted map[string]bool
}

func (tx *shipmentTx) current(id string) (*entity.Shipment, bool) {
	if tx.deleted[id] {
		return nil, false
	}
	if s, ok := tx.staged[id]; ok {
		return s, true
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	s, ok := tx.store.data[id]
	return s, ok
}

func (tx *shipmentTx) Create(_ context.Context, s *entity.Shipment) error {
	if _, ok := tx.current(s.ID); ok {
		return fmt.Errorf("%w: embarque %s duplicado", domain.ErrInvalidInput, s.ID)
	}
	s.Version = 1
	delete(tx.deleted, s.ID)
	tx.staged[s.ID] = s.Clone()
	return nil
}

func (tx *shipmentTx) GetByID(_ context.Context, id string) (*entity.Shipment, error) {
	s, ok := tx.current(id)
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	return s.Clone(), nil
}

func (tx *shipmentTx) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return tx.GetByID(ctx, id)
}

func (tx *shipmentTx) Save(_ context.Context, s *entity.Shipment) error {
	cur, ok := tx.current(s.ID)
	if !ok {
		return domain.ErrShipmentNotFound
	}
	if cur.Version != s.Version {
		return domain.ErrConcurrentModification
	}
	s.Version++
	tx.staged[s.ID] = s.Clone()
	return nil
}

func (tx *shipmentTx) List(ctx context.Context, limit, offset int) ([]*entity.Shipment, int, error) {
	return tx.store.List(ctx, limit, offset)
}

func (tx *shipmentTx) Delete(_ context.Context, id string) error {
	if _, ok := tx.current(id); !ok {
		return domain.ErrShipmentNotFound
	}
	delete(tx.staged, id)
	tx.deleted[id] = true
	return nil
}
