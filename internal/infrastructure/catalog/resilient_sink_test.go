package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/memory"
)

// flakySink falla las primeras failures llamadas.
type flakySink struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakySink) SetUnitPrice(context.Context, landedcost.PriceUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return false, errors.New("503 catálogo")
	}
	return true, nil
}

type stateSpy struct {
	mu          sync.Mutex
	transitions []string
}

func (s *stateSpy) BreakerStateChanged(_ string, from, to gobreaker.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, from.String()+"->"+to.String())
}

func update() landedcost.PriceUpdate {
	return landedcost.PriceUpdate{IdempotencyKey: "k", ProductID: "p1", Amount: money.New(decimal.NewFromInt(11), "USD")}
}

func newSink(next landedcost.PriceSink, cfg Config, spy StateObserver) *ResilientSink {
	s := NewResilientSink(next, cfg, nil, spy)
	s.sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func TestResilientSink_ReintentaHastaExito(t *testing.T) {
	next := &flakySink{failures: 2}
	s := newSink(next, Config{RetryAttempts: 3, FailureThreshold: 10}, nil)

	applied, err := s.SetUnitPrice(context.Background(), update())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 3, next.calls)
}

func TestResilientSink_AgotaReintentos(t *testing.T) {
	next := &flakySink{failures: 100}
	s := newSink(next, Config{RetryAttempts: 2, FailureThreshold: 10}, nil)

	_, err := s.SetUnitPrice(context.Background(), update())
	assert.ErrorIs(t, err, domain.ErrPriceSink)
	assert.ErrorIs(t, err, domain.ErrCollaborator)
	assert.Equal(t, 2, next.calls)
}

func TestResilientSink_BreakerAbiertoCortaTrafico(t *testing.T) {
	next := &flakySink{failures: 100}
	spy := &stateSpy{}
	s := newSink(next, Config{RetryAttempts: 1, FailureThreshold: 2, OpenTimeout: time.Minute}, spy)
	ctx := context.Background()

	_, _ = s.SetUnitPrice(ctx, update())
	_, _ = s.SetUnitPrice(ctx, update())
	assert.Equal(t, gobreaker.StateOpen, s.State())

	_, err := s.SetUnitPrice(ctx, update())
	assert.ErrorIs(t, err, domain.ErrPriceSink)
	assert.Equal(t, 2, next.calls, "con el breaker abierto no se llama al catálogo")
	assert.Equal(t, []string{"closed->open"}, spy.transitions)
}

// countingSink cuenta las llamadas al catálogo por producto.
type countingSink struct {
	next  landedcost.PriceSink
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingSink) SetUnitPrice(ctx context.Context, u landedcost.PriceUpdate) (bool, error) {
	c.mu.Lock()
	c.calls[u.ProductID]++
	c.mu.Unlock()
	return c.next.SetUnitPrice(ctx, u)
}

func TestResilientSink_ProductoInexistenteNoAbreElBreaker(t *testing.T) {
	store := memory.NewCatalogStore()
	store.FailFor("p1", domain.ErrProductNotFound)
	store.FailFor("p2", domain.ErrProductNotFound)
	next := &countingSink{next: store, calls: map[string]int{}}
	s := newSink(next, DefaultConfig(), nil)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		u := update()
		u.ProductID, u.IdempotencyKey = id, "k-"+id
		_, err := s.SetUnitPrice(ctx, u)
		assert.ErrorIs(t, err, domain.ErrPriceSink)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Equal(t, 1, next.calls[id], "un error permanente no se reintenta")
	}
	assert.Equal(t, gobreaker.StateClosed, s.State())

	u := update()
	u.ProductID, u.IdempotencyKey = "p3", "k-p3"
	applied, err := s.SetUnitPrice(ctx, u)
	require.NoError(t, err)
	assert.True(t, applied)
	price, ok := store.Price("p3")
	require.True(t, ok)
	assert.True(t, price.Amount.Equal(decimal.NewFromInt(11)))
}
