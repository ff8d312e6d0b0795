// Package lock implementa la sección exclusiva por embarque: en proceso (LocalLocker) o
// distribuida sobre Redis (RedisLocker).
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/LandedCost-api/internal/domain"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker candado por clave dentro del proceso. Espera hasta Wait a que se libere; si no,
// devuelve domain.ErrConcurrentModification. Wait = 0 no espera.
type LocalLocker struct {
	Wait time.Duration

	mu    sync.Mutex
	locks map[string]*entry
}

// NewLocalLocker construye el candado local.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{Wait: wait, locks: make(map[string]*entry)}
}

// WithLock ejecuta fn con la clave tomada.
func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	e := l.acquireRef(key)
	defer l.releaseRef(key)

	if err := l.wait(ctx, e); err != nil {
		return err
	}
	defer func() { <-e.ch }()
	return fn(ctx)
}

func (l *LocalLocker) wait(ctx context.Context, e *entry) error {
	if l.Wait <= 0 {
		select {
		case e.ch <- struct{}{}:
			return nil
		default:
			return domain.ErrConcurrentModification
		}
	}
	timer := time.NewTimer(l.Wait)
	defer timer.Stop()
	select {
	case e.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrConcurrentModification
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *LocalLocker) acquireRef(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*entry)
	}
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) releaseRef(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.locks[key]; ok {
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
	}
}
