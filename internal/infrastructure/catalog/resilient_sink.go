// Package catalog protege el envío de costos al catálogo de productos con reintentos y un
// circuit breaker (sony/gobreaker).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/pkg/logger"
)

var _ landedcost.PriceSink = (*ResilientSink)(nil)

// Config parámetros de resiliencia.
type Config struct {
	Name             string
	RetryAttempts    int           // intentos por actualización (>= 1)
	RetryDelay       time.Duration // espera inicial entre intentos; se duplica en cada uno
	MaxRetryDelay    time.Duration
	FailureThreshold uint32        // fallos consecutivos que abren el breaker
	OpenTimeout      time.Duration // tiempo en abierto antes de pasar a half-open
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		Name:             "catalog",
		RetryAttempts:    3,
		RetryDelay:       100 * time.Millisecond,
		MaxRetryDelay:    2 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// StateObserver recibe los cambios de estado del breaker (métricas).
type StateObserver interface {
	BreakerStateChanged(name string, from, to gobreaker.State)
}

// ResilientSink decora un PriceSink: reintenta con backoff exponencial y corta el tráfico mientras
// el breaker está abierto. Los errores salen envueltos en domain.ErrPriceSink.
type ResilientSink struct {
	next  landedcost.PriceSink
	cb    *gobreaker.CircuitBreaker
	cfg   Config
	log   *logger.Logger
	sleep func(context.Context, time.Duration) error
}

// NewResilientSink construye el decorador. observer puede ser nil.
func NewResilientSink(next landedcost.PriceSink, cfg Config, log *logger.Logger, observer StateObserver) *ResilientSink {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = def.RetryAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = def.MaxRetryDelay
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("catalog_sink")

	threshold := cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Los errores permanentes no cuentan como fallo del catálogo.
		IsSuccessful: func(err error) bool {
			return err == nil || permanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
			if observer != nil {
				observer.BreakerStateChanged(name, from, to)
			}
		},
	}
	return &ResilientSink{
		next:  next,
		cb:    gobreaker.NewCircuitBreaker(settings),
		cfg:   cfg,
		log:   log,
		sleep: sleepCtx,
	}
}

// SetUnitPrice envía la actualización con reintentos a través del breaker.
func (s *ResilientSink) SetUnitPrice(ctx context.Context, u landedcost.PriceUpdate) (bool, error) {
	delay := s.cfg.RetryDelay
	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		out, err := s.cb.Execute(func() (interface{}, error) {
			return s.next.SetUnitPrice(ctx, u)
		})
		if err == nil {
			applied, _ := out.(bool)
			return applied, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: circuit breaker %s abierto", domain.ErrPriceSink, s.cfg.Name)
		}
		if permanent(err) {
			return false, fmt.Errorf("%w: %w", domain.ErrPriceSink, err)
		}
		lastErr = err
		if attempt == s.cfg.RetryAttempts {
			break
		}
		s.log.Debug().Err(err).Int("attempt", attempt).Str("product_id", u.ProductID).Msg("reintentando actualización de precio")
		if err := s.sleep(ctx, delay); err != nil {
			return false, fmt.Errorf("%w: %v", domain.ErrPriceSink, err)
		}
		delay *= 2
		if delay > s.cfg.MaxRetryDelay {
			delay = s.cfg.MaxRetryDelay
		}
	}
	return false, fmt.Errorf("%w: %d intentos: %v", domain.ErrPriceSink, s.cfg.RetryAttempts, lastErr)
}

// permanent errores que no se corrigen reintentando: el producto no existe o el dato es inválido.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation)
}

// State estado actual del breaker.
func (s *ResilientSink) State() gobreaker.State {
	return s.cb.State()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
