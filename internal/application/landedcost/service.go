// Package landedcost orquesta el ciclo de vida del embarque (Draft → Finalized): ediciones bajo
// candado por embarque y transacción, recálculo, finalización y envío de costos al catálogo.
package landedcost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	calc "github.com/jhoicas/LandedCost-api/internal/domain/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
	"github.com/jhoicas/LandedCost-api/pkg/logger"
)

// Paginación por defecto del listado de embarques.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Config parámetros del servicio.
type Config struct {
	ReferenceCurrency string // moneda de referencia cuando la petición no la indica
	CatalogCurrency   string // moneda en que el catálogo recibe el costo unitario; vacío = referencia del embarque
}

// Deps colaboradores del servicio.
type Deps struct {
	Shipments  repository.ShipmentRepository
	Tx         TxRunner
	Locker     ShipmentLocker
	Categories CategoryLookup
	Prices     PriceSink
	Events     EventSink
	Metrics    Recorder
	Log        *logger.Logger
	Clock      func() time.Time
	NewID      func() string
	Config     Config
}

// Service casos de uso del motor de costo en destino.
type Service struct {
	shipments  repository.ShipmentRepository
	tx         TxRunner
	locker     ShipmentLocker
	categories CategoryLookup
	prices     PriceSink
	events     EventSink
	metrics    Recorder
	log        *logger.Logger
	clock      func() time.Time
	newID      func() string
	cfg        Config
	calculator *calc.Calculator
}

// NewService construye el servicio. Metrics, Log, Clock y NewID son opcionales.
func NewService(d Deps) *Service {
	s := &Service{
		shipments:  d.Shipments,
		tx:         d.Tx,
		locker:     d.Locker,
		categories: d.Categories,
		prices:     d.Prices,
		events:     d.Events,
		metrics:    d.Metrics,
		log:        d.Log,
		clock:      d.Clock,
		newID:      d.NewID,
		cfg:        d.Config,
		calculator: calc.NewCalculator(),
	}
	if s.metrics == nil {
		s.metrics = NopRecorder{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.cfg.ReferenceCurrency == "" {
		s.cfg.ReferenceCurrency = "USD"
	}
	return s
}

// CreateShipmentInput datos de un embarque nuevo. Los montos posteriores se expresan en
// BaseCurrency; ExchangeRate = unidades de BaseCurrency por 1 de ReferenceCurrency.
type CreateShipmentInput struct {
	Name              string
	ShipmentDate      time.Time
	CalculationMethod string
	BaseCurrency      string
	ReferenceCurrency string
	ExchangeRate      decimal.Decimal
	CreatedBy         string
}

// AddItemInput ítem a agregar. Currency vacío = moneda base del embarque.
type AddItemInput struct {
	ProductID string
	ItemName  string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Weight    decimal.Decimal
	Currency  string
}

// AddSharedCostInput costo compartido a agregar. Currency vacío = moneda base del embarque.
type AddSharedCostInput struct {
	ExpenseCategoryID string
	Description       string
	Amount            decimal.Decimal
	Currency          string
}

// ItemOverrideInput asignación manual del costo compartido de un ítem.
type ItemOverrideInput struct {
	ExpenseCategoryID string
	Amount            decimal.Decimal
	Currency          string
}

// CreateShipment crea un embarque en borrador.
func (s *Service) CreateShipment(ctx context.Context, in CreateShipmentInput) (*entity.Shipment, error) {
	ref := in.ReferenceCurrency
	if strings.TrimSpace(ref) == "" {
		ref = s.cfg.ReferenceCurrency
	}
	date := in.ShipmentDate
	if date.IsZero() {
		date = s.clock()
	}
	sh, err := entity.NewShipment(entity.NewShipmentParams{
		ID:                s.newID(),
		Name:              in.Name,
		ShipmentDate:      date,
		CalculationMethod: entity.CalculationMethod(in.CalculationMethod),
		BaseCurrency:      in.BaseCurrency,
		ReferenceCurrency: ref,
		ExchangeRate:      in.ExchangeRate,
		CreatedBy:         in.CreatedBy,
	}, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.shipments.Create(ctx, sh); err != nil {
		return nil, err
	}
	s.log.Shipment(sh.ID).Info().
		Str("method", string(sh.CalculationMethod)).
		Str("base_currency", sh.BaseCurrency).
		Str("reference_currency", sh.ReferenceCurrency).
		Msg("embarque creado")
	return sh, nil
}

// GetShipment devuelve el embarque con ítems y costos compartidos.
func (s *Service) GetShipment(ctx context.Context, id string) (*entity.Shipment, error) {
	return s.shipments.GetByID(ctx, id)
}

// ListEvents historial de eventos del embarque en orden de ocurrencia. Sin EventSink configurado
// devuelve una lista vacía.
func (s *Service) ListEvents(ctx context.Context, shipmentID string) ([]*entity.ShipmentEvent, error) {
	if _, err := s.shipments.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	if s.events == nil {
		return nil, nil
	}
	return s.events.ListByShipment(ctx, shipmentID)
}

// ListShipments listado paginado (más recientes primero) y total de registros.
func (s *Service) ListShipments(ctx context.Context, limit, offset int) ([]*entity.Shipment, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.shipments.List(ctx, limit, offset)
}

// ListCategories categorías de gasto disponibles.
func (s *Service) ListCategories(ctx context.Context) ([]*entity.ExpenseCategory, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCategoryLookup, err)
	}
	return cats, nil
}

// AddItem agrega un ítem al embarque (solo Draft).
func (s *Service) AddItem(ctx context.Context, shipmentID string, in AddItemInput) (*entity.Shipment, error) {
	itemID := s.newID()
	return s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		if err := sh.EnsureDraft(); err != nil {
			return err
		}
		cur, err := currencyOr(in.Currency, sh.BaseCurrency)
		if err != nil {
			return err
		}
		item, err := entity.NewShipmentItem(itemID, in.ProductID, in.ItemName, in.Quantity, money.New(in.UnitCost, cur), in.Weight)
		if err != nil {
			return err
		}
		return sh.AddItem(item, now)
	})
}

// RemoveItem quita un ítem del embarque (solo Draft).
func (s *Service) RemoveItem(ctx context.Context, shipmentID, itemID string) (*entity.Shipment, error) {
	return s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		return sh.RemoveItem(itemID, now)
	})
}

// AddSharedCost agrega un costo compartido (solo Draft). La categoría debe existir.
func (s *Service) AddSharedCost(ctx context.Context, shipmentID string, in AddSharedCostInput) (*entity.Shipment, error) {
	if _, err := s.category(ctx, in.ExpenseCategoryID); err != nil {
		return nil, err
	}
	costID := s.newID()
	return s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		if err := sh.EnsureDraft(); err != nil {
			return err
		}
		cur, err := currencyOr(in.Currency, sh.BaseCurrency)
		if err != nil {
			return err
		}
		cost, err := entity.NewSharedCost(costID, in.ExpenseCategoryID, in.Description, money.New(in.Amount, cur), now)
		if err != nil {
			return err
		}
		return sh.AddSharedCost(cost, now)
	})
}

// RemoveSharedCost quita un costo compartido (solo Draft).
func (s *Service) RemoveSharedCost(ctx context.Context, shipmentID, costID string) (*entity.Shipment, error) {
	return s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		return sh.RemoveSharedCost(costID, now)
	})
}

// SetItemOverride fija a mano el costo compartido de un ítem. Solo categorías con
// AllowsItemOverride lo admiten.
func (s *Service) SetItemOverride(ctx context.Context, shipmentID, itemID string, in ItemOverrideInput) (*entity.Shipment, error) {
	cat, err := s.category(ctx, in.ExpenseCategoryID)
	if err != nil {
		return nil, err
	}
	if !cat.AllowsItemOverride {
		return nil, fmt.Errorf("%w: %s", domain.ErrOverrideNotAllowed, cat.Name)
	}
	return s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		if err := sh.EnsureDraft(); err != nil {
			return err
		}
		cur, err := currencyOr(in.Currency, sh.BaseCurrency)
		if err != nil {
			return err
		}
		return sh.SetItemOverride(itemID, entity.ItemOverride{
			ExpenseCategoryID: cat.ID,
			Amount:            money.New(in.Amount, cur),
		}, now)
	})
}

// ClearItemOverride devuelve el ítem al reparto automático.
func (s *Service) ClearItemOverride(ctx context.Context, shipmentID, itemID string) (*entity.Shipment, error) {
	return s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		return sh.ClearItemOverride(itemID, now)
	})
}

// Recalculate ejecuta el calculador y guarda los resultados. Todo o nada: si el cálculo falla el
// embarque queda como estaba.
func (s *Service) Recalculate(ctx context.Context, shipmentID string) (*entity.Shipment, *calc.CalculationResult, error) {
	var result *calc.CalculationResult
	var method string
	start := s.clock()
	sh, err := s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		method = string(sh.CalculationMethod)
		res, err := s.calculator.Calculate(sh)
		if err != nil {
			return err
		}
		if err := res.ApplyTo(sh, now); err != nil {
			return err
		}
		result = res
		return nil
	})
	elapsed := s.clock().Sub(start)
	s.metrics.ObserveCalculation(method, elapsed, err)
	log := s.log.Shipment(shipmentID)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Msg("cálculo rechazado")
		return nil, nil, err
	}
	log.Info().
		Str("method", method).
		Int("items", len(sh.Items)).
		Str("total_landed_cost", sh.TotalLandedCost.String()).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("costo en destino calculado")
	return sh, result, nil
}

// Finalize congela el embarque. Requiere un cálculo vigente.
func (s *Service) Finalize(ctx context.Context, shipmentID, actor string) (*entity.Shipment, error) {
	sh, err := s.mutate(ctx, shipmentID, func(sh *entity.Shipment, now time.Time) error {
		return sh.Finalize(now)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ShipmentFinalized()
	s.record(ctx, sh.ID, entity.EventShipmentFinalized, actor, map[string]any{
		"total_landed_cost": sh.TotalLandedCost,
		"items":             len(sh.Items),
	})
	s.log.Shipment(sh.ID).Info().Str("actor", actor).Msg("embarque finalizado")
	return sh, nil
}

// DeleteShipment elimina un embarque en borrador con sus ítems y costos.
func (s *Service) DeleteShipment(ctx context.Context, shipmentID string) error {
	return s.locker.WithLock(ctx, shipmentID, func(ctx context.Context) error {
		return s.tx.Run(ctx, func(repo repository.ShipmentRepository) error {
			sh, err := repo.GetForUpdate(ctx, shipmentID)
			if err != nil {
				return err
			}
			if err := sh.EnsureDraft(); err != nil {
				return err
			}
			return repo.Delete(ctx, shipmentID)
		})
	})
}

// mutate carga el embarque bajo candado y SELECT FOR UPDATE, aplica fn y guarda con control de
// versión. Si fn falla no se persiste nada.
func (s *Service) mutate(ctx context.Context, shipmentID string, fn func(sh *entity.Shipment, now time.Time) error) (*entity.Shipment, error) {
	var out *entity.Shipment
	err := s.locker.WithLock(ctx, shipmentID, func(ctx context.Context) error {
		return s.tx.Run(ctx, func(repo repository.ShipmentRepository) error {
			sh, err := repo.GetForUpdate(ctx, shipmentID)
			if err != nil {
				return err
			}
			if err := fn(sh, s.clock()); err != nil {
				return err
			}
			if err := repo.Save(ctx, sh); err != nil {
				return err
			}
			out = sh
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) category(ctx context.Context, id string) (*entity.ExpenseCategory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: categoría de gasto requerida", domain.ErrInvalidInput)
	}
	cat, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCategoryLookup, err)
	}
	if cat == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return cat, nil
}

func currencyOr(code, fallback string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return fallback, nil
	}
	return money.NormalizeCurrency(code)
}
