package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo persistencia del agregado embarque (cabecera, ítems y costos compartidos).
// Usable con pool o tx; GetForUpdate solo bloquea la fila dentro de una transacción.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

const shipmentColumns = `id, name, shipment_date, calculation_method, base_currency, reference_currency,
	exchange_rate, total_base_cost, total_shared_cost, total_landed_cost, is_finalized, finalized_at,
	calculated_at, version, created_by, created_at, updated_at`

// Create inserta el embarque con versión 1.
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	query := `
		INSERT INTO shipments (` + shipmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.ShipmentDate, string(s.CalculationMethod), s.BaseCurrency, s.ReferenceCurrency,
		s.ExchangeRate, s.TotalBaseCost.Amount, s.TotalSharedCost.Amount, s.TotalLandedCost.Amount,
		s.IsFinalized, s.FinalizedAt, s.CalculatedAt, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: embarque %s duplicado", domain.ErrInvalidInput, s.ID)
		}
		return translateWriteError("insert shipment", err)
	}
	s.Version = 1
	return r.writeChildren(ctx, s)
}

// GetByID carga el agregado completo.
func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.load(ctx, id, false)
}

// GetForUpdate carga el agregado bloqueando la fila de cabecera (SELECT … FOR UPDATE).
func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.load(ctx, id, true)
}

// Save reescribe el agregado si la versión almacenada coincide con s.Version; si no,
// ErrConcurrentModification. En éxito incrementa s.Version.
func (r *ShipmentRepo) Save(ctx context.Context, s *entity.Shipment) error {
	query := `
		UPDATE shipments SET
			name = $3, shipment_date = $4, calculation_method = $5, base_currency = $6,
			reference_currency = $7, exchange_rate = $8, total_base_cost = $9, total_shared_cost = $10,
			total_landed_cost = $11, is_finalized = $12, finalized_at = $13, calculated_at = $14,
			updated_at = $15, version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Version, s.Name, s.ShipmentDate, string(s.CalculationMethod), s.BaseCurrency,
		s.ReferenceCurrency, s.ExchangeRate, s.TotalBaseCost.Amount, s.TotalSharedCost.Amount,
		s.TotalLandedCost.Amount, s.IsFinalized, s.FinalizedAt, s.CalculatedAt, s.UpdatedAt,
	)
	if err != nil {
		return translateWriteError("update shipment", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check shipment: %w", err)
		}
		if !exists {
			return domain.ErrShipmentNotFound
		}
		return domain.ErrConcurrentModification
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM shipment_items WHERE shipment_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete shipment items: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM shipment_shared_costs WHERE shipment_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete shared costs: %w", err)
	}
	if err := r.writeChildren(ctx, s); err != nil {
		return err
	}
	s.Version++
	return nil
}

// List página de embarques (más recientes primero) y total. Los ítems y costos se cargan por embarque.
func (r *ShipmentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Shipment, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM shipments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shipments: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+shipmentColumns+`
		FROM shipments
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Shipment, error) {
		return scanShipment(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan shipments: %w", err)
	}
	for _, s := range out {
		if err := r.loadChildren(ctx, s); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// Delete elimina el embarque; ítems y costos caen por ON DELETE CASCADE.
func (r *ShipmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *ShipmentRepo) load(ctx context.Context, id string, forUpdate bool) (*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	s, err := scanShipment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ShipmentRepo) loadChildren(ctx context.Context, s *entity.Shipment) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, item_name, quantity, unit_cost, weight, total_item_cost, percentage_share,
			allocated_shared_cost, total_landed_cost, landed_cost_per_unit, override_category_id, override_amount
		FROM shipment_items WHERE shipment_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return fmt.Errorf("list shipment items: %w", err)
	}
	cur := s.BaseCurrency
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.ShipmentItem, error) {
		var (
			it                                          entity.ShipmentItem
			unitCost, total, allocated, landed, perUnit decimal.Decimal
			overrideCategory                            *string
			overrideAmount                              decimal.NullDecimal
		)
		if err := row.Scan(&it.ID, &it.ProductID, &it.ItemName, &it.Quantity, &unitCost, &it.Weight, &total,
			&it.PercentageShare, &allocated, &landed, &perUnit, &overrideCategory, &overrideAmount); err != nil {
			return nil, err
		}
		it.ShipmentID = s.ID
		it.UnitCost = money.New(unitCost, cur)
		it.TotalItemCost = money.New(total, cur)
		it.AllocatedSharedCost = money.New(allocated, cur)
		it.TotalLandedCost = money.New(landed, cur)
		it.LandedCostPerUnit = money.New(perUnit, cur)
		if overrideCategory != nil && overrideAmount.Valid {
			it.Override = &entity.ItemOverride{ExpenseCategoryID: *overrideCategory, Amount: money.New(overrideAmount.Decimal, cur)}
		}
		return &it, nil
	})
	if err != nil {
		return fmt.Errorf("scan shipment items: %w", err)
	}
	s.Items = items

	rows, err = r.q.Query(ctx, `
		SELECT id, expense_category_id, description, amount, created_at
		FROM shipment_shared_costs WHERE shipment_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return fmt.Errorf("list shared costs: %w", err)
	}
	costs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.SharedCost, error) {
		var (
			c      entity.SharedCost
			amount decimal.Decimal
		)
		if err := row.Scan(&c.ID, &c.ExpenseCategoryID, &c.Description, &amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ShipmentID = s.ID
		c.Amount = money.New(amount, cur)
		return &c, nil
	})
	if err != nil {
		return fmt.Errorf("scan shared costs: %w", err)
	}
	s.SharedCosts = costs
	return nil
}

// writeChildren inserta ítems y costos en un solo batch conservando el orden.
func (r *ShipmentRepo) writeChildren(ctx context.Context, s *entity.Shipment) error {
	if len(s.Items) == 0 && len(s.SharedCosts) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for i, it := range s.Items {
		var (
			overrideCategory *string
			overrideAmount   decimal.NullDecimal
		)
		if it.Override != nil {
			id := it.Override.ExpenseCategoryID
			overrideCategory = &id
			overrideAmount = decimal.NullDecimal{Decimal: it.Override.Amount.Amount, Valid: true}
		}
		b.Queue(`
			INSERT INTO shipment_items (id, shipment_id, position, product_id, item_name, quantity, unit_cost,
				weight, total_item_cost, percentage_share, allocated_shared_cost, total_landed_cost,
				landed_cost_per_unit, override_category_id, override_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			it.ID, s.ID, i, it.ProductID, it.ItemName, it.Quantity, it.UnitCost.Amount, it.Weight,
			it.TotalItemCost.Amount, it.PercentageShare, it.AllocatedSharedCost.Amount,
			it.TotalLandedCost.Amount, it.LandedCostPerUnit.Amount, overrideCategory, overrideAmount,
		)
	}
	for i, c := range s.SharedCosts {
		b.Queue(`
			INSERT INTO shipment_shared_costs (id, shipment_id, position, expense_category_id, description, amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, s.ID, i, c.ExpenseCategoryID, c.Description, c.Amount.Amount, c.CreatedAt,
		)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return translateWriteError("insert shipment children", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*entity.Shipment, error) {
	var (
		s                         entity.Shipment
		method                    string
		totalBase, shared, landed decimal.Decimal
		finalizedAt, calculatedAt *time.Time
	)
	if err := row.Scan(&s.ID, &s.Name, &s.ShipmentDate, &method, &s.BaseCurrency, &s.ReferenceCurrency,
		&s.ExchangeRate, &totalBase, &shared, &landed, &s.IsFinalized, &finalizedAt, &calculatedAt,
		&s.Version, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.CalculationMethod = entity.CalculationMethod(method)
	s.TotalBaseCost = money.New(totalBase, s.BaseCurrency)
	s.TotalSharedCost = money.New(shared, s.BaseCurrency)
	s.TotalLandedCost = money.New(landed, s.BaseCurrency)
	s.FinalizedAt = finalizedAt
	s.CalculatedAt = calculatedAt
	return &s, nil
}
