package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain"
)

var _ landedcost.PriceSink = (*CatalogRepo)(nil)

// CatalogRepo escribe el costo en destino en products.landed_cost. Cada actualización se registra
// en catalog_price_pushes por su clave de idempotencia; una clave repetida no vuelve a escribir.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository construye el adaptador con el pool (abre su propia transacción por ítem).
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

func (r *CatalogRepo) SetUnitPrice(ctx context.Context, u landedcost.PriceUpdate) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO catalog_price_pushes (idempotency_key, shipment_id, item_id, product_id, amount, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		u.IdempotencyKey, u.ShipmentID, u.ItemID, u.ProductID, u.Amount.Amount, u.Amount.Currency)
	if err != nil {
		return false, fmt.Errorf("insert price push: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	tag, err = tx.Exec(ctx, `
		UPDATE products
		SET landed_cost = $2, landed_cost_currency = $3, landed_cost_updated_at = NOW()
		WHERE id = $1`,
		u.ProductID, u.Amount.Amount, u.Amount.Currency)
	if err != nil {
		return false, fmt.Errorf("update product landed cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrProductNotFound, u.ProductID)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}
