package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
)

var _ repository.ExpenseCategoryRepository = (*ExpenseCategoryRepo)(nil)

// ExpenseCategoryRepo catálogo de categorías de gasto.
type ExpenseCategoryRepo struct {
	q Querier
}

// NewExpenseCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExpenseCategoryRepository(q Querier) *ExpenseCategoryRepo {
	return &ExpenseCategoryRepo{q: q}
}

func (r *ExpenseCategoryRepo) GetByID(ctx context.Context, id string) (*entity.ExpenseCategory, error) {
	var c entity.ExpenseCategory
	err := r.q.QueryRow(ctx, `
		SELECT id, name, description, allows_item_override, sort_order
		FROM expense_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.AllowsItemOverride, &c.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get expense category: %w", err)
	}
	return &c, nil
}

func (r *ExpenseCategoryRepo) List(ctx context.Context) ([]*entity.ExpenseCategory, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, description, allows_item_override, sort_order
		FROM expense_categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.ExpenseCategory, error) {
		var c entity.ExpenseCategory
		err := row.Scan(&c.ID, &c.Name, &c.Description, &c.AllowsItemOverride, &c.SortOrder)
		return &c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan expense categories: %w", err)
	}
	return out, nil
}

// Upsert crea o actualiza la categoría (usado por cmd/seed).
func (r *ExpenseCategoryRepo) Upsert(ctx context.Context, c *entity.ExpenseCategory) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO expense_categories (id, name, description, allows_item_override, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			allows_item_override = EXCLUDED.allows_item_override,
			sort_order = EXCLUDED.sort_order`,
		c.ID, c.Name, c.Description, c.AllowsItemOverride, c.SortOrder)
	if err != nil {
		return fmt.Errorf("upsert expense category: %w", err)
	}
	return nil
}
