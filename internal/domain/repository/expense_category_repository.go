package repository

import (
	"context"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
)

// ExpenseCategoryRepository consulta de categorías de gasto (solo lectura para el motor).
type ExpenseCategoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ExpenseCategory, error)
	List(ctx context.Context) ([]*entity.ExpenseCategory, error)
}
