package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// SharedCost costo incidental del embarque (flete, seguro, arancel...) a repartir entre los ítems.
type SharedCost struct {
	ID                string
	ShipmentID        string
	ExpenseCategoryID string
	Description       string
	Amount            money.Money
	CreatedAt         time.Time
}

// NewSharedCost valida el monto (>= 0) y lo redondea a la unidad menor de su moneda.
func NewSharedCost(id, expenseCategoryID, description string, amount money.Money, now time.Time) (*SharedCost, error) {
	if id == "" || expenseCategoryID == "" {
		return nil, domain.ErrInvalidInput
	}
	if amount.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}
	return &SharedCost{
		ID:                id,
		ExpenseCategoryID: expenseCategoryID,
		Description:       strings.TrimSpace(description),
		Amount:            amount.RoundToMinor(),
		CreatedAt:         now,
	}, nil
}
