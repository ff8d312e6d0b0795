package entity

// ExpenseCategory categoría de gasto (flete, seguro, aduana...). Es dato de referencia administrado
// fuera del motor; aquí solo se consulta.
type ExpenseCategory struct {
	ID                 string
	Name               string
	Description        string
	AllowsItemOverride bool // permite asignar a mano el monto de un ítem
	SortOrder          int
}

// IDs de las categorías de gasto por defecto.
const (
	CategoryFreight     = "freight"
	CategoryInsurance   = "insurance"
	CategoryCustomsDuty = "customs_duty"
	CategoryHandling    = "handling"
	CategoryBankCharges = "bank_charges"
)

// DefaultExpenseCategories categorías que siembra cmd/seed y que usa el almacenamiento en memoria.
// Solo el arancel admite asignación manual por ítem (cada producto tiene su propia partida).
func DefaultExpenseCategories() []*ExpenseCategory {
	return []*ExpenseCategory{
		{ID: CategoryFreight, Name: "Freight", Description: "Flete internacional y local", SortOrder: 1},
		{ID: CategoryInsurance, Name: "Insurance", Description: "Seguro de la mercancía", SortOrder: 2},
		{ID: CategoryCustomsDuty, Name: "Customs Duty", Description: "Aranceles e impuestos de importación", AllowsItemOverride: true, SortOrder: 3},
		{ID: CategoryHandling, Name: "Handling", Description: "Manipulación, almacenaje y despacho", SortOrder: 4},
		{ID: CategoryBankCharges, Name: "Bank Charges", Description: "Comisiones bancarias y de transferencia", SortOrder: 5},
	}
}
