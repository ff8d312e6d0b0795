package landedcost

import (
	"context"
	"time"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio de
// embarques atado a esa tx. Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(shipments repository.ShipmentRepository) error) error
}

// ShipmentLocker sección exclusiva por embarque. Si el candado no se obtiene a tiempo devuelve
// domain.ErrConcurrentModification.
type ShipmentLocker interface {
	WithLock(ctx context.Context, shipmentID string, fn func(context.Context) error) error
}

// CategoryLookup consulta de categorías de gasto (dato de referencia externo al motor).
type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (*entity.ExpenseCategory, error)
	List(ctx context.Context) ([]*entity.ExpenseCategory, error)
}

// PriceUpdate actualización del costo unitario en destino de un producto del catálogo.
// IdempotencyKey identifica la actualización: repetirla no tiene efecto.
type PriceUpdate struct {
	IdempotencyKey string
	ShipmentID     string
	ItemID         string
	ProductID      string
	Amount         money.Money
}

// PriceSink destino de los costos calculados (catálogo de productos). applied = false cuando la
// clave de idempotencia ya se había aplicado.
type PriceSink interface {
	SetUnitPrice(ctx context.Context, u PriceUpdate) (applied bool, err error)
}

// EventSink guarda y lista los eventos de trazabilidad (finalize, push de precios).
type EventSink interface {
	Record(ctx context.Context, ev *entity.ShipmentEvent) error
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.ShipmentEvent, error)
}

// Recorder métricas del motor.
type Recorder interface {
	ObserveCalculation(method string, elapsed time.Duration, err error)
	ShipmentFinalized()
	ObservePush(updated, skipped, failed int)
}

// NopRecorder descarta las métricas.
type NopRecorder struct{}

func (NopRecorder) ObserveCalculation(string, time.Duration, error) {}
func (NopRecorder) ShipmentFinalized()                             {}
func (NopRecorder) ObservePush(int, int, int)                      {}
