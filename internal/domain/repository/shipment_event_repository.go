package repository

import (
	"context"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
)

// ShipmentEventRepository persiste los eventos de trazabilidad del embarque.
type ShipmentEventRepository interface {
	Record(ctx context.Context, ev *entity.ShipmentEvent) error
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.ShipmentEvent, error)
}
