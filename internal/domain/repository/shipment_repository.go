package repository

import (
	"context"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
)

// ShipmentRepository define el puerto de persistencia del agregado Shipment (con ítems y costos
// compartidos). Save aplica control optimista: si la versión guardada no coincide con s.Version
// devuelve domain.ErrConcurrentModification; si coincide, incrementa s.Version.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error)
	Save(ctx context.Context, s *entity.Shipment) error
	List(ctx context.Context, limit, offset int) ([]*entity.Shipment, int, error)
	Delete(ctx context.Context, id string) error
}
