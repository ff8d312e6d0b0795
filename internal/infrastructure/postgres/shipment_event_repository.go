package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
)

var _ repository.ShipmentEventRepository = (*ShipmentEventRepo)(nil)

// ShipmentEventRepo bitácora de eventos del embarque (finalizado, precios enviados).
type ShipmentEventRepo struct {
	q Querier
}

// NewShipmentEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentEventRepository(q Querier) *ShipmentEventRepo {
	return &ShipmentEventRepo{q: q}
}

func (r *ShipmentEventRepo) Record(ctx context.Context, ev *entity.ShipmentEvent) error {
	var payload any
	if len(ev.Payload) > 0 {
		payload = string(ev.Payload)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipment_events (id, shipment_id, type, actor, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		ev.ID, ev.ShipmentID, ev.Type, ev.Actor, payload, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert shipment event: %w", err)
	}
	return nil
}

func (r *ShipmentEventRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.ShipmentEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, type, actor, COALESCE(payload::text, ''), occurred_at
		FROM shipment_events WHERE shipment_id = $1 ORDER BY occurred_at, id`, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list shipment events: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.ShipmentEvent, error) {
		var (
			ev      entity.ShipmentEvent
			payload string
		)
		if err := row.Scan(&ev.ID, &ev.ShipmentID, &ev.Type, &ev.Actor, &payload, &ev.OccurredAt); err != nil {
			return nil, err
		}
		if payload != "" {
			ev.Payload = []byte(payload)
		}
		return &ev, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan shipment events: %w", err)
	}
	return out, nil
}
