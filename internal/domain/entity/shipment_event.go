package entity

import (
	"encoding/json"
	"time"
)

// Tipos de evento de trazabilidad del embarque.
const (
	EventShipmentFinalized = "shipment.finalized"
	EventPricesPushed      = "shipment.prices_pushed"
)

// ShipmentEvent evento de auditoría emitido en finalize y en el envío de precios al catálogo.
type ShipmentEvent struct {
	ID         string
	ShipmentID string
	Type       string
	Actor      string
	Payload    json.RawMessage
	OccurredAt time.Time
}
