package landedcost

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/LandedCost-api/internal/domain"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// FailedItem ítem cuyo precio no se pudo enviar al catálogo.
type FailedItem struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// PushResult resumen del envío de costos al catálogo. Los fallos no detienen el resto.
type PushResult struct {
	ShipmentID string       `json:"shipment_id"`
	Currency   string       `json:"currency"`
	Updated    int          `json:"updated"`
	Skipped    int          `json:"skipped"`
	Failed     []FailedItem `json:"failed"`
}

// PushPricesToCatalog envía el costo unitario en destino de cada ítem al catálogo. Solo para
// embarques finalizados; se lee fuera del candado porque un embarque finalizado es inmutable.
// Cada actualización lleva una clave de idempotencia, de modo que reintentar es seguro.
func (s *Service) PushPricesToCatalog(ctx context.Context, shipmentID, actor string) (*PushResult, error) {
	sh, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !sh.IsFinalized {
		return nil, domain.ErrShipmentNotFinalized
	}
	target := s.cfg.CatalogCurrency
	if strings.TrimSpace(target) == "" {
		target = sh.ReferenceCurrency
	}
	target, err = money.NormalizeCurrency(target)
	if err != nil {
		return nil, err
	}
	if target != sh.BaseCurrency && target != sh.ReferenceCurrency {
		return nil, fmt.Errorf("%w: el catálogo usa %s y el embarque solo conoce %s/%s",
			domain.ErrCurrencyMismatch, target, sh.BaseCurrency, sh.ReferenceCurrency)
	}
	conv, err := sh.Converter()
	if err != nil {
		return nil, err
	}

	log := s.log.Shipment(sh.ID)
	res := &PushResult{ShipmentID: sh.ID, Currency: target, Failed: []FailedItem{}}
	for _, it := range sh.Items {
		amount, err := catalogUnitPrice(conv, it, target)
		if err != nil {
			res.Failed = append(res.Failed, FailedItem{ItemID: it.ID, ProductID: it.ProductID, Error: err.Error()})
			continue
		}
		applied, err := s.prices.SetUnitPrice(ctx, PriceUpdate{
			IdempotencyKey: IdempotencyKey(sh, it, amount),
			ShipmentID:     sh.ID,
			ItemID:         it.ID,
			ProductID:      it.ProductID,
			Amount:         amount,
		})
		switch {
		case err != nil:
			log.Warn().Err(err).Str("product_id", it.ProductID).Msg("no se pudo actualizar el precio")
			res.Failed = append(res.Failed, FailedItem{ItemID: it.ID, ProductID: it.ProductID, Error: err.Error()})
		case applied:
			res.Updated++
		default:
			res.Skipped++
		}
	}

	s.metrics.ObservePush(res.Updated, res.Skipped, len(res.Failed))
	s.record(ctx, sh.ID, entity.EventPricesPushed, actor, res)
	log.Info().
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("failed", len(res.Failed)).
		Msg("precios enviados al catálogo")
	return res, nil
}

// catalogUnitPrice costo unitario en destino del ítem expresado en la moneda del catálogo.
func catalogUnitPrice(conv money.Converter, it *entity.ShipmentItem, target string) (money.Money, error) {
	if target == conv.Base {
		return it.LandedCostPerUnit, nil
	}
	ref, err := conv.ToReference(it.TotalLandedCost)
	if err != nil {
		return money.Money{}, err
	}
	perUnit, err := ref.Div(it.Quantity)
	if err != nil {
		return money.Money{}, err
	}
	return perUnit.RoundToMinor(), nil
}

// IdempotencyKey clave estable de una actualización de precio: mismo embarque, ítem, producto y
// monto producen la misma clave.
func IdempotencyKey(sh *entity.Shipment, it *entity.ShipmentItem, amount money.Money) string {
	finalized := ""
	if sh.FinalizedAt != nil {
		finalized = sh.FinalizedAt.UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	h := sha256.Sum256([]byte(strings.Join([]string{
		sh.ID, it.ID, it.ProductID, amount.Amount.String(), amount.Currency, finalized,
	}, "|")))
	return hex.EncodeToString(h[:])
}

// record emite un evento de trazabilidad. Un fallo del sink se registra en el log pero no revierte
// la operación, que ya fue confirmada.
func (s *Service) record(ctx context.Context, shipmentID, typ, actor string, payload any) {
	if s.events == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Shipment(shipmentID).Error().Err(err).Str("event", typ).Msg("payload de evento inválido")
		return
	}
	ev := &entity.ShipmentEvent{
		ID:         s.newID(),
		ShipmentID: shipmentID,
		Type:       typ,
		Actor:      actor,
		Payload:    raw,
		OccurredAt: s.clock(),
	}
	if err := s.events.Record(ctx, ev); err != nil {
		s.log.Shipment(shipmentID).Error().Err(err).Str("event", typ).Msg("no se pudo registrar el evento")
	}
}
