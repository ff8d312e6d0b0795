package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/LandedCost-api/internal/application/dto"
	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
)

// SheetRenderer genera la hoja PDF de un embarque.
type SheetRenderer interface {
	Render(ctx context.Context, s *entity.Shipment) ([]byte, error)
}

// ShipmentHandler maneja las peticiones HTTP de embarques y costo en destino (protegido).
type ShipmentHandler struct {
	svc   *landedcost.Service
	sheet SheetRenderer
}

// NewShipmentHandler construye el handler. sheet puede ser nil (sin exportación PDF).
func NewShipmentHandler(svc *landedcost.Service, sheet SheetRenderer) *ShipmentHandler {
	return &ShipmentHandler{svc: svc, sheet: sheet}
}

// Create godoc
// @Summary      Crear embarque (borrador)
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateShipmentRequest  true  "name, calculation_method, base_currency, reference_currency, exchange_rate"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateShipmentRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	sh, err := h.svc.CreateShipment(c.UserContext(), in.ToInput(GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToShipmentResponse(sh))
}

// List godoc
// @Summary      Listar embarques (paginado)
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "Tamaño de página (default 10, máx 100)"
// @Param        offset  query     int  false  "Desplazamiento"
// @Success      200     {object}  dto.ShipmentListResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit debe estar entre 1 y 100 y offset >= 0"})
	}
	page.DefaultPage()
	list, total, err := h.svc.ListShipments(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ShipmentListResponse{
		Shipments: make([]dto.ShipmentResponse, 0, len(list)),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, s := range list {
		out.Shipments = append(out.Shipments, dto.ToShipmentResponse(s))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener embarque con ítems, costos y resumen del cálculo
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del embarque"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	sh, err := h.svc.GetShipment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentResponse(sh))
}

// Events godoc
// @Summary      Historial de eventos del embarque (finalize, envío de precios)
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del embarque"
// @Success      200  {array}   dto.ShipmentEventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/events [get]
func (h *ShipmentHandler) Events(c *fiber.Ctx) error {
	events, err := h.svc.ListEvents(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentEventsResponse(events))
}

// Delete godoc
// @Summary      Eliminar embarque en borrador
// @Tags         shipments
// @Security     Bearer
// @Param        id   path  string  true  "ID del embarque"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.DeleteShipment(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem godoc
// @Summary      Agregar ítem al embarque
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID del embarque"
// @Param        body  body      dto.AddItemRequest  true  "product_id, item_name, quantity, unit_cost, weight"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/items [post]
func (h *ShipmentHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddItemRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	sh, err := h.svc.AddItem(c.UserContext(), c.Params("id"), in.ToInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToShipmentResponse(sh))
}

// RemoveItem godoc
// @Summary      Quitar ítem del embarque
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true  "ID del embarque"
// @Param        itemId  path      string  true  "ID del ítem"
// @Success      200     {object}  dto.ShipmentResponse
// @Router       /api/shipments/{id}/items/{itemId} [delete]
func (h *ShipmentHandler) RemoveItem(c *fiber.Ctx) error {
	sh, err := h.svc.RemoveItem(c.UserContext(), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentResponse(sh))
}

// SetOverride godoc
// @Summary      Asignar a mano el costo compartido de un ítem
// @Description  Solo para categorías de gasto con allows_item_override. El ítem sale del reparto automático.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path      string                   true  "ID del embarque"
// @Param        itemId  path      string                   true  "ID del ítem"
// @Param        body    body      dto.ItemOverrideRequest  true  "expense_category_id, amount"
// @Success      200     {object}  dto.ShipmentResponse
// @Router       /api/shipments/{id}/items/{itemId}/override [put]
func (h *ShipmentHandler) SetOverride(c *fiber.Ctx) error {
	var in dto.ItemOverrideRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	sh, err := h.svc.SetItemOverride(c.UserContext(), c.Params("id"), c.Params("itemId"), in.ToInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentResponse(sh))
}

// ClearOverride godoc
// @Summary      Quitar la asignación manual de un ítem
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true  "ID del embarque"
// @Param        itemId  path      string  true  "ID del ítem"
// @Success      200     {object}  dto.ShipmentResponse
// @Router       /api/shipments/{id}/items/{itemId}/override [delete]
func (h *ShipmentHandler) ClearOverride(c *fiber.Ctx) error {
	sh, err := h.svc.ClearItemOverride(c.UserContext(), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentResponse(sh))
}

// AddSharedCost godoc
// @Summary      Agregar costo compartido (flete, seguro, arancel...)
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID del embarque"
// @Param        body  body      dto.AddSharedCostRequest  true  "expense_category_id, description, amount"
// @Success      201   {object}  dto.ShipmentResponse
// @Router       /api/shipments/{id}/shared-costs [post]
func (h *ShipmentHandler) AddSharedCost(c *fiber.Ctx) error {
	var in dto.AddSharedCostRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	sh, err := h.svc.AddSharedCost(c.UserContext(), c.Params("id"), in.ToInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToShipmentResponse(sh))
}

// RemoveSharedCost godoc
// @Summary      Quitar costo compartido
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true  "ID del embarque"
// @Param        costId  path      string  true  "ID del costo"
// @Success      200     {object}  dto.ShipmentResponse
// @Router       /api/shipments/{id}/shared-costs/{costId} [delete]
func (h *ShipmentHandler) RemoveSharedCost(c *fiber.Ctx) error {
	sh, err := h.svc.RemoveSharedCost(c.UserContext(), c.Params("id"), c.Params("costId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentResponse(sh))
}

// Recalculate godoc
// @Summary      Recalcular el costo en destino
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del embarque"
// @Success      200  {object}  dto.CalculationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/recalculate [post]
func (h *ShipmentHandler) Recalculate(c *fiber.Ctx) error {
	_, res, err := h.svc.Recalculate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToCalculationResponse(res, true))
}

// Finalize godoc
// @Summary      Finalizar embarque (congela los costos)
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del embarque"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/finalize [post]
func (h *ShipmentHandler) Finalize(c *fiber.Ctx) error {
	sh, err := h.svc.Finalize(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToShipmentResponse(sh))
}

// PushPrices godoc
// @Summary      Enviar costos unitarios al catálogo de productos
// @Description  Idempotente; los fallos por producto se reportan en failed sin detener el resto.
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del embarque"
// @Success      200  {object}  landedcost.PushResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/push-prices [post]
func (h *ShipmentHandler) PushPrices(c *fiber.Ctx) error {
	res, err := h.svc.PushPricesToCatalog(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if len(res.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(res)
}

// PDF godoc
// @Summary      Hoja de costo en destino en PDF
// @Tags         shipments
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del embarque"
// @Success      200
// @Router       /api/shipments/{id}/pdf [get]
func (h *ShipmentHandler) PDF(c *fiber.Ctx) error {
	if h.sheet == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_DISABLED", Message: "exportación PDF no configurada"})
	}
	sh, err := h.svc.GetShipment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.sheet.Render(c.UserContext(), sh)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="landed-cost-%s.pdf"`, sh.ID))
	return c.Send(out)
}

// Preview godoc
// @Summary      Simular el cálculo sin guardar
// @Tags         landed-cost
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PreviewRequest  true  "embarque transitorio"
// @Success      200   {object}  dto.CalculationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/landed-cost/calculate [post]
func (h *ShipmentHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.svc.Preview(c.UserContext(), in.ToInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToCalculationResponse(res, false))
}

// ListCategories godoc
// @Summary      Categorías de gasto
// @Tags         landed-cost
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ExpenseCategoryResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/expense-categories [get]
func (h *ShipmentHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.svc.ListCategories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ExpenseCategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, dto.ToExpenseCategoryResponse(cat))
	}
	return c.JSON(out)
}
