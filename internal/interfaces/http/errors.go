package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/LandedCost-api/internal/application/dto"
	"github.com/jhoicas/LandedCost-api/internal/domain"
)

// writeError traduce los errores del dominio a HTTP:
// validación 400, no encontrado 404, estado 409, concurrencia 409 (reintentable),
// colaborador 502, aritmético y resto 500.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: validationCode(err), Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrency):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: err.Error()})
	case errors.Is(err, domain.ErrState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: stateCode(err), Message: err.Error()})
	case errors.Is(err, domain.ErrCollaborator):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM_ERROR", Message: err.Error()})
	case errors.Is(err, domain.ErrArithmetic):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "ARITHMETIC_ERROR", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func validationCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "CURRENCY_MISMATCH"
	case errors.Is(err, domain.ErrEmptyShipment):
		return "EMPTY_SHIPMENT"
	case errors.Is(err, domain.ErrInvalidBasis):
		return "INVALID_BASIS"
	case errors.Is(err, domain.ErrOverrideNotAllowed):
		return "OVERRIDE_NOT_ALLOWED"
	case errors.Is(err, domain.ErrOverrideExceedsPool), errors.Is(err, domain.ErrUnallocatedPool):
		return "OVERRIDE_POOL_MISMATCH"
	}
	return "VALIDATION"
}

func stateCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrShipmentFinalized):
		return "SHIPMENT_FINALIZED"
	case errors.Is(err, domain.ErrShipmentNotFinalized):
		return "SHIPMENT_NOT_FINALIZED"
	case errors.Is(err, domain.ErrNotCalculated):
		return "NOT_CALCULATED"
	}
	return "INVALID_STATE"
}
