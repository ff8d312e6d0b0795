package domain

import (
	"errors"
	"fmt"
)

// Clases de error del motor de costo en destino. Cada error concreto envuelve una clase con %w,
// de modo que errors.Is(err, ErrValidation) funciona para cualquier error de validación.
var (
	ErrValidation   = errors.New("error de validación")
	ErrState        = errors.New("operación no permitida en el estado actual")
	ErrConcurrency  = errors.New("conflicto de concurrencia")
	ErrArithmetic   = errors.New("error aritmético")
	ErrCollaborator = errors.New("fallo de un colaborador externo")
	ErrNotFound     = errors.New("recurso no encontrado")
)

// Errores de validación (entrada mal formada; se rechazan antes de mutar).
var (
	ErrEmptyShipment       = fmt.Errorf("%w: el embarque no tiene ítems", ErrValidation)
	ErrInvalidBasis        = fmt.Errorf("%w: la base de asignación suma cero", ErrValidation)
	ErrInvalidRate         = fmt.Errorf("%w: la tasa de cambio debe ser mayor que cero", ErrValidation)
	ErrInvalidQuantity     = fmt.Errorf("%w: la cantidad debe ser mayor que cero", ErrValidation)
	ErrNegativeAmount      = fmt.Errorf("%w: el monto no puede ser negativo", ErrValidation)
	ErrNegativeWeight      = fmt.Errorf("%w: el peso no puede ser negativo", ErrValidation)
	ErrNegativePool        = fmt.Errorf("%w: el pool de costos compartidos no puede ser negativo", ErrValidation)
	ErrCurrencyMismatch    = fmt.Errorf("%w: las monedas no coinciden", ErrValidation)
	ErrInvalidCurrency     = fmt.Errorf("%w: código de moneda ISO 4217 inválido", ErrValidation)
	ErrInvalidMethod       = fmt.Errorf("%w: método de cálculo desconocido", ErrValidation)
	ErrInvalidInput        = fmt.Errorf("%w: entrada inválida", ErrValidation)
	ErrOverrideNotAllowed  = fmt.Errorf("%w: la categoría de gasto no permite asignación manual por ítem", ErrValidation)
	ErrOverrideExceedsPool = fmt.Errorf("%w: las asignaciones manuales superan el total de costos compartidos", ErrValidation)
	ErrUnallocatedPool     = fmt.Errorf("%w: queda pool sin asignar y todos los ítems tienen asignación manual", ErrValidation)
)

// Errores de estado (ciclo de vida Draft → Finalized).
var (
	ErrShipmentFinalized    = fmt.Errorf("%w: el embarque ya está finalizado", ErrState)
	ErrShipmentNotFinalized = fmt.Errorf("%w: el embarque aún no está finalizado", ErrState)
	ErrNotCalculated        = fmt.Errorf("%w: el embarque no tiene un cálculo vigente", ErrState)
)

// Errores de concurrencia (reintentables por el llamador).
var (
	ErrConcurrentModification = fmt.Errorf("%w: el embarque fue modificado por otra operación", ErrConcurrency)
)

// Errores aritméticos (señal de bug interno, no de usuario).
var (
	ErrDivisionByZero     = fmt.Errorf("%w: división por cero", ErrArithmetic)
	ErrInvariantViolation = fmt.Errorf("%w: los totales no cuadran tras el cálculo", ErrArithmetic)
)

// Errores de colaboradores externos.
var (
	ErrCategoryLookup = fmt.Errorf("%w: consulta de categoría de gasto", ErrCollaborator)
	ErrPriceSink      = fmt.Errorf("%w: actualización de precio en catálogo", ErrCollaborator)
)

// Errores de recursos.
var (
	ErrShipmentNotFound   = fmt.Errorf("%w: embarque", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("%w: ítem del embarque", ErrNotFound)
	ErrSharedCostNotFound = fmt.Errorf("%w: costo compartido", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("%w: categoría de gasto", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("%w: producto del catálogo", ErrNotFound)
)
