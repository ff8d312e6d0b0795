package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/LandedCost-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de validación del dominio.
const (
	sqlStateUniqueViolation = "23505"
	sqlStateCheckViolation  = "23514"
	sqlStateNumericOverflow = "22003"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == sqlStateUniqueViolation
}

// translateWriteError convierte las violaciones de restricciones del esquema en ErrInvalidInput
// (400 en la API). Cualquier otro error se envuelve con op.
func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case sqlStateUniqueViolation:
		return fmt.Errorf("%w: registro duplicado (%s)", domain.ErrInvalidInput, pgErr.ConstraintName)
	case sqlStateCheckViolation:
		return fmt.Errorf("%w: valor fuera de rango (%s)", domain.ErrInvalidInput, pgErr.ConstraintName)
	case sqlStateNumericOverflow:
		return fmt.Errorf("%w: valor numérico fuera de la precisión admitida", domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}
