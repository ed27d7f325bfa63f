package postgres

import (
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/parametros-credito/internal/domain"
)

// Códigos SQLSTATE que el almacenamiento usa como respaldo de las invariantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeExclusionViolation   = "23P01"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgErrorCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isConcurrencyFailure indica errores que se resuelven reintentando la operación.
func isConcurrencyFailure(err error) bool {
	switch pgErrorCode(err) {
	case codeExclusionViolation, codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}

// toDBDate representa la fecha civil como medianoche UTC para columnas DATE.
func toDBDate(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func toDBDatePtr(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := toDBDate(*d)
	return &t
}

func fromDBDatePtr(t *time.Time) *civil.Date {
	if t == nil {
		return nil
	}
	d := civil.DateOf(*t)
	return &d
}

func unknownProduct(entity string) error {
	return domain.NewValidationError(entity, "product_id", domain.CodeUnknownProduct, "el producto de crédito no existe")
}
