package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrValidation   = errors.New("error de validación")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Códigos de validación expuestos al cliente.
const (
	CodeUnknownProduct    = "UNKNOWN_PRODUCT"
	CodeInvalidInterval   = "INVALID_INTERVAL"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeOverlappingPeriod = "OVERLAPPING_PERIOD"
	CodeRequired          = "REQUIRED"
	CodeInvalidValue      = "INVALID_VALUE"
	CodeDuplicate         = "DUPLICATE"
)

// Entidades referenciadas en los errores.
const (
	EntityCreditProduct    = "CreditProduct"
	EntityInterestRate     = "InterestRate"
	EntityRequiredDocument = "RequiredDocument"
)

// ValidationError error de campo o de negocio con suficiente estructura para mostrar al usuario.
type ValidationError struct {
	Entity  string
	Field   string
	Code    string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(entity, field, code, message string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError el producto o registro referenciado no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError escritura concurrente detectada por el almacenamiento. El llamador puede reintentar.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

// NewConflictError construye un ConflictError.
func NewConflictError(entity, id, reason string) *ConflictError {
	return &ConflictError{Entity: entity, ID: id, Reason: reason}
}

func (e *ConflictError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AsValidation devuelve el ValidationError contenido en err, si existe.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
