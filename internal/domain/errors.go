package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInvalidDiscount       = errors.New("descuento inválido")
	ErrInvalidDateOrder      = errors.New("la fecha de cierre es anterior a la fecha de apertura")
	ErrPaymentMethodRequired = errors.New("forma de pago obligatoria para completar la orden")
	ErrMechanicBusy          = errors.New("el mecánico ya tiene una orden en proceso")
	ErrStorage               = errors.New("error de almacenamiento")
)

// NotFoundError indica qué entidad referenciada no existe.
type NotFoundError struct {
	Entity string // customer, vehicle, mechanic, service, part, service_order
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError lleva las cantidades literales para diagnóstico.
type InsufficientStockError struct {
	PartID    string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para la pieza %s: disponible %d, solicitado %d",
		e.PartID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidDiscountError descuento negativo, fuera de rango o mayor al subtotal.
type InvalidDiscountError struct {
	Reason string
}

func (e *InvalidDiscountError) Error() string {
	return "descuento inválido: " + e.Reason
}

func (e *InvalidDiscountError) Is(target error) bool { return target == ErrInvalidDiscount }

// ValidationError error de entrada asociado a un campo del payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidation construye un ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError envuelve fallos de la capa de persistencia.
// Transient marca conflictos de serialización o deadlocks que admiten un reintento.
type StorageError struct {
	Cause     error
	Transient bool
}

func (e *StorageError) Error() string {
	if e.Cause == nil {
		return ErrStorage.Error()
	}
	return ErrStorage.Error() + ": " + e.Cause.Error()
}

func (e *StorageError) Unwrap() error { return e.Cause }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsTransient indica si err es un StorageError reintentable.
func IsTransient(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Transient
}

// IsDomainError indica si err ya está clasificado con algún error de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrConflict,
		ErrInsufficientStock, ErrInvalidDiscount, ErrInvalidDateOrder,
		ErrPaymentMethodRequired, ErrMechanicBusy, ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
