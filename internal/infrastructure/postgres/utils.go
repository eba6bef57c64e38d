package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"

	"github.com/jhoicas/Taller-api/internal/domain"
)

// Índice parcial que garantiza un único pedido en proceso por mecánico.
const mechanicInProgressIndex = "service_orders_mechanic_in_progress_uq"

// Códigos SQLSTATE que admiten reintento con una transacción nueva.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// classify traduce un fallo de la tx a un error de dominio.
// Los errores ya clasificados pasan tal cual; el resto vuelve como StorageError.
func classify(err error) error {
	if err == nil || domain.IsDomainError(err) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if isUniqueViolation(pgErr) && pgErr.ConstraintName == mechanicInProgressIndex {
			return domain.ErrMechanicBusy
		}
		return &domain.StorageError{Cause: err, Transient: transientCodes[pgErr.Code]}
	}
	return &domain.StorageError{Cause: err}
}

// isUUID las columnas id son UUID; un id mal formado equivale a inexistente.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// canonicalIDs ids válidos en forma canónica (clave) junto al id tal como lo pidió el llamador.
// Los que no son UUID se descartan: equivalen a inexistentes.
func canonicalIDs(ids []string) (map[string]string, []string) {
	requested := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			requested[u.String()] = id
		}
	}
	return requested, lo.Keys(requested)
}
