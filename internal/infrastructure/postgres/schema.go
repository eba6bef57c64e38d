package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

// Schema DDL de las tablas del taller (idempotente).
//
//go:embed schema.sql
var Schema string

// ApplySchema crea tablas e índices si no existen.
func ApplySchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
