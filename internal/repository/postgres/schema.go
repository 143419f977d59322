package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id                     TEXT PRIMARY KEY,
		order_type             TEXT NOT NULL,
		status                 TEXT NOT NULL,
		device_type            TEXT NOT NULL,
		practice_name          TEXT NOT NULL,
		clinic_name            TEXT NOT NULL,
		created_date           TIMESTAMPTZ NOT NULL,
		delivery_date          TIMESTAMPTZ,
		tracking_number        TEXT,
		is_assigned_to_patient BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_type_created ON orders (order_type, created_date)`,
	`CREATE TABLE IF NOT EXISTS stock_items (
		device_type TEXT PRIMARY KEY,
		quantity    INTEGER NOT NULL,
		min_level   INTEGER NOT NULL,
		max_level   INTEGER NOT NULL
	)`,
}

// Migrate creates the orders and stock_items tables when missing.
func Migrate(ctx context.Context, db *DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	log.Info().Int("statements", len(schemaStatements)).Msg("postgres: schema ready")
	return nil
}
