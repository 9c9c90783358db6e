package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// These indexes enable efficient full-text search on alert_data and final_analysis fields.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	// GIN index for alert_data full-text search
	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_alert_sessions_alert_data_gin
		ON alert_sessions USING gin(to_tsvector('english', alert_data))`)
	if err != nil {
		return fmt.Errorf("failed to create alert_data GIN index: %w", err)
	}

	// GIN index for final_analysis full-text search
	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_alert_sessions_final_analysis_gin
		ON alert_sessions USING gin(to_tsvector('english', COALESCE(final_analysis, '')))`)
	if err != nil {
		return fmt.Errorf("failed to create final_analysis GIN index: %w", err)
	}

	return nil
}

// CreatePartialUniqueIndexes creates PostgreSQL partial unique indexes that
// Ent/Atlas cannot express. Test setups that build the schema via Ent's
// Schema.Create need this called explicitly; production gets the same index
// from 20260715103000_init.up.sql.
//
// The composite unique index on (session_id, stage_index, parallel_index)
// only constrains rows with a non-null parallel_index (parallel parents and
// branches). Single-agent and synthesis records carry a null parallel_index,
// so they need their own guarantee: at most one null-index record per
// (session_id, stage_index).
func CreatePartialUniqueIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS stageexecution_session_id_stage_index_null_parallel
		ON stage_executions (session_id, stage_index)
		WHERE parallel_index IS NULL`)
	if err != nil {
		return fmt.Errorf("failed to create null-parallel stage index: %w", err)
	}

	return nil
}
