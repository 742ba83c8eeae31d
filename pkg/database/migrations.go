package database

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateJSONIndexes creates GIN indexes over the JSONB columns that the
// Contradiction Detector and Governance Gateway query by content, rather
// than by a fixed key — not expressible in a plain golang-migrate .sql
// file's column DDL, so applied as a follow-up step after Up().
func CreateJSONIndexes(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_contradiction_records_details_gin
		ON contradiction_records USING gin(details)`)
	if err != nil {
		return fmt.Errorf("failed to create contradiction_records details GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_governance_audit_payload_gin
		ON governance_audit USING gin(payload)`)
	if err != nil {
		return fmt.Errorf("failed to create governance_audit payload GIN index: %w", err)
	}

	return nil
}
