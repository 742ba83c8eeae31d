package alerts

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aldicp/aldicp/pkg/models"
)

// DBPersister persists alerts to the fixed alerts control-plane table.
type DBPersister struct {
	db *sql.DB
}

// NewDBPersister wraps db as a Persister.
func NewDBPersister(db *sql.DB) *DBPersister {
	return &DBPersister{db: db}
}

// Upsert writes the alert's current state, keyed by its deterministic ID.
func (p *DBPersister) Upsert(ctx context.Context, a *models.Alert) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO alerts (id, severity, source, title, message, metadata, first_seen_at, last_seen_at, acknowledged, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			message = EXCLUDED.message,
			metadata = EXCLUDED.metadata,
			acknowledged = EXCLUDED.acknowledged,
			resolved = EXCLUDED.resolved
	`, a.ID, string(a.Severity), a.Source, a.Title, a.Message, metadata, a.FirstSeenAt, a.LastSeenAt, a.Acknowledged, a.Resolved)
	return err
}
