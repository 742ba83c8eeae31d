package governance

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/models"
)

// persistProposal upserts the proposal's current state into schema_proposals.
// Audit persistence is best-effort: a write failure is logged, not raised,
// since the in-memory decision already reached the caller.
func (g *Gateway) persistProposal(ctx context.Context, p *models.SchemaProposal) {
	if g.db == nil {
		return
	}
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		slog.Warn("governance: failed to marshal proposal payload", "id", p.ID, "error", err)
		return
	}

	_, err = g.db.ExecContext(ctx, `
		INSERT INTO schema_proposals (id, kind, target_table, payload, confidence, reasoning, source_ref, state, created_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			reasoning = EXCLUDED.reasoning,
			decided_at = EXCLUDED.decided_at
	`, p.ID, string(p.Kind), p.TargetTable, payload, p.Confidence, p.Reasoning, p.SourceRef, string(p.State), p.CreatedAt, p.DecidedAt)
	if err != nil {
		slog.Warn("governance: failed to persist schema proposal", "id", p.ID, "error", err)
	}
}

// audit appends a best-effort entry to governance_audit.
func (g *Gateway) audit(ctx context.Context, eventType, agentID string, payload map[string]any) {
	if g.db == nil {
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("governance: failed to marshal audit payload", "event_type", eventType, "error", err)
		return
	}

	_, err = g.db.ExecContext(ctx, `
		INSERT INTO governance_audit (id, event_type, agent_id, reason, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, uuid.NewString(), eventType, agentID, "", encoded)
	if err != nil {
		slog.Warn("governance: failed to write audit entry", "event_type", eventType, "error", err)
	}
}
