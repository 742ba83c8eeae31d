package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/models"
)

// riskFor derives a proposal's risk tier from confidence (spec §4.11
// approval step 2).
func riskFor(confidence float64) config.RiskTier {
	switch {
	case confidence >= 0.9:
		return config.RiskLow
	case confidence >= 0.7:
		return config.RiskMedium
	default:
		return config.RiskHigh
	}
}

// drain pulls every staged draft and submits it to governance (spec §4.11
// approval steps 1-3, 5).
func (p *Pipeline) drain(ctx context.Context) {
	for {
		draft := p.popDraft()
		if draft == nil {
			return
		}
		p.submit(ctx, draft)
	}
}

func (p *Pipeline) popDraft() *Draft {
	p.draftsMu.Lock()
	defer p.draftsMu.Unlock()
	if len(p.drafts) == 0 {
		return nil
	}
	next := p.drafts[0]
	p.drafts = p.drafts[1:]
	return next
}

func (p *Pipeline) submit(ctx context.Context, draft *Draft) {
	kind := models.ProposalKindInsertRow
	switch draft.Proposal.Action {
	case models.InferenceActionCreateNew:
		kind = models.ProposalKindCreateTable
	case models.InferenceActionExtendExisting:
		kind = models.ProposalKindExtendTable
	}

	decision, err := p.decide(ctx, kind, draft)
	if err != nil {
		slog.Warn("ingestion: governance unavailable, treating per fallback policy", "path", draft.Path, "error", err)
	}

	if decision.Approved {
		p.insert(ctx, draft)
		return
	}
	if decision.Pending {
		p.pendingMu.Lock()
		p.pending[decision.UpdateID] = &pendingApproval{draft: draft, submitted: time.Now().UTC()}
		p.pendingMu.Unlock()
		return
	}
	p.recordInsight(ctx, draft, "rejected", decision.Reason, nil)
}

// decide submits to the Governance Gateway when configured; when no
// gateway is wired, use_existing proposals are locally auto-approvable
// and every other action becomes pending (spec §4.11 "Governance
// unavailable" fallback), except that with AutoApproveLowRisk set any
// action at low risk (confidence >= 0.9) is also auto-approved.
func (p *Pipeline) decide(ctx context.Context, kind models.ProposalKind, draft *Draft) (*models.GovernanceDecision, error) {
	if p.governance == nil {
		autoApprove := draft.Proposal.Action == models.InferenceActionUseExisting
		if p.cfg.AutoApproveLowRisk && riskFor(draft.Proposal.Confidence) == config.RiskLow {
			autoApprove = true
		}
		if autoApprove {
			return &models.GovernanceDecision{UpdateID: uuid.NewString(), Approved: true}, nil
		}
		return &models.GovernanceDecision{UpdateID: uuid.NewString(), Pending: true, Reason: "governance gateway unavailable"}, nil
	}

	content := map[string]any{
		"path":     draft.Path,
		"fields":   draft.Proposal.ExtractedFields,
		"analysis": draft.Analysis,
	}
	return p.governance.Submit(ctx, governance.SubmitRequest{
		Kind:       kind,
		Targets:    []string{draft.Proposal.TargetTable},
		Content:    content,
		Risk:       riskFor(draft.Proposal.Confidence),
		CreatedBy:  "ingestion_pipeline",
		Confidence: draft.Proposal.Confidence,
		Reasoning:  draft.Proposal.Reasoning,
	})
}

// insert hands the draft to the Lifecycle Manager as an ingestion job;
// on success it notifies the Training Trigger and publishes row_inserted
// (spec §4.11 approval step 4).
func (p *Pipeline) insert(ctx context.Context, draft *Draft) {
	if p.lifecycle == nil {
		p.recordInsight(ctx, draft, "insert", "no lifecycle manager wired", nil)
		return
	}

	row := draft.Proposal.ExtractedFields
	job := &models.Job{
		Payload: map[string]any{
			"table":                 draft.Proposal.TargetTable,
			"row":                   row,
			"upsert_on_fingerprint": true,
		},
	}

	result, err := p.lifecycle.ExecuteJob(ctx, config.AgentKindIngestion, job, true)
	if err != nil {
		p.recordInsight(ctx, draft, "insert", err.Error(), map[string]any{"table": draft.Proposal.TargetTable})
		return
	}

	table, _ := result.Result["table"].(string)
	if p.training != nil && table != "" {
		p.training.OnInserted(ctx, table)
	}
	if p.bus != nil {
		p.bus.Publish("row_inserted", map[string]any{
			"table": table,
			"id":    result.Result["id"],
			"path":  draft.Path,
		})
	}
}

// expireStalePending discards drafts that have waited past the configured
// staleness policy (spec §4.11: "stale-pending (discarded after a policy
// age)" is a terminal state).
func (p *Pipeline) expireStalePending(ctx context.Context) {
	maxAge := p.cfg.StalePendingMaxAge
	if maxAge <= 0 {
		return
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	p.pendingMu.Lock()
	var expired []*pendingApproval
	for id, pa := range p.pending {
		if pa.submitted.Before(cutoff) {
			expired = append(expired, pa)
			delete(p.pending, id)
		}
	}
	p.pendingMu.Unlock()

	for _, pa := range expired {
		p.recordInsight(ctx, pa.draft, "stale_pending", "discarded after staleness policy age", nil)
	}
}

// Approve resolves a pending draft manually (Control Plane API
// POST /auto-ingest/approve). On approval it proceeds through insert;
// on denial it records an insight and drops the draft.
func (p *Pipeline) Approve(ctx context.Context, approvalID string, approved bool, reason string) error {
	p.pendingMu.Lock()
	pa, ok := p.pending[approvalID]
	if ok {
		delete(p.pending, approvalID)
	}
	p.pendingMu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, approvalID)
	}

	if p.governance != nil {
		if _, err := p.governance.Resolve(ctx, approvalID, approved, reason); err != nil {
			slog.Warn("ingestion: failed to record governance resolution", "approval_id", approvalID, "error", err)
		}
	}

	if !approved {
		p.recordInsight(ctx, pa.draft, "rejected", reason, nil)
		return nil
	}
	p.insert(ctx, pa.draft)
	return nil
}

func (p *Pipeline) recordInsight(ctx context.Context, draft *Draft, stage, reason string, detail map[string]any) {
	if p.db == nil {
		slog.Warn("ingestion: insight", "path", draft.Path, "stage", stage, "reason", reason)
		return
	}
	var detailJSON []byte
	if detail != nil {
		detailJSON, _ = json.Marshal(detail)
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO ingestion_insights (id, path, target_table, stage, reason, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, uuid.NewString(), draft.Path, draft.Proposal.TargetTable, stage, reason, detailJSON)
	if err != nil {
		slog.Warn("ingestion: failed to persist insight", "path", draft.Path, "error", err)
	}
}
