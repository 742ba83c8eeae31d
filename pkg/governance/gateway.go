// Package governance implements the Governance Gateway (C4, spec §4.4): a
// risk-tiered approval gate in front of every schema mutation and row
// insert the rest of the control plane wants to make. The gateway is
// treated as a potentially-unavailable remote service; callers always get
// back a normalized decision, never a transport error.
package governance

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

// SubmitRequest is the payload passed to Submit (spec §4.4).
type SubmitRequest struct {
	Kind       models.ProposalKind
	Targets    []string
	Content    map[string]any
	Risk       config.RiskTier
	CreatedBy  string
	Confidence float64
	Reasoning  string
}

// Gateway evaluates risk-tiered approval decisions and audits them.
type Gateway struct {
	cfg        config.GovernanceConfig
	httpClient *http.Client
	db         *sql.DB

	mu      sync.Mutex
	pending map[string]*models.SchemaProposal
}

// New constructs a Gateway. db is used for the append-only audit log and
// may be nil in tests that don't need persistence.
func New(cfg config.GovernanceConfig, db *sql.DB) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		db:         db,
		pending:    make(map[string]*models.SchemaProposal),
	}
}

// Submit evaluates req against the risk-tier policy (spec §4.4). If an
// external endpoint is configured, it forwards the proposal there and the
// endpoint's normalized response replaces the local decision.
// Submit never returns a transport error to the caller: an unreachable
// gateway degrades to approved=false, pending=true with a generated
// correlation ID.
func (g *Gateway) Submit(ctx context.Context, req SubmitRequest) (*models.GovernanceDecision, error) {
	updateID := uuid.NewString()
	decision := g.decide(updateID, req)

	if g.cfg.Endpoint != "" {
		if remote, err := g.notifyRemote(ctx, updateID, req, decision); err != nil {
			slog.Warn("governance gateway unreachable, falling back to pending",
				"endpoint", g.cfg.Endpoint, "error", err)
			decision = &models.GovernanceDecision{
				UpdateID: updateID,
				Approved: false,
				Pending:  true,
				Reason:   fmt.Sprintf("gateway unavailable: %v", err),
			}
		} else {
			decision = remote
		}
	}

	proposal := &models.SchemaProposal{
		ID:          updateID,
		Kind:        req.Kind,
		TargetTable: firstOr(req.Targets, ""),
		Payload:     req.Content,
		Confidence:  req.Confidence,
		Reasoning:   req.Reasoning,
		SourceRef:   req.CreatedBy,
		State:       stateFor(decision),
		CreatedAt:   time.Now().UTC(),
	}

	g.mu.Lock()
	if decision.Pending {
		g.pending[updateID] = proposal
	}
	g.mu.Unlock()

	g.persistProposal(ctx, proposal)
	g.audit(ctx, "governance_submit", req.CreatedBy, map[string]any{
		"update_id": updateID,
		"kind":      req.Kind,
		"risk":      req.Risk,
		"approved":  decision.Approved,
		"pending":   decision.Pending,
	})

	return decision, nil
}

// decide applies the local risk-tier auto-approve policy (spec §4.4).
func (g *Gateway) decide(updateID string, req SubmitRequest) *models.GovernanceDecision {
	switch req.Risk {
	case config.RiskLow:
		return &models.GovernanceDecision{UpdateID: updateID, Approved: true, Reason: "low risk auto-approved"}
	case config.RiskMedium:
		if req.Confidence >= g.cfg.ConfidenceFloor {
			return &models.GovernanceDecision{UpdateID: updateID, Approved: true, Reason: "medium risk above confidence floor"}
		}
		return &models.GovernanceDecision{UpdateID: updateID, Pending: true, Reason: "medium risk below confidence floor"}
	default: // high, critical
		return &models.GovernanceDecision{UpdateID: updateID, Pending: true, Reason: fmt.Sprintf("%s risk requires external review", req.Risk)}
	}
}

func stateFor(d *models.GovernanceDecision) models.ProposalState {
	switch {
	case d.Pending:
		return models.ProposalStatePending
	case d.Approved:
		return models.ProposalStateAutoApproved
	default:
		return models.ProposalStateRejected
	}
}

// notifyRemote posts the proposal to the configured external gateway and
// normalizes its response. Per spec §9 "Governance response polymorphism"
// the body may be a structured object or a bare string correlation ID.
func (g *Gateway) notifyRemote(ctx context.Context, updateID string, req SubmitRequest, local *models.GovernanceDecision) (*models.GovernanceDecision, error) {
	body, err := json.Marshal(map[string]any{
		"update_id":  updateID,
		"kind":       req.Kind,
		"targets":    req.Targets,
		"content":    req.Content,
		"risk":       req.Risk,
		"created_by": req.CreatedBy,
		"confidence": req.Confidence,
		"approved":   local.Approved,
		"pending":    local.Pending,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return parseGatewayResponse(raw, updateID)
}

func parseGatewayResponse(raw []byte, updateID string) (*models.GovernanceDecision, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &models.GovernanceDecision{UpdateID: asString, Pending: true, Reason: "awaiting external correlation"}, nil
	}

	var structured struct {
		UpdateID string `json:"update_id"`
		Approved bool   `json:"approved"`
		Pending  bool   `json:"pending"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &structured); err != nil {
		return nil, fmt.Errorf("unrecognized gateway response: %w", err)
	}
	if structured.UpdateID == "" {
		structured.UpdateID = updateID
	}
	return &models.GovernanceDecision{
		UpdateID: structured.UpdateID,
		Approved: structured.Approved,
		Pending:  structured.Pending,
		Reason:   structured.Reason,
	}, nil
}

// EmitRevocation records a high-risk audit event for an agent revocation
// (spec §4.10: "emits a high-risk governance event noting the reason").
func (g *Gateway) EmitRevocation(ctx context.Context, agentID, reason string) {
	g.audit(ctx, "agent_revoked", agentID, map[string]any{
		"agent_id": agentID,
		"reason":   reason,
		"risk":     config.RiskHigh,
	})
}

// Pending returns the proposal awaiting decision under id, if any.
func (g *Gateway) Pending(id string) (*models.SchemaProposal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[id]
	return p, ok
}

// Resolve records an external decision for a previously-pending proposal,
// e.g. when a human reviewer approves or rejects a high-risk proposal.
func (g *Gateway) Resolve(ctx context.Context, id string, approved bool, reason string) (*models.SchemaProposal, error) {
	g.mu.Lock()
	p, ok := g.pending[id]
	if ok {
		delete(g.pending, id)
	}
	g.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: proposal %s", models.ErrNotFound, id)
	}

	now := time.Now().UTC()
	p.DecidedAt = &now
	if approved {
		p.State = models.ProposalStateApproved
	} else {
		p.State = models.ProposalStateRejected
	}
	p.Reasoning = reason

	g.persistProposal(ctx, p)
	g.audit(ctx, "governance_resolve", "", map[string]any{
		"update_id": id,
		"approved":  approved,
		"reason":    reason,
	})
	return p, nil
}

// PruneStalePending discards proposals that have sat undecided longer than
// maxAge, marking each rejected-by-timeout in the audit log before
// dropping it (spec §4.11 stale-pending terminal state; called by the
// retention cleanup loop, not the ingestion pipeline's own draft
// staleness pass, which tracks drafts rather than governance proposals).
func (g *Gateway) PruneStalePending(ctx context.Context, maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	g.mu.Lock()
	var expired []*models.SchemaProposal
	for id, p := range g.pending {
		if p.CreatedAt.Before(cutoff) {
			expired = append(expired, p)
			delete(g.pending, id)
		}
	}
	g.mu.Unlock()

	for _, p := range expired {
		now := time.Now().UTC()
		p.DecidedAt = &now
		p.State = models.ProposalStateRejected
		p.Reasoning = "discarded: stale pending past retention policy age"
		g.persistProposal(ctx, p)
		g.audit(ctx, "governance_stale_discard", p.SourceRef, map[string]any{"update_id": p.ID})
	}
	return len(expired)
}

func firstOr(items []string, fallback string) string {
	if len(items) > 0 {
		return items[0]
	}
	return fallback
}
