package governance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

func TestSubmit_LowRiskAutoApproves(t *testing.T) {
	g := New(config.GovernanceConfig{ConfidenceFloor: 0.8}, nil)

	decision, err := g.Submit(context.Background(), SubmitRequest{
		Kind: models.ProposalKindInsertRow,
		Risk: config.RiskLow,
	})

	require.NoError(t, err)
	assert.True(t, decision.Approved)
	assert.False(t, decision.Pending)
}

func TestSubmit_MediumRiskAboveFloorApproves(t *testing.T) {
	g := New(config.GovernanceConfig{ConfidenceFloor: 0.8}, nil)

	decision, err := g.Submit(context.Background(), SubmitRequest{
		Kind:       models.ProposalKindInsertRow,
		Risk:       config.RiskMedium,
		Confidence: 0.9,
	})

	require.NoError(t, err)
	assert.True(t, decision.Approved)
}

func TestSubmit_MediumRiskBelowFloorPends(t *testing.T) {
	g := New(config.GovernanceConfig{ConfidenceFloor: 0.8}, nil)

	decision, err := g.Submit(context.Background(), SubmitRequest{
		Kind:       models.ProposalKindInsertRow,
		Risk:       config.RiskMedium,
		Confidence: 0.5,
	})

	require.NoError(t, err)
	assert.False(t, decision.Approved)
	assert.True(t, decision.Pending)
}

func TestSubmit_HighRiskAlwaysPends(t *testing.T) {
	g := New(config.GovernanceConfig{ConfidenceFloor: 0.8}, nil)

	decision, err := g.Submit(context.Background(), SubmitRequest{
		Kind: models.ProposalKindCreateTable,
		Risk: config.RiskHigh,
	})

	require.NoError(t, err)
	assert.True(t, decision.Pending)
	assert.False(t, decision.Approved)
	_, ok := g.Pending(decision.UpdateID)
	assert.True(t, ok)
}

func TestSubmit_RemoteGatewayStructuredResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"update_id": "ext-123", "approved": true})
	}))
	defer srv.Close()

	g := New(config.GovernanceConfig{Endpoint: srv.URL, ConfidenceFloor: 0.8}, nil)
	decision, err := g.Submit(context.Background(), SubmitRequest{Risk: config.RiskLow})

	require.NoError(t, err)
	assert.Equal(t, "ext-123", decision.UpdateID)
	assert.True(t, decision.Approved)
}

func TestSubmit_RemoteGatewayBareStringResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode("correlation-abc")
	}))
	defer srv.Close()

	g := New(config.GovernanceConfig{Endpoint: srv.URL, ConfidenceFloor: 0.8}, nil)
	decision, err := g.Submit(context.Background(), SubmitRequest{Risk: config.RiskLow})

	require.NoError(t, err)
	assert.Equal(t, "correlation-abc", decision.UpdateID)
	assert.True(t, decision.Pending)
}

func TestSubmit_RemoteGatewayUnavailableDegradesToPending(t *testing.T) {
	g := New(config.GovernanceConfig{Endpoint: "http://127.0.0.1:1", ConfidenceFloor: 0.8}, nil)

	decision, err := g.Submit(context.Background(), SubmitRequest{Risk: config.RiskLow})

	require.NoError(t, err)
	assert.False(t, decision.Approved)
	assert.True(t, decision.Pending)
	assert.NotEmpty(t, decision.UpdateID)
}

func TestResolve_UnknownIDFails(t *testing.T) {
	g := New(config.GovernanceConfig{}, nil)

	_, err := g.Resolve(context.Background(), "missing", true, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolve_ApprovesPendingProposal(t *testing.T) {
	g := New(config.GovernanceConfig{ConfidenceFloor: 0.8}, nil)
	decision, err := g.Submit(context.Background(), SubmitRequest{Risk: config.RiskHigh})
	require.NoError(t, err)

	resolved, err := g.Resolve(context.Background(), decision.UpdateID, true, "reviewed manually")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStateApproved, resolved.State)

	_, stillPending := g.Pending(decision.UpdateID)
	assert.False(t, stillPending)
}

func TestPruneStalePending_DiscardsOnlyProposalsOlderThanMaxAge(t *testing.T) {
	g := New(config.GovernanceConfig{}, nil)
	decision, err := g.Submit(context.Background(), SubmitRequest{Risk: config.RiskHigh})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	pruned := g.PruneStalePending(context.Background(), 1*time.Millisecond)
	assert.Equal(t, 1, pruned)

	_, stillPending := g.Pending(decision.UpdateID)
	assert.False(t, stillPending)
}

func TestPruneStalePending_PreservesRecentProposals(t *testing.T) {
	g := New(config.GovernanceConfig{}, nil)
	decision, err := g.Submit(context.Background(), SubmitRequest{Risk: config.RiskHigh})
	require.NoError(t, err)

	pruned := g.PruneStalePending(context.Background(), time.Hour)
	assert.Equal(t, 0, pruned)

	_, stillPending := g.Pending(decision.UpdateID)
	assert.True(t, stillPending)
}
