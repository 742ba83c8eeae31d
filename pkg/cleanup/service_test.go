package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/agent"
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/lifecycle"
	"github.com/aldicp/aldicp/pkg/models"
)

type noopVariant struct{}

func (noopVariant) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

func newTestLifecycle() *lifecycle.Manager {
	factory := func(kind config.AgentKind, instanceID string) (*agent.Agent, error) {
		return agent.New(kind, instanceID, []string{"cap"}, models.Constraints{}, noopVariant{}), nil
	}
	return lifecycle.New(config.LifecycleConfig{
		MaxAgentLifetimeMinutes: 60,
		MaxIdleMinutes:          10,
		MinTrustThreshold:       0.1,
		HeartbeatStaleSeconds:   120,
		MaxConcurrentJobs:       3,
		MonitorIntervalSecs:     30,
	}, factory, nil, nil)
}

func TestPruneCompletedJobs_EvictsOldResultsOnly(t *testing.T) {
	lm := newTestLifecycle()
	_, err := lm.ExecuteJob(context.Background(), config.AgentKindIngestion, &models.Job{ID: "old"}, false)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	cfg := &config.RetentionConfig{
		CompletedJobRetention: 1 * time.Millisecond,
		StaleProposalMaxAge:   time.Hour,
		CleanupInterval:       time.Hour,
	}
	svc := NewService(cfg, lm, nil)
	svc.runAll(context.Background())

	_, err = lm.CompletedJob("old")
	assert.ErrorIs(t, err, models.ErrUnknownJob)
}

func TestPruneCompletedJobs_PreservesRecentResults(t *testing.T) {
	lm := newTestLifecycle()
	_, err := lm.ExecuteJob(context.Background(), config.AgentKindIngestion, &models.Job{ID: "fresh"}, false)
	require.NoError(t, err)

	cfg := &config.RetentionConfig{
		CompletedJobRetention: time.Hour,
		StaleProposalMaxAge:   time.Hour,
		CleanupInterval:       time.Hour,
	}
	svc := NewService(cfg, lm, nil)
	svc.runAll(context.Background())

	result, err := lm.CompletedJob("fresh")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestPruneStaleProposals_DiscardsOldPendingProposals(t *testing.T) {
	gw := governance.New(config.GovernanceConfig{}, nil)
	_, err := gw.Submit(context.Background(), governance.SubmitRequest{
		Kind:       models.ProposalKindInsertRow,
		Targets:    []string{"memory_documents"},
		Risk:       config.RiskHigh,
		CreatedBy:  "test",
		Confidence: 0.5,
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	cfg := &config.RetentionConfig{
		CompletedJobRetention: time.Hour,
		StaleProposalMaxAge:   1 * time.Millisecond,
		CleanupInterval:       time.Hour,
	}
	svc := NewService(cfg, nil, gw)
	svc.runAll(context.Background())

	count := gw.PruneStalePending(context.Background(), 1*time.Millisecond)
	assert.Equal(t, 0, count, "already pruned by runAll, nothing left to discard")
}
