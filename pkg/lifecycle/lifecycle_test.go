package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/agent"
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

type scriptedVariant struct {
	fail bool
}

func (v *scriptedVariant) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	if v.fail {
		return nil, assertErr{}
	}
	return map[string]any{"ok": true}, nil
}

type assertErr struct{}

func (assertErr) Error() string { return "scripted failure" }

func testFactory(fail bool) Factory {
	return func(kind config.AgentKind, instanceID string) (*agent.Agent, error) {
		return agent.New(kind, instanceID, []string{"cap"}, models.Constraints{}, &scriptedVariant{fail: fail}), nil
	}
}

func testCfg() config.LifecycleConfig {
	return config.LifecycleConfig{
		MaxAgentLifetimeMinutes: 60,
		MaxIdleMinutes:          10,
		MinTrustThreshold:       0.3,
		HeartbeatStaleSeconds:   120,
		MaxConcurrentJobs:       3,
		MonitorIntervalSecs:     30,
	}
}

func TestSpawn_UnknownKindFails(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	_, err := m.Spawn(context.Background(), config.AgentKind("bogus"), "")
	assert.ErrorIs(t, err, models.ErrUnknownAgentKind)
}

func TestExecuteJob_NonReuseTerminatesAfter(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	result, err := m.ExecuteJob(context.Background(), config.AgentKindIngestion, &models.Job{ID: "j1"}, false)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, m.Metrics().ActiveCount)
}

func TestExecuteJob_ReuseKeepsAgentActive(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	a, err := m.Spawn(context.Background(), config.AgentKindIngestion, "")
	require.NoError(t, err)

	result, err := m.ExecuteJob(context.Background(), config.AgentKindIngestion, &models.Job{ID: "j1"}, true)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, m.Metrics().ActiveCount)
	assert.Equal(t, 1, m.Metrics().ByKind[string(config.AgentKindIngestion)])
	assert.NotEmpty(t, a.Status().ID)
}

func TestExecuteJob_FailureBelowThresholdRevokesAgent(t *testing.T) {
	cfg := testCfg()
	cfg.MinTrustThreshold = 0.99 // force revoke on any failure
	m := New(cfg, testFactory(true), nil, nil)

	_, err := m.Spawn(context.Background(), config.AgentKindIngestion, "")
	require.NoError(t, err)

	_, err = m.ExecuteJob(context.Background(), config.AgentKindIngestion, &models.Job{ID: "j1"}, true)
	assert.Error(t, err)
	assert.Equal(t, 0, m.Metrics().ActiveCount)
	assert.Equal(t, 1, m.Metrics().RevokedCount)
}

func TestScanAndClaim_NeverDoubleClaimsSameAgent(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	_, err := m.Spawn(context.Background(), config.AgentKindIngestion, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	claims := make(chan *agent.Agent, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claims <- m.scanAndClaim(config.AgentKindIngestion)
		}()
	}
	wg.Wait()
	close(claims)

	var nonNil int
	for c := range claims {
		if c != nil {
			nonNil++
		}
	}
	assert.Equal(t, 1, nonNil)
}

func TestSubmitAndProcessQueue_DrainsAllJobs(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	for i := 0; i < 5; i++ {
		m.SubmitJob(config.AgentKindIngestion, &models.Job{})
	}

	m.ProcessQueue(context.Background(), 2)

	require.Eventually(t, func() bool {
		return m.Metrics().TotalJobsExecuted == 5
	}, time.Second, 10*time.Millisecond)
}

func TestRevoke_IsIdempotent(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	a, err := m.Spawn(context.Background(), config.AgentKindIngestion, "")
	require.NoError(t, err)

	m.Revoke(context.Background(), a.Status().ID, "test")
	m.Revoke(context.Background(), a.Status().ID, "test again")

	assert.Equal(t, 1, m.Metrics().RevokedCount)
}

func TestPruneCompleted_EvictsOnlyEntriesOlderThanMaxAge(t *testing.T) {
	m := New(testCfg(), testFactory(false), nil, nil)
	_, err := m.ExecuteJob(context.Background(), config.AgentKindIngestion, &models.Job{ID: "old"}, false)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	pruned := m.PruneCompleted(1 * time.Millisecond)
	assert.Equal(t, 1, pruned)

	_, err = m.CompletedJob("old")
	assert.ErrorIs(t, err, models.ErrUnknownJob)
}
