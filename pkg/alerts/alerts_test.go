package alerts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/contradiction"
	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/trust"
)

type fakeTrustReporter struct {
	report *trust.Report
	err    error
}

func (f *fakeTrustReporter) Report(ctx context.Context) (*trust.Report, error) {
	return f.report, f.err
}

type fakeContradictionSummarizer struct {
	summary *contradiction.Summary
	err     error
}

func (f *fakeContradictionSummarizer) Summary(ctx context.Context, limit int) (*contradiction.Summary, error) {
	return f.summary, f.err
}

func testCfg() config.AlertsConfig {
	return config.AlertsConfig{
		LowTrustAvgThreshold:      0.5,
		LowTrustRatioThreshold:    0.3,
		TotalContradictionWarning: 50,
		HistorySize:               100,
	}
}

func TestCheck_LowAverageTrustEmitsWarning(t *testing.T) {
	tr := &fakeTrustReporter{report: &trust.Report{
		PerTable: map[string]trust.TableStats{"memory_documents": {Avg: 0.2, Total: 10, LowCount: 8}},
	}}
	sys := New(testCfg(), nil, tr, nil)

	require.NoError(t, sys.Check(context.Background()))

	active := sys.Active(nil)
	require.NotEmpty(t, active)
	assert.Equal(t, models.SeverityWarning, active[0].Severity)
}

func TestCheck_EmptyTableEmitsInfo(t *testing.T) {
	tr := &fakeTrustReporter{report: &trust.Report{
		PerTable: map[string]trust.TableStats{"memory_documents": {Total: 0}},
	}}
	sys := New(testCfg(), nil, tr, nil)

	require.NoError(t, sys.Check(context.Background()))

	sev := models.SeverityInfo
	active := sys.Active(&sev)
	require.Len(t, active, 1)
}

func TestCheck_CriticalContradictionsEmitCritical(t *testing.T) {
	contr := &fakeContradictionSummarizer{summary: &contradiction.Summary{CriticalCount: 2, Total: 2}}
	sys := New(testCfg(), nil, nil, contr)

	require.NoError(t, sys.Check(context.Background()))

	sev := models.SeverityCritical
	active := sys.Active(&sev)
	require.Len(t, active, 1)
}

func TestCheck_RecurringConditionPreservesFirstSeen(t *testing.T) {
	contr := &fakeContradictionSummarizer{summary: &contradiction.Summary{CriticalCount: 1, Total: 1}}
	sys := New(testCfg(), nil, nil, contr)

	require.NoError(t, sys.Check(context.Background()))
	first := sys.Active(nil)[0].FirstSeenAt

	require.NoError(t, sys.Check(context.Background()))
	second := sys.Active(nil)

	require.Len(t, second, 1)
	assert.Equal(t, first, second[0].FirstSeenAt)
}

func TestAcknowledgeAndResolve(t *testing.T) {
	contr := &fakeContradictionSummarizer{summary: &contradiction.Summary{CriticalCount: 1, Total: 1}}
	sys := New(testCfg(), nil, nil, contr)
	require.NoError(t, sys.Check(context.Background()))

	id := sys.Active(nil)[0].ID

	ok, err := sys.Acknowledge(id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sys.Resolve(id)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, sys.Active(nil))
}

func TestSummary_CountsBySeverity(t *testing.T) {
	contr := &fakeContradictionSummarizer{summary: &contradiction.Summary{CriticalCount: 1, Total: 60}}
	sys := New(testCfg(), nil, nil, contr)
	require.NoError(t, sys.Check(context.Background()))

	counts := sys.Summary()
	assert.Equal(t, 2, counts.Active) // critical_count condition + total_count condition
	assert.Equal(t, 1, counts.Critical)
	assert.Equal(t, 1, counts.Warning)
}
