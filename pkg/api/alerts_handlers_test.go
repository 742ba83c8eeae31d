package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aldicp/aldicp/pkg/alerts"
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/contradiction"
	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/trust"
)

type fakeTrustReporter struct{ report *trust.Report }

func (f *fakeTrustReporter) Report(ctx context.Context) (*trust.Report, error) { return f.report, nil }

type fakeContradictionSummarizer struct{ summary *contradiction.Summary }

func (f *fakeContradictionSummarizer) Summary(ctx context.Context, limit int) (*contradiction.Summary, error) {
	return f.summary, nil
}

func testAlertsServer() (*Server, *alerts.System) {
	cfg := config.AlertsConfig{
		LowTrustAvgThreshold:      0.5,
		LowTrustRatioThreshold:    0.3,
		TotalContradictionWarning: 50,
		HistorySize:               100,
	}
	sys := alerts.New(cfg, nil,
		&fakeTrustReporter{report: &trust.Report{PerTable: map[string]trust.TableStats{
			"memory_documents": {Avg: 0.2, Total: 10, LowCount: 8},
		}}},
		&fakeContradictionSummarizer{summary: &contradiction.Summary{}},
	)
	s := testServer().SetAlerts(sys)
	return s, sys
}

func TestHandleAlertsActive_ReturnsEmittedAlerts(t *testing.T) {
	s, sys := testAlertsServer()
	assert.NoError(t, sys.Check(context.Background()))

	rec := doJSON(t, s, "GET", "/alerts/active", nil)
	assertStatus(t, rec, http.StatusOK)

	var body map[string][]models.Alert
	decodeJSON(t, rec, &body)
	assert.NotEmpty(t, body["alerts"])
}

func TestHandleAlertsSummary_CountsActiveAlerts(t *testing.T) {
	s, sys := testAlertsServer()
	_ = sys.Check(context.Background())

	rec := doJSON(t, s, "GET", "/alerts/summary", nil)
	assertStatus(t, rec, http.StatusOK)

	var summary alerts.SummaryCounts
	decodeJSON(t, rec, &summary)
	assert.Greater(t, summary.Active, 0)
}

func TestHandleAlertAcknowledge_UnknownIDFails(t *testing.T) {
	s, _ := testAlertsServer()

	rec := doJSON(t, s, "POST", "/alerts/acknowledge", map[string]any{"id": "does-not-exist"})
	assertStatus(t, rec, http.StatusNotFound)
}

func TestHandleAlertAcknowledgeAndResolve_RoundTrip(t *testing.T) {
	s, sys := testAlertsServer()
	_ = sys.Check(context.Background())

	active := sys.Active(nil)
	if len(active) == 0 {
		t.Fatal("expected at least one active alert")
	}
	id := active[0].ID

	rec := doJSON(t, s, "POST", "/alerts/acknowledge", map[string]any{"id": id})
	assertStatus(t, rec, http.StatusOK)

	rec = doJSON(t, s, "POST", "/alerts/resolve", map[string]any{"id": id})
	assertStatus(t, rec, http.StatusOK)
}

func TestHandleAlertsMonitoringStartStop_BothReturnOK(t *testing.T) {
	s, _ := testAlertsServer()

	rec := doJSON(t, s, "POST", "/alerts/monitoring/start", map[string]any{"interval_seconds": 1})
	assertStatus(t, rec, http.StatusOK)

	rec = doJSON(t, s, "POST", "/alerts/monitoring/stop", nil)
	assertStatus(t, rec, http.StatusOK)
}
