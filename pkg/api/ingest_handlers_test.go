package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/ingestion"
	"github.com/aldicp/aldicp/pkg/models"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(path string) *models.Analysis {
	return &models.Analysis{Path: path, Category: models.CategoryDocument, Features: map[string]any{}}
}

type stubInferrer struct{}

func (stubInferrer) Propose(analysis *models.Analysis, knownTables []string) *models.InferenceProposal {
	return &models.InferenceProposal{Action: models.InferenceActionCreateNew, TargetTable: "memory_documents", Confidence: 0.5, ExtractedFields: map[string]any{"path": analysis.Path}}
}

type stubTables struct{}

func (stubTables) List() []string { return nil }
func (stubTables) Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error) {
	return nil, nil
}

func testIngestServer() *Server {
	p := ingestion.New(config.IngestionConfig{}, stubAnalyzer{}, stubInferrer{}, stubTables{}, nil, nil, nil, nil, nil)
	return testServer().SetIngestion(p)
}

func TestHandleIngestStartStop_BothReturnOK(t *testing.T) {
	s := testIngestServer()

	rec := doJSON(t, s, "POST", "/auto-ingest/start", nil)
	assertStatus(t, rec, http.StatusOK)

	rec = doJSON(t, s, "POST", "/auto-ingest/stop", nil)
	assertStatus(t, rec, http.StatusOK)
}

func TestHandleIngestPending_EmptyWhenNothingStaged(t *testing.T) {
	s := testIngestServer()

	rec := doJSON(t, s, "GET", "/auto-ingest/pending", nil)
	assertStatus(t, rec, http.StatusOK)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.Empty(t, body["pending"])
}

func TestHandleIngestApprove_UnknownIDFails(t *testing.T) {
	s := testIngestServer()

	rec := doJSON(t, s, "POST", "/auto-ingest/approve", map[string]any{"approval_id": "missing", "approved": true})
	assertStatus(t, rec, http.StatusNotFound)
}
