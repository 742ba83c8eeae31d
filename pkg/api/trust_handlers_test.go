package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/trust"
)

type fakeRowStore struct {
	def  *models.SchemaDefinition
	rows []*models.Row
}

func (f *fakeRowStore) Schema(table string) (*models.SchemaDefinition, bool) {
	if f.def == nil || table != f.def.TableName {
		return nil, false
	}
	return f.def, true
}
func (f *fakeRowStore) List() []string {
	if f.def == nil {
		return nil
	}
	return []string{f.def.TableName}
}
func (f *fakeRowStore) Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error) {
	return f.rows, nil
}
func (f *fakeRowStore) SetTrustScore(ctx context.Context, table, id string, score float64) error {
	return nil
}

type fakeContradictionSource struct{}

func (fakeContradictionSource) Detect(ctx context.Context, table string, limit int) ([]models.ContradictionRecord, error) {
	return nil, nil
}

func testDef() *models.SchemaDefinition {
	return &models.SchemaDefinition{
		TableName: "memory_documents",
		Fields: []models.Field{
			{Name: "id", Type: models.FieldTypeString, PrimaryKey: true},
			{Name: "path", Type: models.FieldTypeString, Required: true},
		},
	}
}

func testTrustServer() *Server {
	store := &fakeRowStore{
		def: testDef(),
		rows: []*models.Row{
			{Table: "memory_documents", Values: map[string]any{"id": "1", "path": "a.txt"}, TrustScore: 0.9, CreatedAt: time.Now()},
		},
	}
	engine := trust.New(store, fakeContradictionSource{})
	return testServer().SetTrust(engine)
}

func TestHandleTrustReport_AggregatesPerTableStats(t *testing.T) {
	s := testTrustServer()

	rec := doJSON(t, s, "GET", "/trust/report", nil)
	assertStatus(t, rec, http.StatusOK)

	var report trust.Report
	decodeJSON(t, rec, &report)
	assert.Equal(t, 1, report.PerTable["memory_documents"].Total)
}

func TestHandleTrustRescore_UnknownTableFails(t *testing.T) {
	s := testTrustServer()

	rec := doJSON(t, s, "POST", "/trust/rescore", map[string]any{"table": "not_a_table"})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleTrustRescore_RescoresKnownTable(t *testing.T) {
	s := testTrustServer()

	rec := doJSON(t, s, "POST", "/trust/rescore", map[string]any{"table": "memory_documents"})
	assertStatus(t, rec, http.StatusOK)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.EqualValues(t, 1, body["rescored"])
}
