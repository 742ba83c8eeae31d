package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aldicp/aldicp/pkg/models"
)

func testDef() *models.SchemaDefinition {
	return &models.SchemaDefinition{
		TableName: "memory_documents",
		Fields: []models.Field{
			{Name: "id", Type: models.FieldTypeUUID, PrimaryKey: true, Generated: true},
			{Name: "path", Type: models.FieldTypeString, Required: true},
			{Name: "title", Type: models.FieldTypeString, Nullable: true},
		},
	}
}

func TestScore_CompleteRowWithNoContradictionsScoresHigh(t *testing.T) {
	e := New(nil, nil)
	row := &models.Row{
		Values: map[string]any{
			"id":    "row-1",
			"path":  "/tmp/a.txt",
			"title": "Alpha",
		},
		GovernanceStamp: map[string]any{"created_by": "grace"},
		CreatedAt:       time.Now(),
	}

	score := e.Score(testDef(), row, "row-1", nil)
	assert.Greater(t, score, HighThreshold-0.1)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScore_MissingRequiredFieldLowersCompleteness(t *testing.T) {
	e := New(nil, nil)
	complete := &models.Row{Values: map[string]any{"id": "row-1", "path": "/tmp/a.txt", "title": "Alpha"}, CreatedAt: time.Now()}
	incomplete := &models.Row{Values: map[string]any{"id": "row-2", "title": "Alpha"}, CreatedAt: time.Now()}

	scoreComplete := e.Score(testDef(), complete, "row-1", nil)
	scoreIncomplete := e.Score(testDef(), incomplete, "row-2", nil)

	assert.Less(t, scoreIncomplete, scoreComplete)
}

func TestScore_OldRowHasLowerFreshness(t *testing.T) {
	e := New(nil, nil)
	fresh := &models.Row{Values: map[string]any{"id": "1", "path": "/a"}, CreatedAt: time.Now()}
	stale := &models.Row{Values: map[string]any{"id": "2", "path": "/a"}, CreatedAt: time.Now().Add(-365 * 24 * time.Hour)}

	assert.Greater(t, e.Score(testDef(), fresh, "1", nil), e.Score(testDef(), stale, "2", nil))
}

func TestScore_ContradictionsLowerConsistency(t *testing.T) {
	e := New(nil, nil)
	row := &models.Row{Values: map[string]any{"id": "row-1", "path": "/a"}, CreatedAt: time.Now()}

	clean := e.Score(testDef(), row, "row-1", nil)
	withContradiction := e.Score(testDef(), row, "row-1", []models.ContradictionRecord{
		{RowIDs: []string{"row-1"}, Severity: models.SeverityCritical},
	})

	assert.Less(t, withContradiction, clean)
}

func TestScore_NeverNaNOrOutOfRange(t *testing.T) {
	e := New(nil, nil)
	row := &models.Row{Values: map[string]any{}}

	score := e.Score(testDef(), row, "row-1", []models.ContradictionRecord{
		{RowIDs: []string{"row-1"}, Severity: models.SeverityCritical},
		{RowIDs: []string{"row-1"}, Severity: models.SeverityCritical},
		{RowIDs: []string{"row-1"}, Severity: models.SeverityCritical},
	})

	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	assert.False(t, score != score) // NaN check
}
