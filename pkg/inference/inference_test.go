package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aldicp/aldicp/pkg/models"
)

func TestPropose_UseExistingWhenTableKnown(t *testing.T) {
	inf := New()
	analysis := &models.Analysis{
		Category: models.CategoryDocument,
		Features: map[string]any{"title": "Alpha", "token_count": 2},
	}

	proposal := inf.Propose(analysis, []string{"memory_documents"})

	assert.Equal(t, models.InferenceActionUseExisting, proposal.Action)
	assert.Equal(t, "memory_documents", proposal.TargetTable)
	assert.False(t, proposal.Degraded)
}

func TestPropose_CreateNewWhenConfidentAndUnknown(t *testing.T) {
	inf := New()
	analysis := &models.Analysis{
		Category: models.CategoryCode,
		Features: map[string]any{
			"language":  "go",
			"imports":   3,
			"classes":   1,
			"functions": 4,
			"lines":     120,
		},
	}

	proposal := inf.Propose(analysis, nil)

	assert.Equal(t, models.InferenceActionCreateNew, proposal.Action)
	assert.Equal(t, "memory_code", proposal.TargetTable)
	assert.GreaterOrEqual(t, proposal.Confidence, ConfidenceThreshold)
}

func TestPropose_DegradesWhenLowConfidenceAndUnknown(t *testing.T) {
	inf := New()
	analysis := &models.Analysis{
		Category: models.CategoryDataset,
		Errors:   []string{"truncated read"},
		Features: map[string]any{"column_count": 0, "row_count": 0},
	}

	proposal := inf.Propose(analysis, nil)

	assert.Equal(t, models.InferenceActionUseExisting, proposal.Action)
	assert.True(t, proposal.Degraded)
	assert.Less(t, proposal.Confidence, ConfidenceThreshold)
}

func TestPropose_UnknownCategoryFallsBackToUnclassified(t *testing.T) {
	inf := New()
	analysis := &models.Analysis{Category: models.CategoryUnknown, Features: map[string]any{}}

	proposal := inf.Propose(analysis, nil)

	assert.Equal(t, "memory_unclassified", proposal.TargetTable)
	assert.True(t, proposal.Degraded)
}

func TestPropose_ExtractedFieldsIncludesPath(t *testing.T) {
	inf := New()
	analysis := &models.Analysis{
		Path:     "/tmp/doc.txt",
		Category: models.CategoryDocument,
		Features: map[string]any{"title": "Alpha"},
	}

	proposal := inf.Propose(analysis, []string{"memory_documents"})

	assert.Equal(t, "/tmp/doc.txt", proposal.ExtractedFields["path"])
	assert.Equal(t, "Alpha", proposal.ExtractedFields["title"])
}
