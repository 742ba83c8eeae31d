// Package inference implements Schema Inference (spec §4.3): given a
// Content Analyzer result and the set of tables the Schema Registry
// already knows about, it proposes whether to reuse, extend, or create a
// target table, together with the fields extracted from the analysis.
package inference

import (
	"fmt"

	"github.com/aldicp/aldicp/pkg/models"
)

// ConfidenceThreshold is the tie-break point between create_new and a
// degraded use_existing fallback (spec §4.3).
const ConfidenceThreshold = 0.7

// Inferrer is stateless; a single instance may be shared across goroutines.
type Inferrer struct{}

// New constructs an Inferrer.
func New() *Inferrer {
	return &Inferrer{}
}

var categoryDefaultTable = map[models.Category]string{
	models.CategoryDocument: "memory_documents",
	models.CategoryCode:     "memory_code",
	models.CategoryDataset:  "memory_datasets",
	models.CategoryMedia:    "memory_media",
}

// Propose derives an InferenceProposal from analysis, preferring
// use_existing when the category's default table is already known,
// falling back to create_new only when confidence clears the threshold,
// and otherwise degrading gracefully to use_existing (spec §4.3).
func (i *Inferrer) Propose(analysis *models.Analysis, knownTables []string) *models.InferenceProposal {
	defaultTable, hasDefault := categoryDefaultTable[analysis.Category]
	if !hasDefault {
		defaultTable = "memory_unclassified"
	}

	known := contains(knownTables, defaultTable)
	confidence := computeConfidence(analysis)

	proposal := &models.InferenceProposal{
		TargetTable:     defaultTable,
		Confidence:      confidence,
		ExtractedFields: extractFields(analysis),
	}

	switch {
	case known:
		proposal.Action = models.InferenceActionUseExisting
		proposal.Reasoning = fmt.Sprintf("category %q maps to known table %q", analysis.Category, defaultTable)
	case confidence >= ConfidenceThreshold:
		proposal.Action = models.InferenceActionCreateNew
		proposal.Reasoning = fmt.Sprintf("category %q is new with confidence %.2f ≥ %.2f", analysis.Category, confidence, ConfidenceThreshold)
	default:
		proposal.Action = models.InferenceActionUseExisting
		proposal.Degraded = true
		proposal.Reasoning = fmt.Sprintf("confidence %.2f < %.2f, degrading to use_existing against category default", confidence, ConfidenceThreshold)
	}

	return proposal
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// computeConfidence scores how well-formed the analysis is: more populated
// features and absence of analyzer errors raise confidence.
func computeConfidence(analysis *models.Analysis) float64 {
	if analysis.Category == models.CategoryUnknown {
		return 0.2
	}

	score := 0.5
	nonEmpty := 0
	for _, v := range analysis.Features {
		if !isZero(v) {
			nonEmpty++
		}
	}
	if len(analysis.Features) > 0 {
		score += 0.4 * float64(nonEmpty) / float64(len(analysis.Features))
	}
	if len(analysis.Errors) > 0 {
		score -= 0.2
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func isZero(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case []string:
		return len(t) == 0
	default:
		return v == nil
	}
}

func extractFields(analysis *models.Analysis) map[string]any {
	fields := map[string]any{
		"path": analysis.Path,
	}
	for k, v := range analysis.Features {
		fields[k] = v
	}
	return fields
}
