package agent

import (
	"context"
	"fmt"

	"github.com/aldicp/aldicp/pkg/models"
)

// Analyzer is the subset of *analyzer.Analyzer a SchemaInferenceAgent needs.
type Analyzer interface {
	Analyze(path string) *models.Analysis
}

// Inferrer is the subset of *inference.Inferrer a SchemaInferenceAgent needs.
type Inferrer interface {
	Propose(analysis *models.Analysis, knownTables []string) *models.InferenceProposal
}

// TableLister supplies the known-table set Propose ties its decision to.
type TableLister interface {
	List() []string
}

// SchemaInferenceAgent is a read-only specialist: analyze a file, return a
// schema proposal plus extracted fields (spec §4.9).
type SchemaInferenceAgent struct {
	analyzer Analyzer
	inferrer Inferrer
	tables   TableLister
}

// NewSchemaInferenceAgent constructs the variant.
func NewSchemaInferenceAgent(analyzer Analyzer, inferrer Inferrer, tables TableLister) *SchemaInferenceAgent {
	return &SchemaInferenceAgent{analyzer: analyzer, inferrer: inferrer, tables: tables}
}

// Execute expects job.Payload["path"] and analyzes + proposes against it.
func (s *SchemaInferenceAgent) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	path, ok := job.Payload["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: schema_inference job requires a path", models.ErrValidation)
	}

	analysis := s.analyzer.Analyze(path)
	if len(analysis.Errors) > 0 && analysis.Category == models.CategoryUnknown {
		return nil, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, analysis.Errors)
	}

	proposal := s.inferrer.Propose(analysis, s.tables.List())

	return map[string]any{
		"analysis": analysis,
		"proposal": proposal,
	}, nil
}
