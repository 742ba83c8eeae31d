package agent

import (
	"context"
	"fmt"

	"github.com/aldicp/aldicp/pkg/models"
)

// RowQuerier is the subset of *registry.Registry a CrossDomainLearningAgent
// needs to read across tables.
type RowQuerier interface {
	Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error)
}

// CrossDomainLearningAgent is a read-only specialist that runs a
// multi-table query spec and summarizes patterns (spec §4.9).
type CrossDomainLearningAgent struct {
	rows RowQuerier
}

// NewCrossDomainLearningAgent constructs the variant.
func NewCrossDomainLearningAgent(rows RowQuerier) *CrossDomainLearningAgent {
	return &CrossDomainLearningAgent{rows: rows}
}

// Execute expects job.Payload["tables"] ([]string) and an optional
// job.Payload["filters"] (map[string]any) applied identically to every
// table, summarizing row count and average trust per table.
func (a *CrossDomainLearningAgent) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	rawTables, ok := job.Payload["tables"].([]any)
	if !ok || len(rawTables) == 0 {
		return nil, fmt.Errorf("%w: cross_domain_learning job requires tables", models.ErrValidation)
	}
	filters, _ := job.Payload["filters"].(map[string]any)

	summary := make(map[string]any, len(rawTables))
	for _, t := range rawTables {
		table, ok := t.(string)
		if !ok {
			continue
		}
		rows, err := a.rows.Query(ctx, table, filters, 0, 0, "")
		if err != nil {
			summary[table] = map[string]any{"error": err.Error()}
			continue
		}
		var sum float64
		for _, row := range rows {
			sum += row.TrustScore
		}
		avg := 0.0
		if len(rows) > 0 {
			avg = sum / float64(len(rows))
		}
		summary[table] = map[string]any{
			"row_count":  len(rows),
			"avg_trust":  avg,
		}
	}

	return map[string]any{"patterns": summary}, nil
}
