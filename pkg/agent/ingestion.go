package agent

import (
	"context"
	"fmt"

	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/registry"
)

// RowInserter is the subset of *registry.Registry an IngestionAgent needs.
type RowInserter interface {
	Insert(ctx context.Context, table string, row map[string]any, opts registry.InsertOptions) (*models.Row, error)
	Schema(table string) (*models.SchemaDefinition, bool)
	SetTrustScore(ctx context.Context, table, id string, score float64) error
}

// RowScorer is the subset of *trust.Engine an IngestionAgent needs.
type RowScorer interface {
	Score(def *models.SchemaDefinition, row *models.Row, rowID string, contradictions []models.ContradictionRecord) float64
}

// IngestionAgent is a worker: insert a row, then ask the Trust Engine to
// score and persist it (spec §4.9).
type IngestionAgent struct {
	rows   RowInserter
	scorer RowScorer
}

// NewIngestionAgent constructs the variant.
func NewIngestionAgent(rows RowInserter, scorer RowScorer) *IngestionAgent {
	return &IngestionAgent{rows: rows, scorer: scorer}
}

// Execute expects job.Payload["table"] and job.Payload["row"].
func (a *IngestionAgent) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	table, ok := job.Payload["table"].(string)
	if !ok || table == "" {
		return nil, fmt.Errorf("%w: ingestion job requires a table", models.ErrValidation)
	}
	row, ok := job.Payload["row"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: ingestion job requires a row", models.ErrValidation)
	}
	upsert, _ := job.Payload["upsert_on_fingerprint"].(bool)

	inserted, err := a.rows.Insert(ctx, table, row, registry.InsertOptions{UpsertOnFingerprint: upsert})
	if err != nil {
		return nil, err
	}

	def, ok := a.rows.Schema(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}

	pkField, _ := def.PrimaryKeyField()
	id, _ := inserted.Get(pkField.Name)
	idStr := fmt.Sprintf("%v", id)

	score := a.scorer.Score(def, inserted, idStr, nil)
	if err := a.rows.SetTrustScore(ctx, table, idStr, score); err != nil {
		return nil, err
	}
	inserted.TrustScore = score

	return map[string]any{
		"table": table,
		"id":    idStr,
		"row":   inserted,
	}, nil
}
