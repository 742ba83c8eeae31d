// Package trust implements the Trust Engine (C5, spec §4.5): a pure,
// five-factor weighted scoring function over a row plus its contradiction
// set, and the Rescore/Report operations built on top of it.
package trust

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aldicp/aldicp/pkg/models"
)

const (
	weightCompleteness = 0.30
	weightSource       = 0.25
	weightFreshness    = 0.15
	weightUsage        = 0.20
	weightConsistency  = 0.10

	// LowThreshold and HighThreshold bucket a score for reporting (spec §4.5).
	LowThreshold  = 0.5
	HighThreshold = 0.8

	freshnessFloor    = 0.30
	freshnessWindow   = 180 * 24 * time.Hour
	usageBoostCap     = 0.2
)

var sourceWeights = map[string]float64{
	"grace":    0.85,
	"user":     0.60,
	"external": 0.50,
}

var severityPenalty = map[models.Severity]float64{
	models.SeverityLow:      0.05,
	models.SeverityMedium:   0.15,
	models.SeverityHigh:     0.30,
	models.SeverityCritical: 0.50,
}

// ContradictionSource supplies the contradiction records a rescore pass
// should weigh against. Satisfied structurally by *contradiction.Detector.
type ContradictionSource interface {
	Detect(ctx context.Context, table string, limit int) ([]models.ContradictionRecord, error)
}

// RowStore is the subset of the Schema Registry the engine needs to
// rescore rows in bulk.
type RowStore interface {
	Schema(table string) (*models.SchemaDefinition, bool)
	List() []string
	Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error)
	SetTrustScore(ctx context.Context, table, id string, score float64) error
}

// Engine computes and persists trust scores.
type Engine struct {
	rows           RowStore
	contradictions ContradictionSource
}

// New constructs an Engine.
func New(rows RowStore, contradictions ContradictionSource) *Engine {
	return &Engine{rows: rows, contradictions: contradictions}
}

// Score computes the weighted trust score for one row, given the
// contradiction records that name it (spec §4.5). Pure: no I/O.
func (e *Engine) Score(def *models.SchemaDefinition, row *models.Row, rowID string, contradictions []models.ContradictionRecord) float64 {
	completeness := scoreCompleteness(def, row)
	source := scoreSource(row)
	freshness := scoreFreshness(row)
	usage := scoreUsage(row)
	consistency := scoreConsistency(rowID, contradictions)

	score := weightCompleteness*completeness +
		weightSource*source +
		weightFreshness*freshness +
		weightUsage*usage +
		weightConsistency*consistency

	return clamp01(score)
}

func scoreCompleteness(def *models.SchemaDefinition, row *models.Row) float64 {
	var requiredTotal, requiredFilled, optionalTotal, optionalFilled int
	for _, f := range def.Fields {
		if f.PrimaryKey || f.Generated {
			continue
		}
		v, present := row.Get(f.Name)
		filled := present && !isBlank(v)
		if f.Required {
			requiredTotal++
			if filled {
				requiredFilled++
			}
		} else {
			optionalTotal++
			if filled {
				optionalFilled++
			}
		}
	}

	requiredFrac := fracOrOne(requiredFilled, requiredTotal)
	optionalFrac := fracOrOne(optionalFilled, optionalTotal)
	return 0.6*requiredFrac + 0.4*optionalFrac
}

func fracOrOne(filled, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(filled) / float64(total)
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

func scoreSource(row *models.Row) float64 {
	base := sourceWeights["external"]
	if row.GovernanceStamp == nil {
		return base
	}
	if creator, ok := row.GovernanceStamp["created_by"].(string); ok {
		if w, known := sourceWeights[creator]; known {
			return clamp01(w + 0.05) // governance stamp present: small bonus over unstamped
		}
	}
	return clamp01(base + 0.05)
}

func scoreFreshness(row *models.Row) float64 {
	ts := latestTimestamp(row)
	if ts.IsZero() {
		return freshnessFloor
	}
	age := time.Since(ts)
	if age <= 0 {
		return 1.0
	}
	if age >= freshnessWindow {
		return freshnessFloor
	}
	frac := float64(age) / float64(freshnessWindow)
	return 1.0 - frac*(1.0-freshnessFloor)
}

func latestTimestamp(row *models.Row) time.Time {
	for _, field := range []string{"updated_at", "last_used_at", "last_active_at"} {
		if v, ok := row.Get(field); ok {
			if t, ok := asTime(v); ok {
				return t
			}
		}
	}
	if !row.CreatedAt.IsZero() {
		return row.CreatedAt
	}
	return time.Time{}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func scoreUsage(row *models.Row) float64 {
	successes, hasSuccesses := intField(row, "usage_successes")
	total, hasTotal := intField(row, "usage_total")
	if !hasTotal || total == 0 {
		return 0.5 // neutral when no usage data
	}
	if !hasSuccesses {
		successes = 0
	}
	rate := float64(successes) / float64(total)
	boost := math.Min(usageBoostCap, float64(total)*0.01)
	return clamp01(rate + boost)
}

func intField(row *models.Row, name string) (int, bool) {
	v, ok := row.Get(name)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}

func scoreConsistency(rowID string, contradictions []models.ContradictionRecord) float64 {
	penalty := 0.0
	for _, c := range contradictions {
		for _, id := range c.RowIDs {
			if id == rowID {
				penalty += severityPenalty[c.Severity]
				break
			}
		}
	}
	score := 1.0 - penalty
	if score < 0 {
		score = 0
	}
	return score
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rescore recomputes and persists trust scores for up to limit rows of
// table, returning the number rescored.
func (e *Engine) Rescore(ctx context.Context, table string, limit int) (int, error) {
	def, ok := e.rows.Schema(table)
	if !ok {
		return 0, fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}

	rows, err := e.rows.Query(ctx, table, nil, limit, 0, "")
	if err != nil {
		return 0, err
	}

	var contradictions []models.ContradictionRecord
	if e.contradictions != nil {
		contradictions, err = e.contradictions.Detect(ctx, table, 1000)
		if err != nil {
			slog.Warn("trust: contradiction lookup failed, scoring without consistency penalty", "table", table, "error", err)
		}
	}

	pkField, _ := def.PrimaryKeyField()
	n := 0
	for _, row := range rows {
		id, ok := row.Get(pkField.Name)
		if !ok {
			continue
		}
		idStr := fmt.Sprintf("%v", id)
		score := e.Score(def, row, idStr, contradictions)
		if err := e.rows.SetTrustScore(ctx, table, idStr, score); err != nil {
			slog.Warn("trust: failed to persist score", "table", table, "id", idStr, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
