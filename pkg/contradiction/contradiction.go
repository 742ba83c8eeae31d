// Package contradiction implements the Contradiction Detector (C6, spec
// §4.6): table-scoped rule packs evaluated against live rows to surface
// similarity, temporal, and action conflicts. Records are recomputed on
// every Detect call; the detector does not persist them.
package contradiction

import (
	"context"
	"fmt"

	"github.com/aldicp/aldicp/pkg/models"
)

// RowStore is the subset of the Schema Registry the detector needs.
type RowStore interface {
	Schema(table string) (*models.SchemaDefinition, bool)
	List() []string
	Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error)
}

// Detector evaluates rule packs against rows fetched from a RowStore.
type Detector struct {
	rows  RowStore
	rules map[string][]Rule
}

// New constructs a Detector and loads its rule packs once from dir (spec
// §4.6: "the detector loads rules once at init").
func New(rows RowStore, rulePacksDir string) (*Detector, error) {
	rules, err := loadRulePacks(rulePacksDir)
	if err != nil {
		return nil, err
	}
	return &Detector{rows: rows, rules: rules}, nil
}

// Detect evaluates every rule declared for table against up to limit rows.
func (d *Detector) Detect(ctx context.Context, table string, limit int) ([]models.ContradictionRecord, error) {
	def, ok := d.rows.Schema(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}
	rules := d.rules[table]
	if len(rules) == 0 {
		return nil, nil
	}

	rows, err := d.rows.Query(ctx, table, nil, limit, 0, "")
	if err != nil {
		return nil, err
	}

	pkField, _ := def.PrimaryKeyField()
	var out []models.ContradictionRecord
	for _, rule := range rules {
		switch rule.Method {
		case MethodSimilarity:
			out = append(out, detectSimilarity(rule, table, pkField.Name, rows)...)
		case MethodTemporalConsistency:
			out = append(out, detectTemporalConsistency(rule, table, pkField.Name, rows)...)
		case MethodActionConflict:
			out = append(out, detectActionConflict(rule, table, pkField.Name, rows)...)
		}
	}
	return out, nil
}

// Summary re-detects across every table with declared rules and aggregates
// counts (spec §4.6).
func (d *Detector) Summary(ctx context.Context, limitPerTable int) (*Summary, error) {
	out := &Summary{
		ByTable:    make(map[string]int),
		BySeverity: make(map[models.Severity]int),
	}

	for table := range d.rules {
		records, err := d.Detect(ctx, table, limitPerTable)
		if err != nil {
			continue
		}
		out.ByTable[table] += len(records)
		out.Total += len(records)
		for _, r := range records {
			out.BySeverity[r.Severity]++
			if r.Severity == models.SeverityCritical {
				out.CriticalCount++
			}
		}
	}
	return out, nil
}

// Summary is the Contradiction Detector's Summary() output.
type Summary struct {
	ByTable       map[string]int            `json:"by_table"`
	BySeverity    map[models.Severity]int   `json:"by_severity"`
	CriticalCount int                       `json:"critical_count"`
	Total         int                       `json:"total"`
}
