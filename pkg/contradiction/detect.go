package contradiction

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/models"
)

func rowID(row *models.Row, pkField string) string {
	if v, ok := row.Get(pkField); ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func fieldString(row *models.Row, field string) string {
	v, ok := row.Get(field)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// tokenize lowercases and splits on whitespace for Jaccard comparison.
func tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// detectSimilarity runs an O(n²) pairwise comparison over rows, averaging
// per-field Jaccard similarity across rule.Fields (spec §4.6).
func detectSimilarity(rule Rule, table, pkField string, rows []*models.Row) []models.ContradictionRecord {
	var out []models.ContradictionRecord
	tokenSets := make([]map[string]map[string]struct{}, len(rows))
	for i, row := range rows {
		sets := make(map[string]map[string]struct{}, len(rule.Fields))
		for _, f := range rule.Fields {
			sets[f] = tokenize(fieldString(row, f))
		}
		tokenSets[i] = sets
	}

	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			var sum float64
			for _, f := range rule.Fields {
				sum += jaccard(tokenSets[i][f], tokenSets[j][f])
			}
			mean := sum / float64(len(rule.Fields))
			if mean < rule.Threshold {
				continue
			}
			idA, idB := rowID(rows[i], pkField), rowID(rows[j], pkField)
			out = append(out, models.ContradictionRecord{
				ID:         uuid.NewString(),
				RuleName:   rule.Name,
				Table:      table,
				Severity:   rule.Severity,
				RowIDs:     []string{idA, idB},
				Details:    map[string]any{"similarity": mean, "fields": rule.Fields},
				DetectedAt: time.Now().UTC(),
			})
		}
	}
	return out
}

// detectTemporalConsistency groups rows by rule.IdentifierField and flags
// impossible orderings across rule.TimestampFields within each group.
func detectTemporalConsistency(rule Rule, table, pkField string, rows []*models.Row) []models.ContradictionRecord {
	if rule.IdentifierField == "" || len(rule.TimestampFields) < 2 {
		return nil
	}

	groups := make(map[string][]*models.Row)
	for _, row := range rows {
		key := fieldString(row, rule.IdentifierField)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], row)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []models.ContradictionRecord
	for _, key := range keys {
		for _, row := range groups[key] {
			for i := 0; i+1 < len(rule.TimestampFields); i++ {
				earlier, okA := rowTimestamp(row, rule.TimestampFields[i])
				later, okB := rowTimestamp(row, rule.TimestampFields[i+1])
				if !okA || !okB {
					continue
				}
				if later.Before(earlier) {
					out = append(out, models.ContradictionRecord{
						ID:       uuid.NewString(),
						RuleName: rule.Name,
						Table:    table,
						Severity: rule.Severity,
						RowIDs:   []string{rowID(row, pkField)},
						Details: map[string]any{
							"identifier":   key,
							"earlier_field": rule.TimestampFields[i],
							"later_field":   rule.TimestampFields[i+1],
						},
						DetectedAt: time.Now().UTC(),
					})
				}
			}
		}
	}
	return out
}

func rowTimestamp(row *models.Row, field string) (time.Time, bool) {
	switch field {
	case "created_at":
		if !row.CreatedAt.IsZero() {
			return row.CreatedAt, true
		}
	}
	v, ok := row.Get(field)
	if !ok {
		return time.Time{}, false
	}
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

// detectActionConflict groups rows by rule.TriggerField and flags groups
// whose per-row action sets (rule.ActionField) disagree.
func detectActionConflict(rule Rule, table, pkField string, rows []*models.Row) []models.ContradictionRecord {
	if rule.TriggerField == "" || rule.ActionField == "" {
		return nil
	}

	groups := make(map[string][]*models.Row)
	for _, row := range rows {
		key := fieldString(row, rule.TriggerField)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], row)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []models.ContradictionRecord
	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		first := actionSignature(members[0], rule.ActionField)
		var ids []string
		conflict := false
		for _, row := range members {
			ids = append(ids, rowID(row, pkField))
			if actionSignature(row, rule.ActionField) != first {
				conflict = true
			}
		}
		if conflict {
			out = append(out, models.ContradictionRecord{
				ID:         uuid.NewString(),
				RuleName:   rule.Name,
				Table:      table,
				Severity:   rule.Severity,
				RowIDs:     ids,
				Details:    map[string]any{"trigger": key},
				DetectedAt: time.Now().UTC(),
			})
		}
	}
	return out
}

func actionSignature(row *models.Row, field string) string {
	v, ok := row.Get(field)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case []string:
		sorted := append([]string(nil), t...)
		sort.Strings(sorted)
		return strings.Join(sorted, ",")
	case []any:
		strs := make([]string, len(t))
		for i, x := range t {
			strs[i] = fmt.Sprintf("%v", x)
		}
		sort.Strings(strs)
		return strings.Join(strs, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
