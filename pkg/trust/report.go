package trust

import "context"

// TableStats summarizes trust scores for one table (spec §4.5 Report).
type TableStats struct {
	Avg       float64 `json:"avg"`
	LowCount  int     `json:"low_count"`
	HighCount int     `json:"high_count"`
	Total     int     `json:"total"`
}

// Report is the Trust Engine's Report() output, consumed by the Alert
// System's low-trust conditions (spec §4.7).
type Report struct {
	PerTable map[string]TableStats `json:"per_table"`
	Overall  TableStats            `json:"overall"`
}

// Report aggregates current trust scores across every known table.
func (e *Engine) Report(ctx context.Context) (*Report, error) {
	out := &Report{PerTable: make(map[string]TableStats)}

	var overallSum float64
	var overallLow, overallHigh, overallTotal int

	for _, table := range e.rows.List() {
		rows, err := e.rows.Query(ctx, table, nil, 0, 0, "")
		if err != nil {
			continue
		}

		stats := TableStats{Total: len(rows)}
		var sum float64
		for _, row := range rows {
			sum += row.TrustScore
			if row.TrustScore < LowThreshold {
				stats.LowCount++
			}
			if row.TrustScore >= HighThreshold {
				stats.HighCount++
			}
		}
		if stats.Total > 0 {
			stats.Avg = sum / float64(stats.Total)
		}
		out.PerTable[table] = stats

		overallSum += sum
		overallLow += stats.LowCount
		overallHigh += stats.HighCount
		overallTotal += stats.Total
	}

	out.Overall = TableStats{LowCount: overallLow, HighCount: overallHigh, Total: overallTotal}
	if overallTotal > 0 {
		out.Overall.Avg = overallSum / float64(overallTotal)
	}
	return out, nil
}
