package alerts

import (
	"context"
	"fmt"

	"github.com/aldicp/aldicp/pkg/models"
)

// Check runs one pass over every condition the monitor tracks (spec §4.7).
func (s *System) Check(ctx context.Context) error {
	s.checkTrust(ctx)
	s.checkContradictions(ctx)
	return nil
}

func (s *System) checkTrust(ctx context.Context) {
	if s.trust == nil {
		return
	}
	report, err := s.trust.Report(ctx)
	if err != nil {
		s.emit("trust", "report_error", models.SeverityError, "trust report unavailable",
			err.Error(), nil)
		return
	}

	for table, stats := range report.PerTable {
		if stats.Total == 0 {
			s.emit("trust", "empty:"+table, models.SeverityInfo,
				fmt.Sprintf("table %s is empty", table),
				fmt.Sprintf("table %s has no rows", table), map[string]any{"table": table})
			continue
		}

		if stats.Avg < s.cfg.LowTrustAvgThreshold {
			s.emit("trust", "low_avg:"+table, models.SeverityWarning,
				fmt.Sprintf("low average trust in %s", table),
				fmt.Sprintf("average trust %.2f below threshold %.2f", stats.Avg, s.cfg.LowTrustAvgThreshold),
				map[string]any{"table": table, "avg": stats.Avg})
		}

		ratio := float64(stats.LowCount) / float64(stats.Total)
		if ratio > s.cfg.LowTrustRatioThreshold {
			s.emit("trust", "low_ratio:"+table, models.SeverityWarning,
				fmt.Sprintf("high low-trust ratio in %s", table),
				fmt.Sprintf("%.0f%% of rows are low-trust", ratio*100),
				map[string]any{"table": table, "ratio": ratio})
		}
	}
}

func (s *System) checkContradictions(ctx context.Context) {
	if s.contr == nil {
		return
	}
	summary, err := s.contr.Summary(ctx, 500)
	if err != nil {
		s.emit("contradiction", "summary_error", models.SeverityError, "contradiction summary unavailable",
			err.Error(), nil)
		return
	}

	if summary.CriticalCount > 0 {
		s.emit("contradiction", "critical_count", models.SeverityCritical,
			"critical contradictions detected",
			fmt.Sprintf("%d critical contradictions outstanding", summary.CriticalCount),
			map[string]any{"critical_count": summary.CriticalCount})
	}
	if summary.Total > s.cfg.TotalContradictionWarning {
		s.emit("contradiction", "total_count", models.SeverityWarning,
			"elevated contradiction volume",
			fmt.Sprintf("%d total contradictions exceed warning threshold %d", summary.Total, s.cfg.TotalContradictionWarning),
			map[string]any{"total": summary.Total})
	}
}
