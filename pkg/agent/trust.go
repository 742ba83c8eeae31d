package agent

import (
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

// InitialTrust derives an agent's starting trust score from its kind and
// declared constraints/capabilities (spec §4.9: neutral 0.5 baseline).
func InitialTrust(kind config.AgentKind, constraints models.Constraints, capabilities []string) float64 {
	trust := 0.5

	if constraints.ReadOnly {
		trust += 0.10
	}
	if constraints.RequiresApproval {
		trust += 0.10
	}
	if constraints.MaxFileSizeMB > 0 {
		trust += 0.05
	}
	if len(capabilities) <= 3 {
		trust += 0.10
	}
	if kind == config.AgentKindOrchestrator {
		trust -= 0.10
	}

	return clamp01(trust)
}

// UpdateTrust applies the post-job EMA update (spec §4.9):
// trust ← 0.7·success_rate + 0.3·trust.
func UpdateTrust(current float64, jobsCompleted, jobsFailed int) float64 {
	total := jobsCompleted + jobsFailed
	if total == 0 {
		return current
	}
	successRate := float64(jobsCompleted) / float64(total)
	return clamp01(0.7*successRate + 0.3*current)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
