package lifecycle

import "sync/atomic"

// Metrics is the Lifecycle Manager's Metrics() output (spec §4.10 op 7).
type Metrics struct {
	ActiveCount        int            `json:"active_count"`
	RevokedCount       int            `json:"revoked_count"`
	ByKind             map[string]int `json:"by_kind"`
	TotalJobsExecuted  int64          `json:"total_jobs_executed"`
	AverageTrustScore  float64        `json:"average_trust_score"`
	PendingJobs        int            `json:"pending_jobs"`
	CompletedJobs      int            `json:"completed_jobs"`
}

// Metrics summarizes current manager state.
func (m *Manager) Metrics() Metrics {
	byKind := make(map[string]int)
	var trustSum float64

	for _, a := range m.snapshotActive() {
		status := a.Status()
		byKind[status.Kind]++
		trustSum += status.TrustScore
	}

	m.revokedMu.Lock()
	revokedCount := len(m.revoked)
	m.revokedMu.Unlock()

	m.completedMu.RLock()
	completedCount := len(m.completed)
	m.completedMu.RUnlock()

	activeCount := 0
	for _, n := range byKind {
		activeCount += n
	}

	avgTrust := 0.0
	if activeCount > 0 {
		avgTrust = trustSum / float64(activeCount)
	}

	return Metrics{
		ActiveCount:       activeCount,
		RevokedCount:      revokedCount,
		ByKind:            byKind,
		TotalJobsExecuted: atomic.LoadInt64(&m.totalJobsExecuted),
		AverageTrustScore: avgTrust,
		PendingJobs:       m.PendingJobs(),
		CompletedJobs:     completedCount,
	}
}
