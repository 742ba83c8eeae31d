package lifecycle

import "time"

// PruneCompleted evicts completed-job entries older than maxAge, called by
// the retention cleanup loop to keep the completed-jobs map bounded (spec
// §4.10's completed-jobs map has no size limit of its own; this implements
// the ambient retention policy from config.RetentionConfig).
func (m *Manager) PruneCompleted(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	m.completedMu.Lock()
	defer m.completedMu.Unlock()

	pruned := 0
	for id, e := range m.completed {
		if e.at.Before(cutoff) {
			delete(m.completed, id)
			pruned++
		}
	}
	return pruned
}
