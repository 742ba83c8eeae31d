package lifecycle

import "github.com/aldicp/aldicp/pkg/models"

// Agents returns a snapshot of every active agent, for the Control Plane
// API's GET /agent-lifecycle/agents.
func (m *Manager) Agents() []models.Agent {
	active := m.snapshotActive()
	out := make([]models.Agent, len(active))
	for i, a := range active {
		out[i] = a.Status()
	}
	return out
}

// Agent returns the snapshot for one active agent id.
func (m *Manager) Agent(id string) (models.Agent, bool) {
	m.activeMu.RLock()
	a, ok := m.active[id]
	m.activeMu.RUnlock()
	if !ok {
		return models.Agent{}, false
	}
	return a.Status(), true
}
