package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/aldicp/aldicp/pkg/agent"
)

// StartMonitoring launches the background health/idle/age loop (spec §4.10
// op 6). StopMonitoring is idempotent.
func (m *Manager) StartMonitoring(ctx context.Context) {
	if m.stopCh != nil {
		return
	}
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	interval := time.Duration(m.cfg.MonitorIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		defer close(m.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				if err := m.monitorTick(ctx); err != nil {
					slog.Error("lifecycle: monitor tick failed, backing off", "error", err)
					ticker.Reset(60 * time.Second)
					continue
				}
				ticker.Reset(interval)
			}
		}
	}()
}

// StopMonitoring halts the loop, blocking until it exits.
func (m *Manager) StopMonitoring() {
	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	<-m.doneCh
	m.stopCh = nil
	m.doneCh = nil
}

// monitorTick runs the health, idle-cleanup, and age-cleanup passes in
// order. Errors are caught per-pass so one failure never skips the rest.
func (m *Manager) monitorTick(ctx context.Context) error {
	m.healthPass(ctx)
	m.idleCleanupPass(ctx)
	m.ageCleanupPass(ctx)
	return nil
}

func (m *Manager) healthPass(ctx context.Context) {
	staleAfter := time.Duration(m.cfg.HeartbeatStaleSeconds) * time.Second

	for _, a := range m.snapshotActive() {
		status := a.Status()
		if status.TrustScore < m.cfg.MinTrustThreshold {
			m.Revoke(ctx, status.ID, "trust below threshold during health pass")
			continue
		}
		if time.Since(status.LastHeartbeatAt) > staleAfter {
			slog.Warn("lifecycle: stale heartbeat", "id", status.ID, "kind", status.Kind,
				"last_heartbeat_at", status.LastHeartbeatAt)
			continue
		}
		a.Heartbeat()
	}
}

func (m *Manager) idleCleanupPass(ctx context.Context) {
	maxIdle := time.Duration(m.cfg.MaxIdleMinutes) * time.Minute
	for _, a := range m.snapshotActive() {
		status := a.Status()
		if status.LastJobAt == nil {
			continue
		}
		if time.Since(*status.LastJobAt) > maxIdle {
			m.Terminate(ctx, status.ID)
		}
	}
}

func (m *Manager) ageCleanupPass(ctx context.Context) {
	maxAge := time.Duration(m.cfg.MaxAgentLifetimeMinutes) * time.Minute
	for _, a := range m.snapshotActive() {
		status := a.Status()
		if time.Since(status.SpawnedAt) > maxAge {
			m.Terminate(ctx, status.ID)
		}
	}
}

func (m *Manager) snapshotActive() []*agent.Agent {
	m.activeMu.RLock()
	defer m.activeMu.RUnlock()
	out := make([]*agent.Agent, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, a)
	}
	return out
}
