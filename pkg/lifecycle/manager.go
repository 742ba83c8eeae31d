// Package lifecycle implements the Lifecycle Manager (C10, spec §4.10),
// the hardest subsystem in the control plane: it owns the active-agent
// map, the job queue, and the revoked-agent tombstone set, and bounds
// concurrency across every agent kind.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aldicp/aldicp/pkg/agent"
	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/models"
)

// Factory builds and wires a fresh agent instance for kind. The concrete
// wiring (which analyzer, registry, trust engine a variant closes over)
// lives in the composition root, not here.
type Factory func(kind config.AgentKind, instanceID string) (*agent.Agent, error)

// Manager owns every spawned agent for the process lifetime.
type Manager struct {
	cfg        config.LifecycleConfig
	factory    Factory
	governance *governance.Gateway
	db         *sql.DB

	activeMu sync.RWMutex
	active   map[string]*agent.Agent

	revokedMu sync.Mutex
	revoked   map[string]struct{}

	completedMu sync.RWMutex
	completed   map[string]completedEntry

	queueMu sync.Mutex
	queue   []queuedJob

	totalJobsExecuted int64

	stopCh chan struct{}
	doneCh chan struct{}
}

type queuedJob struct {
	kind config.AgentKind
	job  *models.Job
}

type completedEntry struct {
	result *models.JobResult
	at     time.Time
}

// New constructs a Manager. governance and db may be nil in tests that
// don't exercise revocation audit or archive persistence.
func New(cfg config.LifecycleConfig, factory Factory, gw *governance.Gateway, db *sql.DB) *Manager {
	return &Manager{
		cfg:        cfg,
		factory:    factory,
		governance: gw,
		db:         db,
		active:     make(map[string]*agent.Agent),
		revoked:    make(map[string]struct{}),
		completed:  make(map[string]completedEntry),
	}
}

// Spawn constructs and initializes a new agent instance (spec §4.10 op 1).
func (m *Manager) Spawn(ctx context.Context, kind config.AgentKind, instanceID string) (*agent.Agent, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownAgentKind, kind)
	}

	a, err := m.factory(kind, instanceID)
	if err != nil {
		return nil, err
	}
	if err := a.Initialize(); err != nil {
		return nil, err
	}

	m.activeMu.Lock()
	m.active[a.Status().ID] = a
	m.activeMu.Unlock()

	return a, nil
}

// ExecuteJob runs job on an agent of kind, reusing an idle one when reuse
// is set, and applies the post-job cleanup/revocation policy (spec §4.10
// op 2).
func (m *Manager) ExecuteJob(ctx context.Context, kind config.AgentKind, job *models.Job, reuse bool) (*models.JobResult, error) {
	var a *agent.Agent
	reused := false

	if reuse {
		a = m.scanAndClaim(kind)
		reused = a != nil
	}
	if a == nil {
		spawned, err := m.Spawn(ctx, kind, "")
		if err != nil {
			return nil, err
		}
		a = spawned
		a.TryClaim() // freshly spawned agents start idle; claim before executing
	}

	result := a.ExecuteJob(ctx, job)
	atomic.AddInt64(&m.totalJobsExecuted, 1)
	m.storeCompleted(job.ID, result)

	if !reused {
		m.Terminate(ctx, a.Status().ID)
	}
	if !result.Success && a.Trust() < m.cfg.MinTrustThreshold {
		m.Revoke(ctx, a.Status().ID, "trust below threshold after job failure")
	}

	if !result.Success {
		return result, fmt.Errorf("job %s failed: %s", job.ID, result.Error)
	}
	return result, nil
}

// scanAndClaim finds the first idle, non-revoked agent of kind whose
// heartbeat is not stale and atomically claims it. Scan + claim is a single
// step per candidate via agent.TryClaim, so two submitters can never claim
// the same agent (spec §4.10 concurrency model).
func (m *Manager) scanAndClaim(kind config.AgentKind) *agent.Agent {
	staleAfter := time.Duration(m.cfg.HeartbeatStaleSeconds) * time.Second

	m.activeMu.RLock()
	candidates := make([]*agent.Agent, 0, len(m.active))
	for id, a := range m.active {
		if m.isRevoked(id) {
			continue
		}
		if a.Kind() != string(kind) {
			continue
		}
		if staleAfter > 0 && time.Since(a.Status().LastHeartbeatAt) > staleAfter {
			continue
		}
		candidates = append(candidates, a)
	}
	m.activeMu.RUnlock()

	for _, a := range candidates {
		if a.TryClaim() {
			return a
		}
	}
	return nil
}

func (m *Manager) isRevoked(id string) bool {
	m.revokedMu.Lock()
	defer m.revokedMu.Unlock()
	_, ok := m.revoked[id]
	return ok
}

func (m *Manager) storeCompleted(jobID string, result *models.JobResult) {
	m.completedMu.Lock()
	defer m.completedMu.Unlock()
	m.completed[jobID] = completedEntry{result: result, at: time.Now().UTC()}
}

// CompletedJob returns a previously recorded job result.
func (m *Manager) CompletedJob(jobID string) (*models.JobResult, error) {
	m.completedMu.RLock()
	defer m.completedMu.RUnlock()
	e, ok := m.completed[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownJob, jobID)
	}
	return e.result, nil
}

// Terminate removes id from the active map and archives its final stats.
// Idempotent (spec §4.10 op 4).
func (m *Manager) Terminate(ctx context.Context, id string) {
	m.activeMu.Lock()
	a, ok := m.active[id]
	if ok {
		delete(m.active, id)
	}
	m.activeMu.Unlock()

	if !ok {
		return
	}

	a.Terminate()
	m.archive(ctx, a.Status())
}

func (m *Manager) archive(ctx context.Context, snap models.Agent) {
	if m.db == nil {
		return
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO agent_archive (id, kind, name, jobs_completed, jobs_failed, trust_score, spawned_at, terminated_at, final_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8)
	`, snap.ID, snap.Kind, snap.Name, snap.JobsCompleted, snap.JobsFailed, snap.TrustScore, snap.SpawnedAt, string(snap.State))
	if err != nil {
		slog.Warn("lifecycle: failed to archive agent", "id", snap.ID, "error", err)
	}
}

// Revoke tombstones id, terminates it, and emits a high-risk governance
// event. Idempotent on id (spec §4.10 op 5).
func (m *Manager) Revoke(ctx context.Context, id, reason string) {
	m.revokedMu.Lock()
	_, already := m.revoked[id]
	m.revoked[id] = struct{}{}
	m.revokedMu.Unlock()

	m.Terminate(ctx, id)

	if already {
		return
	}
	if m.governance != nil {
		m.governance.EmitRevocation(ctx, id, reason)
	}
}
