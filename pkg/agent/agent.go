// Package agent implements the Agent Runtime (C9, spec §4.9): the
// polymorphic agent contract shared by the three agent variants, plus
// their kind-specific job execution.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

// Variant executes the kind-specific half of a job. The runtime handles
// state transitions, counters, and trust updates uniformly across variants.
type Variant interface {
	Execute(ctx context.Context, job *models.Job) (map[string]any, error)
}

// Agent is a spawned worker instance: shared lifecycle bookkeeping plus a
// kind-specific Variant.
type Agent struct {
	mu       sync.Mutex
	snapshot models.Agent
	variant  Variant
}

// New constructs an agent in the initializing state. Call Initialize
// before executing jobs.
func New(kind config.AgentKind, instanceID string, capabilities []string, constraints models.Constraints, variant Variant) *Agent {
	id := instanceID
	if id == "" {
		id = uuid.NewString()
	}
	return &Agent{
		snapshot: models.Agent{
			ID:           id,
			Kind:         string(kind),
			Name:         fmt.Sprintf("%s-%s", kind, id[:8]),
			Capabilities: capabilities,
			Constraints:  constraints,
			State:        models.AgentStateInitializing,
		},
		variant: variant,
	}
}

// Initialize computes initial trust and transitions initializing → idle
// (spec §4.9). Registration with an external manifest store is out of
// scope here and would be non-fatal if it existed.
func (a *Agent) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.snapshot.State != models.AgentStateInitializing {
		return nil
	}

	kind := config.AgentKind(a.snapshot.Kind)
	a.snapshot.TrustScore = InitialTrust(kind, a.snapshot.Constraints, a.snapshot.Capabilities)
	a.snapshot.SpawnedAt = time.Now().UTC()
	a.snapshot.LastHeartbeatAt = a.snapshot.SpawnedAt
	a.snapshot.State = models.AgentStateIdle
	return nil
}

// Heartbeat refreshes last_heartbeat_at (spec §4.9).
func (a *Agent) Heartbeat() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot.LastHeartbeatAt = time.Now().UTC()
}

// ExecuteJob transitions idle → busy, runs the variant, updates counters
// and trust, and transitions back to idle. Errors never crash the agent:
// they are folded into a failed JobResult (spec §4.9).
func (a *Agent) ExecuteJob(ctx context.Context, job *models.Job) *models.JobResult {
	a.mu.Lock()
	a.snapshot.State = models.AgentStateBusy
	a.snapshot.CurrentJobID = job.ID
	a.mu.Unlock()

	start := time.Now()
	result, err := a.variant.Execute(ctx, job)
	duration := time.Since(start)

	now := time.Now().UTC()
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot.State = models.AgentStateIdle
	a.snapshot.CurrentJobID = ""
	a.snapshot.LastJobAt = &now

	jr := &models.JobResult{
		JobID:      job.ID,
		AgentID:    a.snapshot.ID,
		DurationMS: duration.Milliseconds(),
	}
	if err != nil {
		a.snapshot.JobsFailed++
		jr.Success = false
		jr.Error = err.Error()
	} else {
		a.snapshot.JobsCompleted++
		jr.Success = true
		jr.Result = result
	}

	a.snapshot.TrustScore = UpdateTrust(a.snapshot.TrustScore, a.snapshot.JobsCompleted, a.snapshot.JobsFailed)
	return jr
}

// Terminate transitions to offline and logs final stats. Irreversible.
func (a *Agent) Terminate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot.State == models.AgentStateOffline {
		return
	}
	a.snapshot.State = models.AgentStateOffline
	slog.Info("agent terminated",
		"id", a.snapshot.ID, "kind", a.snapshot.Kind,
		"jobs_completed", a.snapshot.JobsCompleted, "jobs_failed", a.snapshot.JobsFailed,
		"trust_score", a.snapshot.TrustScore)
}

// Status returns a read-only snapshot of the agent's current state.
func (a *Agent) Status() models.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// ID, Kind, and State are convenience accessors used by the Lifecycle
// Manager's reuse scan, which must not take the full Status() copy just to
// filter candidates.
func (a *Agent) ID() string             { a.mu.Lock(); defer a.mu.Unlock(); return a.snapshot.ID }
func (a *Agent) Kind() string           { a.mu.Lock(); defer a.mu.Unlock(); return a.snapshot.Kind }
func (a *Agent) State() models.AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot.State
}
func (a *Agent) Trust() float64 { a.mu.Lock(); defer a.mu.Unlock(); return a.snapshot.TrustScore }

// TryClaim atomically transitions idle → busy, returning true only if the
// agent was idle. Used by the Lifecycle Manager's reuse scan so two
// submitters can never claim the same idle agent (spec §4.10).
func (a *Agent) TryClaim() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot.State != models.AgentStateIdle {
		return false
	}
	a.snapshot.State = models.AgentStateBusy
	return true
}
