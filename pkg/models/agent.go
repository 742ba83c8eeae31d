package models

import "time"

// AgentState is the lifecycle state of a spawned agent instance.
// States: initializing → idle ⇄ busy → offline; offline is terminal.
type AgentState string

const (
	AgentStateInitializing AgentState = "initializing"
	AgentStateIdle         AgentState = "idle"
	AgentStateBusy         AgentState = "busy"
	AgentStateOffline      AgentState = "offline"
)

// Constraints bounds what an agent instance is permitted to do; mirrors
// config.AgentConstraintsConfig but carries resolved (non-pointer) values
// for a specific spawned instance.
type Constraints struct {
	ReadOnly         bool     `json:"read_only"`
	RequiresApproval bool     `json:"requires_approval"`
	MaxFileSizeMB    float64  `json:"max_file_size_mb,omitempty"`
	AllowedFormats   []string `json:"allowed_formats,omitempty"`
}

// Agent is a spawned worker instance tracked by the Lifecycle Manager.
type Agent struct {
	ID               string      `json:"id"`
	Kind             string      `json:"kind"`
	Name             string      `json:"name"`
	Mission          string      `json:"mission"`
	Capabilities     []string    `json:"capabilities"`
	Constraints      Constraints `json:"constraints"`
	State            AgentState  `json:"state"`
	CurrentJobID     string      `json:"current_job_id,omitempty"`
	JobsCompleted    int         `json:"jobs_completed"`
	JobsFailed       int         `json:"jobs_failed"`
	TrustScore       float64     `json:"trust_score"`
	SpawnedAt        time.Time   `json:"spawned_at"`
	LastHeartbeatAt  time.Time   `json:"last_heartbeat_at"`
	LastJobAt        *time.Time  `json:"last_job_at,omitempty"`
}

// SuccessRate returns jobs_completed / (jobs_completed + jobs_failed), or 0
// when the agent has not yet executed any job.
func (a *Agent) SuccessRate() float64 {
	total := a.JobsCompleted + a.JobsFailed
	if total == 0 {
		return 0
	}
	return float64(a.JobsCompleted) / float64(total)
}

// Snapshot is a read-only copy of an Agent's observable state, safe to
// hand to callers without risking concurrent mutation of the original.
type Snapshot = Agent

// JobState is the lifecycle state of a submitted job.
// States: queued → running → {completed, failed}.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Job is a unit of work routed through the Lifecycle Manager to an agent.
type Job struct {
	ID              string         `json:"id"`
	Kind            string         `json:"kind"`
	Payload         map[string]any `json:"payload"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	State           JobState       `json:"state"`
	Result          map[string]any `json:"result,omitempty"`
	Error           string         `json:"error,omitempty"`
	DurationMS      int64          `json:"duration_ms,omitempty"`
	AssignedAgentID string         `json:"assigned_agent_id,omitempty"`
}

// JobResult is the outcome of ExecuteJob, independent of the Job record
// that ultimately stores it.
type JobResult struct {
	JobID      string         `json:"job_id"`
	Success    bool           `json:"success"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	AgentID    string         `json:"agent_id"`
}
