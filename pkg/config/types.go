package config

import "time"

// LifecycleConfig controls the Agent Lifecycle Manager (spec §4.10).
type LifecycleConfig struct {
	MaxAgentLifetimeMinutes int `yaml:"max_agent_lifetime_minutes"`
	MaxIdleMinutes          int `yaml:"max_idle_minutes"`
	// MinTrustThreshold is a fraction expressed 0-1; agents below it are revoked.
	MinTrustThreshold     float64 `yaml:"min_trust_threshold"`
	HeartbeatStaleSeconds int     `yaml:"heartbeat_stale_seconds"`
	MaxConcurrentJobs     int     `yaml:"max_concurrent_jobs"`
	MonitorIntervalSecs   int     `yaml:"monitor_interval_seconds"`
}

// IngestionConfig controls the file-watch staging/approval pipeline (spec §4.11).
type IngestionConfig struct {
	Folders               []string      `yaml:"folders"`
	StagingInterval       time.Duration `yaml:"staging_interval"`
	ApprovalInterval      time.Duration `yaml:"approval_interval"`
	MaxFileSizeBytes      int64         `yaml:"max_file_size_bytes"`
	StalePendingMaxAge    time.Duration `yaml:"stale_pending_max_age"`
	AutoApproveLowRisk    bool          `yaml:"auto_approve_low_risk"`
	ConfidenceDraftFloor  float64       `yaml:"confidence_draft_floor"`
}

// GovernanceConfig controls the Governance Gateway client (spec §4.4).
type GovernanceConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout"`
	ConfidenceFloor float64      `yaml:"confidence_floor"` // medium-risk auto-approve floor
}

// AlertsConfig controls the Alert System's periodic monitor (spec §4.7).
type AlertsConfig struct {
	MonitorInterval           time.Duration `yaml:"monitor_interval"`
	LowTrustAvgThreshold      float64       `yaml:"low_trust_avg_threshold"`
	LowTrustRatioThreshold    float64       `yaml:"low_trust_ratio_threshold"`
	TotalContradictionWarning int           `yaml:"total_contradiction_warning"`
	HistorySize               int           `yaml:"history_size"`
}

// TrainingPolicy is the per-table policy from spec §4.8.
type TrainingPolicy struct {
	RowThreshold       int     `yaml:"row_threshold"`
	TimeThresholdHours float64 `yaml:"time_threshold_hours"`
	MinRows            int     `yaml:"min_rows"`
	TrainingType       string  `yaml:"training_type"`
}

// AgentKindConfig declares capabilities and constraints for one agent kind,
// used to derive initial trust per spec §4.9.
type AgentKindConfig struct {
	Capabilities []string                `yaml:"capabilities"`
	Constraints  AgentConstraintsConfig  `yaml:"constraints"`
}

// AgentConstraintsConfig mirrors the constraint keys spec §4.9 scores trust against.
type AgentConstraintsConfig struct {
	ReadOnly         bool     `yaml:"read_only"`
	RequiresApproval bool     `yaml:"requires_approval"`
	MaxFileSizeMB    *float64 `yaml:"max_file_size_mb,omitempty"`
	AllowedFormats   []string `yaml:"allowed_formats,omitempty"`
}

// ServerConfig controls the Control Plane API HTTP listener.
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"`
	GinMode  string `yaml:"gin_mode"`
}

// SchemaRegistryConfig locates the declarative table-definition and rule-pack files.
type SchemaRegistryConfig struct {
	DefinitionsDir string `yaml:"definitions_dir"`
	RulePacksDir   string `yaml:"rulepacks_dir"`
}
