package config

import "fmt"

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateServer(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	if err := v.validateSchemaRegistry(); err != nil {
		return fmt.Errorf("schema registry validation failed: %w", err)
	}
	if err := v.validateLifecycle(); err != nil {
		return fmt.Errorf("lifecycle validation failed: %w", err)
	}
	if err := v.validateIngestion(); err != nil {
		return fmt.Errorf("ingestion validation failed: %w", err)
	}
	if err := v.validateGovernance(); err != nil {
		return fmt.Errorf("governance validation failed: %w", err)
	}
	if err := v.validateAlerts(); err != nil {
		return fmt.Errorf("alerts validation failed: %w", err)
	}
	if err := v.validateRetention(); err != nil {
		return fmt.Errorf("retention validation failed: %w", err)
	}
	if err := v.validateTraining(); err != nil {
		return fmt.Errorf("training validation failed: %w", err)
	}
	if err := v.validateAgentKinds(); err != nil {
		return fmt.Errorf("agent kind validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateServer() error {
	s := v.cfg.Server
	if s == nil {
		return fmt.Errorf("server configuration is nil")
	}
	if s.HTTPPort == "" {
		return NewValidationError("server", "", "http_port", ErrMissingRequiredField)
	}
	switch s.GinMode {
	case "release", "debug", "test":
	default:
		return NewValidationError("server", "", "gin_mode", fmt.Errorf("%w: %s", ErrInvalidValue, s.GinMode))
	}
	return nil
}

func (v *Validator) validateSchemaRegistry() error {
	sr := v.cfg.SchemaRegistry
	if sr == nil {
		return fmt.Errorf("schema registry configuration is nil")
	}
	if sr.DefinitionsDir == "" {
		return NewValidationError("schema_registry", "", "definitions_dir", ErrMissingRequiredField)
	}
	if sr.RulePacksDir == "" {
		return NewValidationError("schema_registry", "", "rulepacks_dir", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateLifecycle() error {
	l := v.cfg.Lifecycle
	if l == nil {
		return fmt.Errorf("lifecycle configuration is nil")
	}
	if l.MaxAgentLifetimeMinutes <= 0 {
		return NewValidationError("lifecycle", "", "max_agent_lifetime_minutes", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if l.MaxIdleMinutes <= 0 {
		return NewValidationError("lifecycle", "", "max_idle_minutes", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if l.MaxIdleMinutes >= l.MaxAgentLifetimeMinutes {
		return NewValidationError("lifecycle", "", "max_idle_minutes", fmt.Errorf("%w: must be less than max_agent_lifetime_minutes", ErrInvalidValue))
	}
	if l.MinTrustThreshold < 0 || l.MinTrustThreshold > 1 {
		return NewValidationError("lifecycle", "", "min_trust_threshold", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	if l.HeartbeatStaleSeconds <= 0 {
		return NewValidationError("lifecycle", "", "heartbeat_stale_seconds", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if l.MaxConcurrentJobs < 1 {
		return NewValidationError("lifecycle", "", "max_concurrent_jobs", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
	}
	if l.MonitorIntervalSecs <= 0 {
		return NewValidationError("lifecycle", "", "monitor_interval_seconds", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateIngestion() error {
	i := v.cfg.Ingestion
	if i == nil {
		return fmt.Errorf("ingestion configuration is nil")
	}
	if len(i.Folders) == 0 {
		return NewValidationError("ingestion", "", "folders", fmt.Errorf("%w: at least one watched folder required", ErrMissingRequiredField))
	}
	for idx, folder := range i.Folders {
		if folder == "" {
			return NewValidationError("ingestion", "", fmt.Sprintf("folders[%d]", idx), fmt.Errorf("%w: empty path", ErrInvalidValue))
		}
	}
	if i.StagingInterval <= 0 {
		return NewValidationError("ingestion", "", "staging_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if i.ApprovalInterval <= 0 {
		return NewValidationError("ingestion", "", "approval_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if i.MaxFileSizeBytes <= 0 {
		return NewValidationError("ingestion", "", "max_file_size_bytes", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if i.StalePendingMaxAge <= 0 {
		return NewValidationError("ingestion", "", "stale_pending_max_age", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if i.ConfidenceDraftFloor < 0 || i.ConfidenceDraftFloor > 1 {
		return NewValidationError("ingestion", "", "confidence_draft_floor", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateGovernance() error {
	g := v.cfg.Governance
	if g == nil {
		return fmt.Errorf("governance configuration is nil")
	}
	if g.Timeout <= 0 {
		return NewValidationError("governance", "", "timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if g.ConfidenceFloor < 0 || g.ConfidenceFloor > 1 {
		return NewValidationError("governance", "", "confidence_floor", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	// Endpoint may be empty: governance gateway falls back to purely
	// local risk-tier auto-approval (spec §4.4) when unset.
	return nil
}

func (v *Validator) validateAlerts() error {
	a := v.cfg.Alerts
	if a == nil {
		return fmt.Errorf("alerts configuration is nil")
	}
	if a.MonitorInterval <= 0 {
		return NewValidationError("alerts", "", "monitor_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if a.LowTrustAvgThreshold < 0 || a.LowTrustAvgThreshold > 1 {
		return NewValidationError("alerts", "", "low_trust_avg_threshold", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	if a.LowTrustRatioThreshold < 0 || a.LowTrustRatioThreshold > 1 {
		return NewValidationError("alerts", "", "low_trust_ratio_threshold", fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue))
	}
	if a.TotalContradictionWarning < 0 {
		return NewValidationError("alerts", "", "total_contradiction_warning", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}
	if a.HistorySize < 1 {
		return NewValidationError("alerts", "", "history_size", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateRetention() error {
	r := v.cfg.Retention
	if r == nil {
		return fmt.Errorf("retention configuration is nil")
	}
	if r.CompletedJobRetention <= 0 {
		return NewValidationError("retention", "", "completed_job_retention", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if r.StaleProposalMaxAge <= 0 {
		return NewValidationError("retention", "", "stale_proposal_max_age", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if r.CleanupInterval <= 0 {
		return NewValidationError("retention", "", "cleanup_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateTraining() error {
	for table, policy := range v.cfg.Training {
		if policy.RowThreshold < 1 {
			return NewValidationError("training", table, "row_threshold", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
		}
		if policy.MinRows < 0 {
			return NewValidationError("training", table, "min_rows", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
		}
		if policy.MinRows > policy.RowThreshold {
			return NewValidationError("training", table, "min_rows", fmt.Errorf("%w: must not exceed row_threshold", ErrInvalidValue))
		}
		if policy.TimeThresholdHours <= 0 {
			return NewValidationError("training", table, "time_threshold_hours", fmt.Errorf("%w: must be positive", ErrInvalidValue))
		}
		switch policy.TrainingType {
		case "incremental", "full_retrain":
		default:
			return NewValidationError("training", table, "training_type", fmt.Errorf("%w: %s", ErrInvalidValue, policy.TrainingType))
		}
	}
	return nil
}

func (v *Validator) validateAgentKinds() error {
	if len(v.cfg.AgentKinds) == 0 {
		return NewValidationError("agent_kinds", "", "", fmt.Errorf("%w: at least one agent kind must be declared", ErrMissingRequiredField))
	}
	for name, kind := range v.cfg.AgentKinds {
		if !AgentKind(name).IsValid() {
			return NewValidationError("agent_kind", name, "", fmt.Errorf("%w: %s", ErrInvalidValue, name))
		}
		if len(kind.Capabilities) == 0 {
			return NewValidationError("agent_kind", name, "capabilities", fmt.Errorf("%w: at least one capability required", ErrMissingRequiredField))
		}
		if kind.Constraints.MaxFileSizeMB != nil && *kind.Constraints.MaxFileSizeMB <= 0 {
			return NewValidationError("agent_kind", name, "constraints.max_file_size_mb", fmt.Errorf("%w: must be positive", ErrInvalidValue))
		}
	}
	return nil
}
