package config

import "time"

// RetentionConfig controls how long ephemeral control-plane records survive.
type RetentionConfig struct {
	// CompletedJobRetention is how long finished job results stay in the
	// completed-jobs map before the cleanup loop evicts them.
	CompletedJobRetention time.Duration `yaml:"completed_job_retention"`

	// StaleProposalMaxAge discards pending schema proposals that have sat
	// undecided for too long (spec §4.11: "stale-pending (discarded after a
	// policy age)").
	StaleProposalMaxAge time.Duration `yaml:"stale_proposal_max_age"`

	// CleanupInterval is how often the retention loop runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		CompletedJobRetention: 1 * time.Hour,
		StaleProposalMaxAge:   24 * time.Hour,
		CleanupInterval:       15 * time.Minute,
	}
}
