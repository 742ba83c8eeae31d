package config

import "time"

// DefaultLifecycleConfig returns the built-in lifecycle manager policy (spec §4.10).
func DefaultLifecycleConfig() *LifecycleConfig {
	return &LifecycleConfig{
		MaxAgentLifetimeMinutes: 60,
		MaxIdleMinutes:          10,
		MinTrustThreshold:       0.3,
		HeartbeatStaleSeconds:   120,
		MaxConcurrentJobs:       5,
		MonitorIntervalSecs:     30,
	}
}

// DefaultIngestionConfig returns the built-in ingestion pipeline policy (spec §4.11).
func DefaultIngestionConfig() *IngestionConfig {
	return &IngestionConfig{
		Folders:              []string{"./watched"},
		StagingInterval:      30 * time.Second,
		ApprovalInterval:     15 * time.Second,
		MaxFileSizeBytes:     100 * 1024 * 1024,
		StalePendingMaxAge:   24 * time.Hour,
		AutoApproveLowRisk:   true,
		ConfidenceDraftFloor: 0.7,
	}
}

// DefaultGovernanceConfig returns the built-in Governance Gateway client policy (spec §4.4).
func DefaultGovernanceConfig() *GovernanceConfig {
	return &GovernanceConfig{
		Endpoint:        "",
		Timeout:         5 * time.Second,
		ConfidenceFloor: 0.7,
	}
}

// DefaultAlertsConfig returns the built-in Alert System monitor policy (spec §4.7).
func DefaultAlertsConfig() *AlertsConfig {
	return &AlertsConfig{
		MonitorInterval:           60 * time.Second,
		LowTrustAvgThreshold:      0.5,
		LowTrustRatioThreshold:    0.3,
		TotalContradictionWarning: 50,
		HistorySize:               500,
	}
}

// DefaultServerConfig returns the built-in HTTP server policy.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		HTTPPort: "8080",
		GinMode:  "release",
	}
}

// DefaultSchemaRegistryConfig returns the built-in schema registry file locations.
func DefaultSchemaRegistryConfig() *SchemaRegistryConfig {
	return &SchemaRegistryConfig{
		DefinitionsDir: "./config/schemas",
		RulePacksDir:   "./config/rulepacks",
	}
}

// DefaultTrainingPolicies returns the built-in per-table training trigger policy
// (spec §4.8), applied to any table without an explicit override.
func DefaultTrainingPolicies() map[string]TrainingPolicy {
	return map[string]TrainingPolicy{
		"*": {
			RowThreshold:       100,
			TimeThresholdHours: 24,
			MinRows:            10,
			TrainingType:       "incremental",
		},
	}
}

// DefaultAgentKinds returns the built-in capability/constraint declarations
// for the three agent variants in spec §4.9.
func DefaultAgentKinds() map[string]AgentKindConfig {
	maxMB := 25.0
	return map[string]AgentKindConfig{
		"schema_inference": {
			Capabilities: []string{"analyze_file", "propose_schema"},
			Constraints: AgentConstraintsConfig{
				ReadOnly:       true,
				MaxFileSizeMB:  &maxMB,
				AllowedFormats: []string{"txt", "md", "csv", "json", "py", "go", "yaml", "yml"},
			},
		},
		"ingestion": {
			Capabilities: []string{"insert_row"},
			Constraints: AgentConstraintsConfig{
				ReadOnly:         false,
				RequiresApproval: true,
			},
		},
		"cross_domain_learning": {
			Capabilities: []string{"query_tables", "summarize_patterns"},
			Constraints: AgentConstraintsConfig{
				ReadOnly: true,
			},
		},
	}
}
