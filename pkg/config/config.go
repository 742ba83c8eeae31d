package config

// Config is the fully-resolved, validated configuration for the control
// plane, built by Initialize from a YAML file plus built-in defaults.
type Config struct {
	Server         *ServerConfig              `yaml:"server"`
	SchemaRegistry *SchemaRegistryConfig      `yaml:"schema_registry"`
	Lifecycle      *LifecycleConfig           `yaml:"lifecycle"`
	Ingestion      *IngestionConfig           `yaml:"ingestion"`
	Governance     *GovernanceConfig          `yaml:"governance"`
	Alerts         *AlertsConfig              `yaml:"alerts"`
	Retention      *RetentionConfig           `yaml:"retention"`
	Training       map[string]TrainingPolicy  `yaml:"training"`
	AgentKinds     map[string]AgentKindConfig `yaml:"agent_kinds"`
}

// Stats summarizes the loaded configuration for health/debug endpoints.
type Stats struct {
	WatchedFolders int
	AgentKinds     int
	TrainingRules  int
}

// Stats returns a summary used by GET /health.
func (c *Config) Stats() Stats {
	folders := 0
	if c.Ingestion != nil {
		folders = len(c.Ingestion.Folders)
	}
	return Stats{
		WatchedFolders: folders,
		AgentKinds:     len(c.AgentKinds),
		TrainingRules:  len(c.Training),
	}
}

// TrainingPolicyFor resolves the policy for a table, falling back to the
// wildcard "*" default entry (spec §4.8: "Per-table policy").
func (c *Config) TrainingPolicyFor(table string) TrainingPolicy {
	if p, ok := c.Training[table]; ok {
		return p
	}
	if p, ok := c.Training["*"]; ok {
		return p
	}
	return TrainingPolicy{RowThreshold: 100, MinRows: 10, TimeThresholdHours: 24, TrainingType: "incremental"}
}
