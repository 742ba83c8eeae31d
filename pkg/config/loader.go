package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the complete aldicp.yaml file structure. Every
// section is optional; omitted sections fall back to the built-in defaults
// in defaults.go (merged in load below).
type YAMLConfig struct {
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

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load aldicp.yaml from configDir (missing file is tolerated — built-ins apply)
//  2. Expand environment variables
//  3. Merge built-in + user-defined configuration, section by section
//  4. Apply default values
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"watched_folders", stats.WatchedFolders,
		"agent_kinds", stats.AgentKinds,
		"training_rules", stats.TrainingRules)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	user, err := loader.loadAldicpYAML()
	if err != nil {
		return nil, NewLoadError("aldicp.yaml", err)
	}

	server, err := mergeServer(DefaultServerConfig(), user.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to merge server config: %w", err)
	}
	schemaRegistry, err := mergeSchemaRegistry(DefaultSchemaRegistryConfig(), user.SchemaRegistry)
	if err != nil {
		return nil, fmt.Errorf("failed to merge schema registry config: %w", err)
	}
	lifecycle, err := mergeLifecycle(DefaultLifecycleConfig(), user.Lifecycle)
	if err != nil {
		return nil, fmt.Errorf("failed to merge lifecycle config: %w", err)
	}
	ingestion, err := mergeIngestion(DefaultIngestionConfig(), user.Ingestion)
	if err != nil {
		return nil, fmt.Errorf("failed to merge ingestion config: %w", err)
	}
	governance, err := mergeGovernance(DefaultGovernanceConfig(), user.Governance)
	if err != nil {
		return nil, fmt.Errorf("failed to merge governance config: %w", err)
	}
	alerts, err := mergeAlerts(DefaultAlertsConfig(), user.Alerts)
	if err != nil {
		return nil, fmt.Errorf("failed to merge alerts config: %w", err)
	}
	retention, err := mergeRetention(DefaultRetentionConfig(), user.Retention)
	if err != nil {
		return nil, fmt.Errorf("failed to merge retention config: %w", err)
	}

	return &Config{
		Server:         server,
		SchemaRegistry: schemaRegistry,
		Lifecycle:      lifecycle,
		Ingestion:      ingestion,
		Governance:     governance,
		Alerts:         alerts,
		Retention:      retention,
		Training:       mergeTraining(DefaultTrainingPolicies(), user.Training),
		AgentKinds:     mergeAgentKinds(DefaultAgentKinds(), user.AgentKinds),
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("configuration file not found, using built-in defaults", "path", path)
			return nil
		}
		return err
	}

	// Expand environment variables before parsing so that e.g. governance
	// endpoints and database DSNs can reference ${VAR}.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadAldicpYAML() (*YAMLConfig, error) {
	var cfg YAMLConfig
	cfg.Training = make(map[string]TrainingPolicy)
	cfg.AgentKinds = make(map[string]AgentKindConfig)

	if err := l.loadYAML("aldicp.yaml", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
