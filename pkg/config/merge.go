package config

import "dario.cat/mergo"

// mergeLifecycle overlays a user-supplied lifecycle policy onto the built-in
// defaults — unset (zero-value) fields in user fall back to the default.
// The sections below use the same "user overrides built-in" shape, except
// that mergeIngestion appends user-supplied slices (such as Folders) to the
// default slices instead of replacing them.
func mergeLifecycle(base *LifecycleConfig, user *LifecycleConfig) (*LifecycleConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &result, nil
}

func mergeIngestion(base *IngestionConfig, user *IngestionConfig) (*IngestionConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return nil, err
	}
	return &result, nil
}

func mergeGovernance(base *GovernanceConfig, user *GovernanceConfig) (*GovernanceConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &result, nil
}

func mergeAlerts(base *AlertsConfig, user *AlertsConfig) (*AlertsConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &result, nil
}

func mergeServer(base *ServerConfig, user *ServerConfig) (*ServerConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &result, nil
}

func mergeSchemaRegistry(base *SchemaRegistryConfig, user *SchemaRegistryConfig) (*SchemaRegistryConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &result, nil
}

func mergeRetention(base *RetentionConfig, user *RetentionConfig) (*RetentionConfig, error) {
	result := *base
	if user == nil {
		return &result, nil
	}
	if err := mergo.Merge(&result, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &result, nil
}

// mergeTraining merges built-in and user-defined per-table training policies.
// User-defined tables override built-in entries with the same key.
func mergeTraining(builtin, user map[string]TrainingPolicy) map[string]TrainingPolicy {
	result := make(map[string]TrainingPolicy, len(builtin)+len(user))
	for k, v := range builtin {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}

// mergeAgentKinds merges built-in and user-defined agent kind declarations.
// User-defined kinds override built-in entries with the same key.
func mergeAgentKinds(builtin, user map[string]AgentKindConfig) map[string]AgentKindConfig {
	result := make(map[string]AgentKindConfig, len(builtin)+len(user))
	for k, v := range builtin {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}
