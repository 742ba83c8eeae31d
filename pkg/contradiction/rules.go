package contradiction

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aldicp/aldicp/pkg/models"
)

// Method is a contradiction-detection algorithm (spec §4.6).
type Method string

const (
	MethodSimilarity          Method = "similarity"
	MethodTemporalConsistency Method = "temporal_consistency"
	MethodActionConflict      Method = "action_conflict"
)

// Rule is one declared rule within a table's rule pack.
type Rule struct {
	Name      string          `yaml:"name"`
	Fields    []string        `yaml:"fields"`
	Method    Method          `yaml:"method"`
	Threshold float64         `yaml:"threshold,omitempty"`
	Severity  models.Severity `yaml:"severity"`

	// IdentifierField groups rows for temporal_consistency.
	IdentifierField string `yaml:"identifier_field,omitempty"`
	// TimestampFields are compared pairwise within a group, in declared
	// order, to detect impossible ordering (e.g. modified-before-created).
	TimestampFields []string `yaml:"timestamp_fields,omitempty"`

	// TriggerField derives the grouping key for action_conflict.
	TriggerField string `yaml:"trigger_field,omitempty"`
	// ActionField names the field holding the per-row action list.
	ActionField string `yaml:"action_field,omitempty"`
}

// RulePack is one YAML file's contents: all rules declared for one table.
type RulePack struct {
	Table string `yaml:"table"`
	Rules []Rule `yaml:"rules"`
}

// loadRulePacks reads every *.yaml/*.yml file in dir into a table→rules map.
func loadRulePacks(dir string) (map[string][]Rule, error) {
	out := make(map[string][]Rule)
	if dir == "" {
		return out, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("reading rulepacks dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading rulepack %s: %w", name, err)
		}

		var pack RulePack
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return nil, fmt.Errorf("parsing rulepack %s: %w", name, err)
		}
		if pack.Table == "" {
			continue
		}
		out[pack.Table] = append(out[pack.Table], pack.Rules...)
	}
	return out, nil
}
