// Package models defines the dynamically typed domain record shapes shared
// across the control plane: schema definitions, rows, agents, jobs,
// proposals, contradiction records, alerts, and training counters.
package models

import "time"

// FieldType is the set of primitive types a schema field may declare.
type FieldType string

const (
	FieldTypeUUID     FieldType = "uuid"
	FieldTypeString   FieldType = "string"
	FieldTypeText     FieldType = "text"
	FieldTypeInteger  FieldType = "integer"
	FieldTypeFloat    FieldType = "float"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeJSON     FieldType = "json"
)

// IsValid reports whether t is one of the declared field types.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeUUID, FieldTypeString, FieldTypeText, FieldTypeInteger, FieldTypeFloat,
		FieldTypeBoolean, FieldTypeDateTime, FieldTypeJSON:
		return true
	default:
		return false
	}
}

// Field describes one column of a schema definition.
type Field struct {
	Name        string      `yaml:"name" json:"name"`
	Type        FieldType   `yaml:"type" json:"type"`
	Required    bool        `yaml:"required" json:"required"`
	PrimaryKey  bool        `yaml:"primary_key" json:"primary_key"`
	Nullable    bool        `yaml:"nullable" json:"nullable"`
	Default     any         `yaml:"default,omitempty" json:"default,omitempty"`
	Generated   bool        `yaml:"generated" json:"generated"`
}

// SchemaDefinition is a declarative table definition loaded from a YAML
// file under the schema registry's definitions directory.
//
// Every table implicitly carries trust_score, governance_stamp, and
// created_at in addition to its declared Fields (spec §3).
type SchemaDefinition struct {
	TableName   string  `yaml:"table_name" json:"table_name"`
	Description string  `yaml:"description" json:"description"`
	Fields      []Field `yaml:"fields" json:"fields"`

	// FingerprintField names the field used as the logical fingerprint for
	// idempotent upsert (e.g. "path" for documents, "name" for playbooks).
	// Empty means the table has no fingerprint-based upsert support.
	FingerprintField string `yaml:"fingerprint_field,omitempty" json:"fingerprint_field,omitempty"`
}

// PrimaryKeyField returns the single field marked as primary key, or the
// zero Field and false if none is declared.
func (s *SchemaDefinition) PrimaryKeyField() (Field, bool) {
	for _, f := range s.Fields {
		if f.PrimaryKey {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByName returns the declared field with the given name, or false.
func (s *SchemaDefinition) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StandardColumns are implicitly present on every materialized table.
var StandardColumns = []Field{
	{Name: "trust_score", Type: FieldTypeFloat, Required: true},
	{Name: "governance_stamp", Type: FieldTypeJSON, Nullable: true},
	{Name: "created_at", Type: FieldTypeDateTime, Required: true, Default: "now"},
}

// Row is a dynamically typed record conforming to a SchemaDefinition.
// Identity is the primary key value; TrustScore and GovernanceStamp and
// CreatedAt mirror the standard columns for ergonomic access.
type Row struct {
	Table           string         `json:"table"`
	Values          map[string]any `json:"values"`
	TrustScore      float64        `json:"trust_score"`
	GovernanceStamp map[string]any `json:"governance_stamp,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Get returns a column value and whether it was present.
func (r *Row) Get(field string) (any, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Set assigns a column value, creating the map if necessary.
func (r *Row) Set(field string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[field] = value
}
