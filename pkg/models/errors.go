package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy in spec §7. Components wrap these with
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is
// without depending on component-specific error types.
var (
	// ErrUnknownTable indicates a table name not present in the Schema Registry.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownAgentKind indicates a kind the Lifecycle Manager cannot spawn.
	ErrUnknownAgentKind = errors.New("unknown agent kind")

	// ErrUnknownJob indicates a job id not present in the completed-jobs map.
	ErrUnknownJob = errors.New("unknown job")

	// ErrInvalidID indicates an empty or malformed identifier (e.g. a
	// primary key that does not parse as a UUID).
	ErrInvalidID = errors.New("invalid id")

	// ErrValidation indicates a row failed schema validation.
	ErrValidation = errors.New("row validation failed")

	// ErrCapacity indicates a transient capacity limit (queue full, max
	// concurrent jobs reached). Callers should retry.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrDependencyUnavailable indicates a transient dependency failure
	// (storage unreachable, governance gateway unreachable, manifest
	// registration failed). Non-fatal where a fallback exists.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrNotFound indicates a lookup that legitimately found nothing
	// (agent, proposal, alert). Distinguished from ErrUnknownTable/
	// ErrUnknownAgentKind, which indicate the identifier class itself is
	// not recognized rather than merely absent.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports why a row failed schema validation, naming the
// violating field so callers can surface it without re-deriving it.
type ValidationError struct {
	Table string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("table %q field %q: %v", e.Table, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a field-scoped validation failure.
func NewValidationError(table, field string, err error) *ValidationError {
	return &ValidationError{Table: table, Field: field, Err: err}
}

// SchemaParseError reports why one schema definition file failed to load;
// the Schema Registry's LoadAll continues past these (spec §4.1).
type SchemaParseError struct {
	File string
	Err  error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("schema file %q: %v", e.File, e.Err)
}

func (e *SchemaParseError) Unwrap() error {
	return e.Err
}

// NewSchemaParseError wraps err as a per-file schema load failure.
func NewSchemaParseError(file string, err error) *SchemaParseError {
	return &SchemaParseError{File: file, Err: err}
}

// ErrorDetail is the structured error shape returned to external callers
// (spec §7: "{error: {kind, message, details?}}").
type ErrorDetail struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorKind classifies err against the taxonomy sentinels for API responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrUnknownTable),
		errors.Is(err, ErrUnknownAgentKind), errors.Is(err, ErrUnknownJob):
		return "input_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrCapacity):
		return "capacity_error"
	case errors.Is(err, ErrDependencyUnavailable):
		return "dependency_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
