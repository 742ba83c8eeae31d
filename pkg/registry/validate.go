package registry

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/models"
)

// validateAndFill is the table-driven validation pass referenced in spec §9
// ("Dynamic row shapes"): rather than generating per-table shape code, it
// walks the schema's declared fields once and checks the supplied values
// against them, filling defaults and generated primary keys along the way.
// Validation is strict on insert; Query/Update tolerate unknown columns.
func validateAndFill(def *models.SchemaDefinition, input map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(def.Fields))

	for _, f := range def.Fields {
		v, present := input[f.Name]

		if f.Generated {
			if f.PrimaryKey && f.Type == models.FieldTypeUUID {
				if present {
					if s, ok := v.(string); ok && s != "" {
						out[f.Name] = s
						continue
					}
				}
				out[f.Name] = uuid.NewString()
				continue
			}
		}

		if !present {
			if f.Default != nil {
				d := resolveDefault(f.Default)
				if c, err := coerce(f.Type, d); err == nil {
					d = c
				}
				out[f.Name] = d
				continue
			}
			if f.Required && !f.Nullable {
				return nil, models.NewValidationError(def.TableName, f.Name,
					fmt.Errorf("%w: required field missing", models.ErrValidation))
			}
			if f.Nullable {
				out[f.Name] = nil
			}
			continue
		}

		coerced, err := coerce(f.Type, v)
		if err != nil {
			return nil, models.NewValidationError(def.TableName, f.Name,
				fmt.Errorf("%w: %v", models.ErrValidation, err))
		}
		out[f.Name] = coerced
	}

	return out, nil
}

func resolveDefault(d any) any {
	if s, ok := d.(string); ok && s == "now" {
		return time.Now().UTC()
	}
	return d
}

func coerce(t models.FieldType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case models.FieldTypeUUID, models.FieldTypeString, models.FieldTypeText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		if t == models.FieldTypeUUID {
			if _, err := uuid.Parse(s); err != nil {
				return nil, fmt.Errorf("invalid uuid: %w", err)
			}
		}
		return s, nil
	case models.FieldTypeInteger:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			return int64(n), nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
	case models.FieldTypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("expected float, got %T", v)
		}
	case models.FieldTypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", v)
		}
		return b, nil
	case models.FieldTypeDateTime:
		switch tv := v.(type) {
		case time.Time:
			return tv, nil
		case string:
			parsed, err := time.Parse(time.RFC3339, tv)
			if err != nil {
				return nil, fmt.Errorf("invalid datetime: %w", err)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected datetime, got %T", v)
		}
	case models.FieldTypeJSON:
		return v, nil
	default:
		return v, nil
	}
}
