package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aldicp/aldicp/pkg/models"
)

// Materialize creates a Postgres table for every cached schema definition
// that does not already exist. Safe to call repeatedly (spec §4.1).
func (r *Registry) Materialize(ctx context.Context) error {
	r.mu.RLock()
	tables := make([]*models.SchemaDefinition, 0, len(r.order))
	for _, name := range r.order {
		tables = append(tables, r.schemas[name])
	}
	r.mu.RUnlock()

	for _, def := range tables {
		ddl, err := buildCreateTableDDL(def)
		if err != nil {
			return fmt.Errorf("table %q: %w", def.TableName, err)
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("materializing table %q: %w", def.TableName, err)
		}
		slog.Debug("materialized table", "table", def.TableName)
	}
	return nil
}

func buildCreateTableDDL(def *models.SchemaDefinition) (string, error) {
	if _, ok := def.PrimaryKeyField(); !ok {
		return "", errNoPrimaryKey
	}

	var cols []string
	for _, f := range def.Fields {
		cols = append(cols, columnDDL(f))
	}
	for _, f := range models.StandardColumns {
		cols = append(cols, columnDDL(f))
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		quoteIdent(def.TableName),
		strings.Join(cols, ",\n    "),
	)
	return stmt, nil
}

func columnDDL(f models.Field) string {
	parts := []string{quoteIdent(f.Name), sqlType(f.Type)}
	if f.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	} else if f.Required && !f.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

func sqlType(t models.FieldType) string {
	switch t {
	case models.FieldTypeUUID:
		return "UUID"
	case models.FieldTypeString:
		return "TEXT"
	case models.FieldTypeText:
		return "TEXT"
	case models.FieldTypeInteger:
		return "BIGINT"
	case models.FieldTypeFloat:
		return "DOUBLE PRECISION"
	case models.FieldTypeBoolean:
		return "BOOLEAN"
	case models.FieldTypeDateTime:
		return "TIMESTAMPTZ"
	case models.FieldTypeJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
