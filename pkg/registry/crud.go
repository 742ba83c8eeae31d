package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/models"
)

// InsertOptions controls Insert behavior.
type InsertOptions struct {
	// UpsertOnFingerprint, when true, looks up an existing row by the
	// table's fingerprint field and updates it in place instead of
	// inserting a duplicate (spec §9 "Fingerprint-based upsert").
	UpsertOnFingerprint bool
}

// Insert validates row against table's schema, fills defaults and
// generated fields, and persists it, returning the stored row including
// any generated primary key (spec §4.1).
func (r *Registry) Insert(ctx context.Context, table string, row map[string]any, opts InsertOptions) (*models.Row, error) {
	def, ok := r.Schema(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}

	filled, err := validateAndFill(def, row)
	if err != nil {
		return nil, err
	}

	trustScore, govStamp, createdAt := standardColumnValues(row)
	pkField, _ := def.PrimaryKeyField()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if opts.UpsertOnFingerprint && def.FingerprintField != "" {
		fpVal, hasFp := filled[def.FingerprintField]
		if hasFp && fpVal != nil {
			existingID, found, err := findByFingerprint(ctx, tx, table, def.FingerprintField, fpVal)
			if err != nil {
				return nil, err
			}
			if found {
				filled[pkField.Name] = existingID
				if err := updateRowTx(ctx, tx, table, pkField.Name, existingID, filled, trustScore, govStamp); err != nil {
					return nil, err
				}
				if err := tx.Commit(); err != nil {
					return nil, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
				}
				return toRow(table, filled, trustScore, govStamp, createdAt), nil
			}
		}
	}

	if err := insertRowTx(ctx, tx, table, filled, trustScore, govStamp, createdAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}

	return toRow(table, filled, trustScore, govStamp, createdAt), nil
}

func standardColumnValues(row map[string]any) (float64, map[string]any, time.Time) {
	trust := 0.0
	if v, ok := row["trust_score"].(float64); ok {
		trust = v
	}
	var stamp map[string]any
	if v, ok := row["governance_stamp"].(map[string]any); ok {
		stamp = v
	}
	createdAt := time.Now().UTC()
	return trust, stamp, createdAt
}

func toRow(table string, values map[string]any, trust float64, stamp map[string]any, createdAt time.Time) *models.Row {
	return &models.Row{
		Table:           table,
		Values:          values,
		TrustScore:      trust,
		GovernanceStamp: stamp,
		CreatedAt:       createdAt,
	}
}

func findByFingerprint(ctx context.Context, tx *sql.Tx, table, fpField string, fpVal any) (string, bool, error) {
	pkCol := "id"
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 LIMIT 1`, quoteIdent(pkCol), quoteIdent(table), quoteIdent(fpField))
	var id string
	err := tx.QueryRowContext(ctx, q, fpVal).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	return id, true, nil
}

func insertRowTx(ctx context.Context, tx *sql.Tx, table string, filled map[string]any, trust float64, stamp map[string]any, createdAt time.Time) error {
	cols := make([]string, 0, len(filled)+3)
	vals := make([]any, 0, len(filled)+3)
	placeholders := make([]string, 0, len(filled)+3)

	i := 1
	for k, v := range filled {
		cols = append(cols, quoteIdent(k))
		vals = append(vals, v)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
		i++
	}

	cols = append(cols, quoteIdent("trust_score"), quoteIdent("governance_stamp"), quoteIdent("created_at"))
	placeholders = append(placeholders, fmt.Sprintf("$%d", i), fmt.Sprintf("$%d", i+1), fmt.Sprintf("$%d", i+2))
	stampJSON, _ := json.Marshal(stamp)
	vals = append(vals, trust, stampJSON, createdAt)

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, q, vals...); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	return nil
}

func updateRowTx(ctx context.Context, tx *sql.Tx, table, pkCol string, pkVal any, filled map[string]any, trust float64, stamp map[string]any) error {
	sets := make([]string, 0, len(filled)+2)
	vals := make([]any, 0, len(filled)+3)

	i := 1
	for k, v := range filled {
		if k == pkCol {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdent(k), i))
		vals = append(vals, v)
		i++
	}
	sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdent("trust_score"), i))
	vals = append(vals, trust)
	i++
	stampJSON, _ := json.Marshal(stamp)
	sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdent("governance_stamp"), i))
	vals = append(vals, stampJSON)
	i++

	vals = append(vals, pkVal)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", quoteIdent(table), strings.Join(sets, ", "), quoteIdent(pkCol), i)
	if _, err := tx.ExecContext(ctx, q, vals...); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	return nil
}

// Query returns rows matching equality filters, in a stable order across
// calls (insertion order, approximated by created_at ascending) when order
// is unset (spec §4.1).
func (r *Registry) Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error) {
	def, ok := r.Schema(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}

	var where []string
	var args []any
	i := 1
	for k, v := range filters {
		if _, known := def.FieldByName(k); !known && k != "trust_score" {
			continue // unknown columns ignored on read (forward compatibility)
		}
		where = append(where, fmt.Sprintf("%s = $%d", quoteIdent(k), i))
		args = append(args, v)
		i++
	}

	orderClause := "created_at ASC"
	if order != "" {
		orderClause = quoteIdent(order) + " ASC"
	}

	q := fmt.Sprintf("SELECT * FROM %s", quoteIdent(table))
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderClause
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	defer rows.Close()

	return scanRows(table, rows)
}

func scanRows(table string, rows *sql.Rows) ([]*models.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []*models.Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		values := make(map[string]any, len(cols))
		var trust float64
		var createdAt time.Time
		var stamp map[string]any

		for i, col := range cols {
			switch col {
			case "trust_score":
				if f, ok := raw[i].(float64); ok {
					trust = f
				}
			case "created_at":
				if t, ok := raw[i].(time.Time); ok {
					createdAt = t
				}
			case "governance_stamp":
				if b, ok := raw[i].([]byte); ok && len(b) > 0 {
					_ = json.Unmarshal(b, &stamp)
				}
			default:
				values[col] = raw[i]
			}
		}

		out = append(out, toRow(table, values, trust, stamp, createdAt))
	}
	return out, rows.Err()
}

// SetTrustScore persists a freshly-computed trust score for one row,
// bypassing the declared-field patch whitelist since trust_score is a
// standard column rather than a schema-declared field (spec §4.5 Rescore).
func (r *Registry) SetTrustScore(ctx context.Context, table, id string, score float64) error {
	def, ok := r.Schema(table)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}
	pkField, ok := def.PrimaryKeyField()
	if !ok {
		return errNoPrimaryKey
	}

	q := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2", quoteIdent(table), quoteIdent("trust_score"), quoteIdent(pkField.Name))
	if _, err := r.db.ExecContext(ctx, q, score, id); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	return nil
}

// Update applies a partial update to the row with the given primary key.
// Returns false (no error) when no row matches. Empty or nil patches are
// rejected, matching the source's defensive id/patch validation (spec
// §4.1).
func (r *Registry) Update(ctx context.Context, table, id string, patch map[string]any) (bool, error) {
	def, ok := r.Schema(table)
	if !ok {
		return false, fmt.Errorf("%w: %s", models.ErrUnknownTable, table)
	}
	if id == "" {
		return false, fmt.Errorf("%w: empty id", models.ErrInvalidID)
	}
	if len(patch) == 0 {
		return false, fmt.Errorf("%w: empty patch", models.ErrInvalidID)
	}

	pkField, ok := def.PrimaryKeyField()
	if !ok {
		return false, errNoPrimaryKey
	}
	if pkField.Type == models.FieldTypeUUID {
		if _, err := uuid.Parse(id); err != nil {
			return false, fmt.Errorf("%w: %v", models.ErrInvalidID, err)
		}
	}

	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+1)
	i := 1
	for k, v := range patch {
		if _, known := def.FieldByName(k); !known {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdent(k), i))
		args = append(args, v)
		i++
	}
	if len(sets) == 0 {
		return false, nil
	}
	args = append(args, id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", quoteIdent(table), strings.Join(sets, ", "), quoteIdent(pkField.Name), i)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrDependencyUnavailable, err)
	}
	return n > 0, nil
}
