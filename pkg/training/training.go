// Package training implements the Training Trigger (C8, spec §4.8):
// per-table row-insert counters that fire a training_required event once
// a row-count, time, or first-training threshold is crossed.
package training

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/events"
)

// Trigger tracks per-table insert counters and fires training_required
// events against the configured policy.
type Trigger struct {
	cfg  *config.Config
	db   *sql.DB
	bus  *events.Bus

	mu       sync.Mutex
	counters map[string]*counterState
}

type counterState struct {
	newRows       int
	lastTrainedAt *time.Time
}

// New constructs a Trigger. db may be nil to run without persistence.
func New(cfg *config.Config, db *sql.DB, bus *events.Bus) *Trigger {
	return &Trigger{cfg: cfg, db: db, bus: bus, counters: make(map[string]*counterState)}
}

// OnInserted increments table's counter and fires training if the policy's
// thresholds are crossed (spec §4.8).
func (t *Trigger) OnInserted(ctx context.Context, table string) {
	policy := t.cfg.TrainingPolicyFor(table)

	t.mu.Lock()
	state, ok := t.counters[table]
	if !ok {
		state = &counterState{}
		t.counters[table] = state
	}
	state.newRows++
	shouldFire := t.shouldFire(state, policy)
	t.mu.Unlock()

	if shouldFire {
		t.fire(ctx, table, policy.TrainingType)
	} else {
		t.persistCounter(ctx, table, state)
	}
}

func (t *Trigger) shouldFire(state *counterState, policy config.TrainingPolicy) bool {
	if state.newRows >= policy.RowThreshold {
		return true
	}
	if state.lastTrainedAt == nil {
		return state.newRows >= policy.MinRows
	}
	elapsed := time.Since(*state.lastTrainedAt)
	if elapsed.Hours() >= policy.TimeThresholdHours && state.newRows >= policy.MinRows {
		return true
	}
	return false
}

// ForceTraining fires training for table regardless of thresholds (spec §4.8).
func (t *Trigger) ForceTraining(ctx context.Context, table string) {
	policy := t.cfg.TrainingPolicyFor(table)
	t.fire(ctx, table, policy.TrainingType)
}

func (t *Trigger) fire(ctx context.Context, table, trainingType string) {
	now := time.Now().UTC()

	t.mu.Lock()
	state := t.counters[table]
	if state == nil {
		state = &counterState{}
		t.counters[table] = state
	}
	newRows := state.newRows
	state.newRows = 0
	state.lastTrainedAt = &now
	t.mu.Unlock()

	slog.Info("training_required", "table", table, "new_rows", newRows, "training_type", trainingType)
	if t.bus != nil {
		t.bus.Publish("training_required", map[string]any{
			"table":         table,
			"new_rows":      newRows,
			"training_type": trainingType,
		})
	}
	t.persistCounter(ctx, table, state)
}

func (t *Trigger) persistCounter(ctx context.Context, table string, state *counterState) {
	if t.db == nil {
		return
	}
	t.mu.Lock()
	newRows := state.newRows
	lastTrainedAt := state.lastTrainedAt
	t.mu.Unlock()

	_, err := t.db.ExecContext(ctx, `
		INSERT INTO training_counters (table_name, new_rows_since_last_training, last_training_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (table_name) DO UPDATE SET
			new_rows_since_last_training = EXCLUDED.new_rows_since_last_training,
			last_training_at = EXCLUDED.last_training_at
	`, table, newRows, lastTrainedAt)
	if err != nil {
		slog.Warn("training: failed to persist counter", "table", table, "error", err)
	}
}
