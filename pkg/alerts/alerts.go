// Package alerts implements the Alert System (C7, spec §4.7): a periodic
// monitor over trust and contradiction conditions that maintains
// deterministic-identity active alerts plus a bounded history ring.
package alerts

import (
	"context"
	"crypto/sha1" //nolint:gosec // identity hash, not a security boundary
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/contradiction"
	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/trust"
)

var severityRank = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityError:    2,
	models.SeverityWarning:  3,
	models.SeverityMedium:   4,
	models.SeverityLow:      5,
	models.SeverityInfo:     6,
}

// TrustReporter is the subset of *trust.Engine the monitor needs.
type TrustReporter interface {
	Report(ctx context.Context) (*trust.Report, error)
}

// ContradictionSummarizer is the subset of *contradiction.Detector the
// monitor needs.
type ContradictionSummarizer interface {
	Summary(ctx context.Context, limitPerTable int) (*contradiction.Summary, error)
}

// System runs the periodic condition monitor and serves active/historical
// alert queries.
type System struct {
	cfg   config.AlertsConfig
	db    Persister
	trust TrustReporter
	contr ContradictionSummarizer

	mu      sync.Mutex
	active  map[string]*models.Alert
	history []models.Alert

	stopCh chan struct{}
	doneCh chan struct{}
}

// Persister stores alert state; DBPersister (persist.go) implements it
// over *sql.DB.
type Persister interface {
	Upsert(ctx context.Context, a *models.Alert) error
}

// New constructs a System. db may be nil to run without persistence (tests).
func New(cfg config.AlertsConfig, db Persister, trustSrc TrustReporter, contrSrc ContradictionSummarizer) *System {
	return &System{
		cfg:    cfg,
		db:     db,
		trust:  trustSrc,
		contr:  contrSrc,
		active: make(map[string]*models.Alert),
	}
}

// alertID derives a deterministic identity from source and a condition key
// so recurring conditions update the same alert instead of duplicating it
// (spec §4.7).
func alertID(source, conditionKey string) string {
	sum := sha1.Sum([]byte(source + "::" + conditionKey)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// emit creates a new alert or refreshes last_seen_at/metadata on an
// existing one, preserving first_seen_at (spec §4.7).
func (s *System) emit(source, conditionKey string, severity models.Severity, title, message string, metadata map[string]any) {
	id := alertID(source, conditionKey)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.active[id]; ok {
		existing.LastSeenAt = now
		existing.Metadata = metadata
		existing.Message = message
		s.persist(existing)
		return
	}

	a := &models.Alert{
		ID:          id,
		Severity:    severity,
		Source:      source,
		Title:       title,
		Message:     message,
		Metadata:    metadata,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
	s.active[id] = a
	s.recordHistory(*a)
	s.persist(a)
}

func (s *System) recordHistory(a models.Alert) {
	s.history = append(s.history, a)
	if s.cfg.HistorySize > 0 && len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
}

func (s *System) persist(a *models.Alert) {
	if s.db == nil {
		return
	}
	if err := s.db.Upsert(context.Background(), a); err != nil {
		slog.Warn("alerts: failed to persist alert", "id", a.ID, "error", err)
	}
}

// Active returns alerts matching severity (all if nil), sorted by severity
// then recency (spec §4.7).
func (s *System) Active(severity *models.Severity) []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Alert, 0, len(s.active))
	for _, a := range s.active {
		if a.Resolved {
			continue
		}
		if severity != nil && a.Severity != *severity {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := severityRank[out[i].Severity], severityRank[out[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return out[i].LastSeenAt.After(out[j].LastSeenAt)
	})
	return out
}

// Acknowledge marks an alert acknowledged without resolving it.
func (s *System) Acknowledge(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.active[id]
	if !ok {
		return false, nil
	}
	a.Acknowledged = true
	s.persist(a)
	return true, nil
}

// Resolve marks an alert resolved; it drops out of Active().
func (s *System) Resolve(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.active[id]
	if !ok {
		return false, nil
	}
	a.Resolved = true
	s.persist(a)
	return true, nil
}

// SummaryCounts is the Alert System's Summary() output.
type SummaryCounts struct {
	Active       int `json:"active"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Info         int `json:"info"`
	Error        int `json:"error"`
	Acknowledged int `json:"acknowledged"`
	Resolved     int `json:"resolved"`
}

// Summary aggregates counts over all tracked alerts.
func (s *System) Summary() SummaryCounts {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c SummaryCounts
	for _, a := range s.active {
		if a.Resolved {
			c.Resolved++
			continue
		}
		c.Active++
		if a.Acknowledged {
			c.Acknowledged++
		}
		switch a.Severity {
		case models.SeverityCritical:
			c.Critical++
		case models.SeverityWarning, models.SeverityMedium, models.SeverityHigh:
			c.Warning++
		case models.SeverityInfo, models.SeverityLow:
			c.Info++
		case models.SeverityError:
			c.Error++
		}
	}
	return c
}

// Start launches the periodic monitor loop; Stop is idempotent.
func (s *System) Start(interval time.Duration) {
	if interval <= 0 {
		interval = s.cfg.MonitorInterval
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				if err := s.Check(context.Background()); err != nil {
					slog.Error("alerts: check failed", "error", err)
				}
			}
		}
	}()
}

// Stop halts the monitor loop, blocking until it exits.
func (s *System) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
}
