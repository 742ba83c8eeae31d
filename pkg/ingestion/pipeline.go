package ingestion

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/events"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/lifecycle"
	"github.com/aldicp/aldicp/pkg/models"
	"github.com/aldicp/aldicp/pkg/training"
)

// Analyzer is the subset of *analyzer.Analyzer the pipeline needs.
type Analyzer interface {
	Analyze(path string) *models.Analysis
}

// Inferrer is the subset of *inference.Inferrer the pipeline needs.
type Inferrer interface {
	Propose(analysis *models.Analysis, knownTables []string) *models.InferenceProposal
}

// TableStore is the subset of *registry.Registry the pipeline needs to
// probe already_ingested? and enumerate known tables.
type TableStore interface {
	List() []string
	Query(ctx context.Context, table string, filters map[string]any, limit, offset int, order string) ([]*models.Row, error)
}

// Pipeline runs the staging and approval roles described in spec §4.11.
// It never touches the Schema Registry directly for inserts — those go
// through the Lifecycle Manager so the ingestion agent's own trust score
// accrues independently of the row's trust score.
type Pipeline struct {
	cfg        config.IngestionConfig
	analyzer   Analyzer
	inferrer   Inferrer
	tables     TableStore
	governance *governance.Gateway
	lifecycle  *lifecycle.Manager
	training   *training.Trigger
	bus        *events.Bus
	db         *sql.DB

	seenMu sync.Mutex
	seen   map[string]struct{}

	draftsMu sync.Mutex
	drafts   []*Draft

	pendingMu sync.Mutex
	pending   map[string]*pendingApproval

	stagingStop, stagingDone   chan struct{}
	approvalStop, approvalDone chan struct{}
}

type pendingApproval struct {
	draft     *Draft
	submitted time.Time
}

// New constructs a Pipeline. Any of the optional collaborators
// (governance, lifecycle, training, bus, db) may be nil in tests that
// don't exercise that hand-off.
func New(
	cfg config.IngestionConfig,
	a Analyzer,
	inf Inferrer,
	tables TableStore,
	gw *governance.Gateway,
	lm *lifecycle.Manager,
	tr *training.Trigger,
	bus *events.Bus,
	db *sql.DB,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		analyzer:   a,
		inferrer:   inf,
		tables:     tables,
		governance: gw,
		lifecycle:  lm,
		training:   tr,
		bus:        bus,
		db:         db,
		seen:       make(map[string]struct{}),
		pending:    make(map[string]*pendingApproval),
	}
}

// Start launches the staging and approval loops. Idempotent.
func (p *Pipeline) Start(ctx context.Context) {
	p.startStaging(ctx)
	p.startApproval(ctx)
}

// Stop halts both loops, blocking until each observes cancellation.
func (p *Pipeline) Stop() {
	p.stopStaging()
	p.stopApproval()
}

func (p *Pipeline) startStaging(ctx context.Context) {
	if p.stagingStop != nil {
		return
	}
	p.stagingStop = make(chan struct{})
	p.stagingDone = make(chan struct{})

	interval := p.cfg.StagingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		defer close(p.stagingDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stagingStop:
				return
			case <-ticker.C:
				p.scan(ctx)
			}
		}
	}()
}

func (p *Pipeline) stopStaging() {
	if p.stagingStop == nil {
		return
	}
	close(p.stagingStop)
	<-p.stagingDone
	p.stagingStop = nil
	p.stagingDone = nil
}

func (p *Pipeline) startApproval(ctx context.Context) {
	if p.approvalStop != nil {
		return
	}
	p.approvalStop = make(chan struct{})
	p.approvalDone = make(chan struct{})

	interval := p.cfg.ApprovalInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	go func() {
		defer close(p.approvalDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.approvalStop:
				return
			case <-ticker.C:
				p.drain(ctx)
				p.expireStalePending(ctx)
			}
		}
	}()
}

func (p *Pipeline) stopApproval() {
	if p.approvalStop == nil {
		return
	}
	close(p.approvalStop)
	<-p.approvalDone
	p.approvalStop = nil
	p.approvalDone = nil
}

// PendingEntry summarizes one draft awaiting a governance decision, for
// the Control Plane API's GET /auto-ingest/pending.
type PendingEntry struct {
	ApprovalID string    `json:"approval_id"`
	Path       string    `json:"path"`
	Table      string    `json:"target_table"`
	Confidence float64   `json:"confidence"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Pending returns drafts that were submitted to the Governance Gateway
// and are still awaiting a decision.
func (p *Pipeline) Pending() []PendingEntry {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	out := make([]PendingEntry, 0, len(p.pending))
	for id, pa := range p.pending {
		out = append(out, PendingEntry{
			ApprovalID:  id,
			Path:        pa.draft.Path,
			Table:       pa.draft.Proposal.TargetTable,
			Confidence:  pa.draft.Confidence(),
			SubmittedAt: pa.submitted,
		})
	}
	return out
}
