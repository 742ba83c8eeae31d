// Package cleanup provides data retention and cleanup services.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/governance"
	"github.com/aldicp/aldicp/pkg/lifecycle"
)

// Service periodically enforces retention policies:
//   - Evicts completed-job results past CompletedJobRetention
//   - Discards governance proposals left pending past StaleProposalMaxAge
//
// All operations are idempotent and safe to run from multiple instances.
type Service struct {
	config     *config.RetentionConfig
	lifecycle  *lifecycle.Manager
	governance *governance.Gateway

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(
	cfg *config.RetentionConfig,
	lifecycleManager *lifecycle.Manager,
	gw *governance.Gateway,
) *Service {
	return &Service{
		config:     cfg,
		lifecycle:  lifecycleManager,
		governance: gw,
	}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("cleanup service started",
		"completed_job_retention", s.config.CompletedJobRetention,
		"stale_proposal_max_age", s.config.StaleProposalMaxAge,
		"interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.pruneCompletedJobs(ctx)
	s.pruneStaleProposals(ctx)
}

func (s *Service) pruneCompletedJobs(_ context.Context) {
	if s.lifecycle == nil {
		return
	}
	count := s.lifecycle.PruneCompleted(s.config.CompletedJobRetention)
	if count > 0 {
		slog.Info("retention: evicted completed job results", "count", count)
	}
}

func (s *Service) pruneStaleProposals(ctx context.Context) {
	if s.governance == nil {
		return
	}
	count := s.governance.PruneStalePending(ctx, s.config.StaleProposalMaxAge)
	if count > 0 {
		slog.Info("retention: discarded stale pending proposals", "count", count)
	}
}
