package lifecycle

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/models"
)

// SubmitJob appends a job to the FIFO queue and returns its ID (spec §4.10
// op 3).
func (m *Manager) SubmitJob(kind config.AgentKind, job *models.Job) string {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.State = models.JobStateQueued

	m.queueMu.Lock()
	m.queue = append(m.queue, queuedJob{kind: kind, job: job})
	m.queueMu.Unlock()

	return job.ID
}

// PendingJobs returns the number of jobs still waiting in the queue.
func (m *Manager) PendingJobs() int {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	return len(m.queue)
}

func (m *Manager) popJob() (queuedJob, bool) {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	if len(m.queue) == 0 {
		return queuedJob{}, false
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next, true
}

// ProcessQueue drains the queue, launching each job as an independent
// concurrent task bounded by maxConcurrent (spec §4.10 op 3). A buffered
// semaphore stands in for the spec's "count agents currently busy" bound:
// both cap the number of jobs in flight at once, and a released slot lets
// the next queued job launch immediately.
func (m *Manager) ProcessQueue(ctx context.Context, maxConcurrent int) {
	if maxConcurrent <= 0 {
		maxConcurrent = m.cfg.MaxConcurrentJobs
	}
	sem := make(chan struct{}, maxConcurrent)

	for {
		qj, ok := m.popJob()
		if !ok {
			return
		}

		sem <- struct{}{}
		go func(qj queuedJob) {
			defer func() { <-sem }()
			if _, err := m.ExecuteJob(ctx, qj.kind, qj.job, true); err != nil {
				slog.Warn("lifecycle: queued job failed", "job_id", qj.job.ID, "kind", qj.kind, "error", err)
			}
		}(qj)
	}
}
