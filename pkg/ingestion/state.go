// Package ingestion implements the Ingestion Pipeline (C11, spec §4.11): a
// cooperative pipeline of two periodic roles — staging and approval —
// driving each discovered file through analysis, schema inference,
// governance review, row insertion, trust scoring, and training
// notification.
package ingestion

import (
	"strconv"
	"time"

	"github.com/aldicp/aldicp/pkg/models"
)

// FileState is a file's position in the per-file state machine: unseen →
// analyzed → drafted → proposed → {approved → inserted → scored, rejected,
// pending}. scored, rejected, and stale-pending are terminal.
type FileState string

const (
	FileStateUnseen   FileState = "unseen"
	FileStateAnalyzed FileState = "analyzed"
	FileStateDrafted  FileState = "drafted"
	FileStateProposed FileState = "proposed"
	FileStateApproved FileState = "approved"
	FileStateInserted FileState = "inserted"
	FileStateScored   FileState = "scored"
	FileStateRejected FileState = "rejected"
	FileStatePending  FileState = "pending"
)

// Draft is a staged file awaiting the approval role's drain (spec §4.11
// staging step 3).
type Draft struct {
	Path      string                  `json:"path"`
	Analysis  *models.Analysis        `json:"analysis"`
	Proposal  *models.InferenceProposal `json:"proposal"`
	State     FileState               `json:"state"`
	DraftedAt time.Time               `json:"drafted_at"`
}

// Confidence is a shorthand accessor used when picking a risk tier.
func (d *Draft) Confidence() float64 {
	if d.Proposal == nil {
		return 0
	}
	return d.Proposal.Confidence
}

// seenKey is the process-local dedup key: path + mtime + size (spec §4.11
// staging step 1).
func seenKey(path string, mtime time.Time, size int64) string {
	return path + "|" + mtime.UTC().Format(time.RFC3339Nano) + "|" + strconv.FormatInt(size, 10)
}
