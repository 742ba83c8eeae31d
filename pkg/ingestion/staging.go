package ingestion

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var skipSuffixes = []string{".tmp", ".temp", ".lock", ".swp", ".swo", ".part", ".crdownload"}

// MaxFileSizeBytes defaults to 100 MB when unconfigured (spec §4.11 staging
// step 1).
const defaultMaxFileSizeBytes = 100 * 1024 * 1024

func shouldSkip(name string, size, maxSize int64) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	for _, suf := range skipSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	if maxSize <= 0 {
		maxSize = defaultMaxFileSizeBytes
	}
	return size > maxSize
}

// scan enumerates every watched folder once, staging any file that clears
// the skip/dedup/already-ingested checks (spec §4.11 staging steps 1-4).
func (p *Pipeline) scan(ctx context.Context) {
	for _, folder := range p.cfg.Folders {
		entries, err := os.ReadDir(folder)
		if err != nil {
			slog.Warn("ingestion: failed to read watched folder", "folder", folder, "error", err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(folder, entry.Name())
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if shouldSkip(entry.Name(), info.Size(), p.cfg.MaxFileSizeBytes) {
				continue
			}
			p.stageOne(ctx, path, info.ModTime(), info.Size())
		}
	}
}

func (p *Pipeline) stageOne(ctx context.Context, path string, mtime time.Time, size int64) {
	key := seenKey(path, mtime, size)

	p.seenMu.Lock()
	if _, already := p.seen[key]; already {
		p.seenMu.Unlock()
		return
	}
	p.seenMu.Unlock()

	if p.alreadyIngested(ctx, path) {
		p.seenMu.Lock()
		p.seen[key] = struct{}{}
		p.seenMu.Unlock()
		return
	}

	analysis := p.analyzer.Analyze(path)
	if len(analysis.Errors) > 0 {
		// Analysis errors are not marked as processed; next scan retries
		// (spec §4.11 retry semantics). Do not add to the seen set.
		slog.Warn("ingestion: analysis failed, will retry next scan", "path", path, "errors", analysis.Errors)
		return
	}

	proposal := p.inferrer.Propose(analysis, p.tables.List())
	draft := &Draft{
		Path:      path,
		Analysis:  analysis,
		Proposal:  proposal,
		State:     FileStateDrafted,
		DraftedAt: time.Now().UTC(),
	}

	p.seenMu.Lock()
	p.seen[key] = struct{}{}
	p.seenMu.Unlock()

	if proposal.Confidence >= p.cfg.ConfidenceDraftFloor {
		draft.State = FileStateProposed
		p.draftsMu.Lock()
		p.drafts = append(p.drafts, draft)
		p.draftsMu.Unlock()
		return
	}

	// Below the hand-off floor the draft is not kept: it is logged and
	// dropped without being queued for approval. The dedup key already
	// prevents the file from being re-analyzed while it is unchanged.
	slog.Debug("ingestion: draft below hand-off confidence, dropped", "path", path, "confidence", proposal.Confidence)
}

// alreadyIngested probes every known memory table for a row whose source
// path matches (spec §4.11 staging step 2), ahead of running the analyzer
// so a re-seen file skips without paying for a re-analysis. Tables that
// don't declare a "path" field simply return zero rows for the filter.
func (p *Pipeline) alreadyIngested(ctx context.Context, path string) bool {
	for _, table := range p.tables.List() {
		rows, err := p.tables.Query(ctx, table, map[string]any{"path": path}, 1, 0, "")
		if err != nil {
			continue
		}
		if len(rows) > 0 {
			return true
		}
	}
	return false
}
