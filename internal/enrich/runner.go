package enrich

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/todocomb/internal/source"
	"github.com/joshharrison/todocomb/internal/task"
)

const (
	defaultMaxParallel  = 4
	defaultTimeout      = 30 * time.Second
	defaultContextLines = 30
)

// RunnerConfig controls concurrency and failure handling for enrichment.
type RunnerConfig struct {
	MaxParallel  int           // concurrent provider calls
	Timeout      time.Duration // per-call deadline
	Retries      int           // extra attempts after the first
	ContextLines int           // source lines around the marker sent to the provider
}

// Runner fans enrichment requests out to a provider with bounded
// concurrency. A failed task is recorded as a warning and skipped; the
// rest proceed.
type Runner struct {
	provider Provider
	cfg      RunnerConfig
	log      *log.Logger
}

// NewRunner creates a Runner, filling zero config fields with defaults.
func NewRunner(provider Provider, cfg RunnerConfig, logger *log.Logger) *Runner {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = defaultMaxParallel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.ContextLines <= 0 {
		cfg.ContextLines = defaultContextLines
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{provider: provider, cfg: cfg, log: logger}
}

// Run enriches every record in place and returns warnings for the ones that
// failed. A record whose enrichment fails keeps all its scanned fields and
// a nil Enrichment. Cancelling ctx stops undispatched work; records never
// dispatched stay unenriched without a warning.
func (r *Runner) Run(ctx context.Context, records []*task.Record, corpus *source.Corpus) []task.Warning {
	sem := make(chan struct{}, r.cfg.MaxParallel)
	var wg sync.WaitGroup

	var warnMu sync.Mutex
	var warnings []task.Warning

	skipped := 0
dispatch:
	for i, rec := range records {
		if ctx.Err() != nil {
			skipped = len(records) - i
			break
		}
		select {
		case <-ctx.Done():
			skipped = len(records) - i
			break dispatch
		case sem <- struct{}{}: // acquire semaphore
		}
		wg.Add(1)
		go func(rec *task.Record) {
			defer wg.Done()
			defer func() { <-sem }()

			req := Request{Task: rec}
			if corpus != nil {
				req.Context = corpus.Context(rec.File, rec.Line, r.cfg.ContextLines, r.cfg.ContextLines)
			}

			enr, err := r.enrichWithRetry(ctx, req)
			if err != nil {
				eerr := &EnrichmentError{TaskID: rec.ID, Provider: r.provider.Name(), Err: err}
				r.log.Warn("enrichment failed", "task", rec.ID, "file", rec.File, "err", err)
				warnMu.Lock()
				warnings = append(warnings, task.Warning{
					Path:   rec.File,
					Line:   rec.Line,
					Stage:  task.StageEnrich,
					Reason: eerr.Error(),
				})
				warnMu.Unlock()
				return
			}
			rec.Enrichment = enr
		}(rec)
	}
	wg.Wait()

	if skipped > 0 {
		r.log.Warn("enrichment cancelled", "skipped", skipped)
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Path != warnings[j].Path {
			return warnings[i].Path < warnings[j].Path
		}
		return warnings[i].Line < warnings[j].Line
	})
	return warnings
}

// enrichWithRetry runs one provider call per attempt, each under its own
// timeout. The parent context cancelling ends the attempts early.
func (r *Runner) enrichWithRetry(ctx context.Context, req Request) (*task.Enrichment, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		enr, err := r.provider.Enrich(callCtx, req)
		cancel()
		if err == nil {
			return enr, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
