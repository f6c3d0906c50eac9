package scan

import (
	"context"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/todocomb/internal/classify"
	"github.com/joshharrison/todocomb/internal/source"
	"github.com/joshharrison/todocomb/internal/task"
)

// Config holds scanner settings.
type Config struct {
	Keywords []string
	Registry source.Registry
	Workers  int
}

// Scanner runs the extract/parse/classify pipeline over a batch of units.
// Units are independent, so they are scanned in parallel; the id-keyed set
// makes the merge commutative regardless of completion order.
type Scanner struct {
	cfg        Config
	classifier *classify.Classifier
	log        *log.Logger
}

// New creates a Scanner. Zero-value config fields get defaults: keyword
// TODO, the built-in profile registry, and one worker per CPU capped at 8.
func New(cfg Config, cl *classify.Classifier, logger *log.Logger) *Scanner {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = []string{"TODO"}
	}
	if cfg.Registry == nil {
		cfg.Registry = source.DefaultRegistry()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers()
	}
	if cl == nil {
		cl = classify.New(classify.DefaultRules())
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scanner{cfg: cfg, classifier: cl, log: logger}
}

// Scan extracts markers from all units and returns the merged record set
// plus one warning per skipped file. An undecodable file never aborts the
// scan. Warnings are sorted by path for stable output.
func (s *Scanner) Scan(ctx context.Context, units []source.Unit) (*task.Set, []task.Warning) {
	set := task.NewSet()

	var (
		wg       sync.WaitGroup
		warnMu   sync.Mutex
		warnings []task.Warning
	)
	sem := make(chan struct{}, s.cfg.Workers)

	for i := range units {
		if ctx.Err() != nil {
			break
		}
		u := units[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore

			profile := s.cfg.Registry.Lookup(u.Category)
			seq, err := Extract(&u, profile, s.cfg.Keywords)
			if err != nil {
				s.log.Warn("skipping file", "path", u.Path, "err", err)
				warnMu.Lock()
				warnings = append(warnings, task.Warning{Path: u.Path, Stage: task.StageScan, Reason: err.Error()})
				warnMu.Unlock()
				return
			}

			found := 0
			for m := range seq {
				parsed := Parse(m.Text)
				priority := s.classifier.Classify(parsed.Body)
				set.Put(task.New(u.Path, m.Line, parsed.Keyword, parsed.Assignee, parsed.Body, priority))
				found++
			}
			if found > 0 {
				s.log.Debug("scanned", "path", u.Path, "markers", found)
			}
		}()
	}
	wg.Wait()

	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Path < warnings[j].Path })
	return set, warnings
}

// defaultWorkers sizes the scan pool: one per CPU, capped at 8.
func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}
