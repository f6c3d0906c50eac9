package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joshharrison/todocomb/internal/source"
	"github.com/joshharrison/todocomb/internal/task"
)

// scriptedProvider fails a task the configured number of times, then
// succeeds. A negative failure count means the task always fails.
type scriptedProvider struct {
	mu       sync.Mutex
	failures map[string]int
	calls    map[string]int
	reqs     []Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Enrich(_ context.Context, req Request) (*task.Enrichment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[req.Task.ID]++
	p.reqs = append(p.reqs, req)

	if left := p.failures[req.Task.ID]; left != 0 {
		if left > 0 {
			p.failures[req.Task.ID]--
		}
		return nil, errors.New("provider unavailable")
	}
	return &task.Enrichment{Complexity: task.ComplexitySimple, Hours: 1}, nil
}

// blockingProvider never answers before its context expires.
type blockingProvider struct{}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Enrich(ctx context.Context, _ Request) (*task.Enrichment, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// concurrencyProbe records the highest number of simultaneous calls.
type concurrencyProbe struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (p *concurrencyProbe) Name() string { return "probe" }

func (p *concurrencyProbe) Enrich(_ context.Context, _ Request) (*task.Enrichment, error) {
	p.mu.Lock()
	p.active++
	if p.active > p.maxSeen {
		p.maxSeen = p.active
	}
	p.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	return &task.Enrichment{Complexity: task.ComplexitySimple, Hours: 1}, nil
}

func testRecords(t *testing.T, n int) []*task.Record {
	t.Helper()
	records := make([]*task.Record, n)
	for i := range records {
		records[i] = task.New("f.py", i+1, "TODO", "", "work item", task.PriorityNormal)
	}
	return records
}

func TestRunner_EnrichesEveryRecord(t *testing.T) {
	records := testRecords(t, 6)
	r := NewRunner(&scriptedProvider{}, RunnerConfig{}, nil)

	warnings := r.Run(context.Background(), records, nil)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	for _, rec := range records {
		if rec.Enrichment == nil {
			t.Errorf("%s:%d not enriched", rec.File, rec.Line)
		}
	}
}

func TestRunner_FailedTaskDoesNotBlockOthers(t *testing.T) {
	records := testRecords(t, 3)
	p := &scriptedProvider{failures: map[string]int{records[1].ID: -1}}
	r := NewRunner(p, RunnerConfig{}, nil)

	warnings := r.Run(context.Background(), records, nil)

	if records[1].Enrichment != nil {
		t.Error("failed record should keep nil enrichment")
	}
	if records[0].Enrichment == nil || records[2].Enrichment == nil {
		t.Error("other records should still be enriched")
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Stage != task.StageEnrich || w.Path != "f.py" || w.Line != 2 {
		t.Errorf("warning = %+v", w)
	}
	if !strings.Contains(w.Reason, "scripted") {
		t.Errorf("warning reason %q should name the provider", w.Reason)
	}
}

func TestRunner_RetriesUpToConfiguredCount(t *testing.T) {
	records := testRecords(t, 1)
	p := &scriptedProvider{failures: map[string]int{records[0].ID: 2}}
	r := NewRunner(p, RunnerConfig{Retries: 2}, nil)

	warnings := r.Run(context.Background(), records, nil)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none after retries", warnings)
	}
	if records[0].Enrichment == nil {
		t.Fatal("record should be enriched on the final attempt")
	}
	if got := p.calls[records[0].ID]; got != 3 {
		t.Errorf("provider called %d times, want 3", got)
	}
}

func TestRunner_NoRetriesByDefault(t *testing.T) {
	records := testRecords(t, 1)
	p := &scriptedProvider{failures: map[string]int{records[0].ID: 1}}
	r := NewRunner(p, RunnerConfig{}, nil)

	warnings := r.Run(context.Background(), records, nil)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if got := p.calls[records[0].ID]; got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestRunner_TimeoutProducesWarning(t *testing.T) {
	records := testRecords(t, 1)
	r := NewRunner(&blockingProvider{}, RunnerConfig{Timeout: 10 * time.Millisecond}, nil)

	warnings := r.Run(context.Background(), records, nil)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if !strings.Contains(warnings[0].Reason, "deadline") {
		t.Errorf("warning reason %q should mention the deadline", warnings[0].Reason)
	}
	if records[0].Enrichment != nil {
		t.Error("timed-out record should keep nil enrichment")
	}
}

func TestRunner_CancelSkipsUndispatchedWork(t *testing.T) {
	p := &scriptedProvider{}
	r := NewRunner(p, RunnerConfig{MaxParallel: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := testRecords(t, 6)
	warnings := r.Run(ctx, records, nil)

	if len(p.reqs) != 0 {
		t.Errorf("provider called %d times after cancel, want 0", len(p.reqs))
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none for undispatched tasks", warnings)
	}
	for _, rec := range records {
		if rec.Enrichment != nil {
			t.Fatalf("record %s enriched after cancel", rec.ID)
		}
	}
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	records := testRecords(t, 12)
	p := &concurrencyProbe{}
	r := NewRunner(p, RunnerConfig{MaxParallel: 2}, nil)

	r.Run(context.Background(), records, nil)
	if p.maxSeen > 2 {
		t.Errorf("saw %d concurrent calls, want at most 2", p.maxSeen)
	}
}

func TestRunner_SendsSurroundingContext(t *testing.T) {
	unit := source.Unit{Path: "f.py", Content: "alpha\nbeta\n# TODO: x\ngamma\n"}
	corpus := source.NewCorpus([]source.Unit{unit})
	records := []*task.Record{task.New("f.py", 3, "TODO", "", "x", task.PriorityNormal)}

	p := &scriptedProvider{}
	r := NewRunner(p, RunnerConfig{ContextLines: 2}, nil)
	r.Run(context.Background(), records, corpus)

	if len(p.reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(p.reqs))
	}
	got := p.reqs[0].Context
	for _, want := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(got, want) {
			t.Errorf("context %q missing %q", got, want)
		}
	}
}
