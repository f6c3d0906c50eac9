// Package enrich augments task records with effort estimates from an
// estimation provider. Providers share one reply contract; the runner owns
// concurrency, timeouts, and retries.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/todocomb/internal/task"
)

// Provider computes effort metadata for a single task.
type Provider interface {
	Name() string
	Enrich(ctx context.Context, req Request) (*task.Enrichment, error)
}

// Request carries one task and its surrounding source lines to a provider.
type Request struct {
	Task    *task.Record
	Context string // nearby source lines, may be empty
}

// EnrichmentError reports a failed enrichment attempt for one task.
type EnrichmentError struct {
	TaskID   string
	Provider string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s via %s: %v", e.TaskID, e.Provider, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// parseEnrichment extracts enrichment fields from a model reply. Replies
// come back wrapped in fences or with extra keys often enough that fields
// are pulled with gjson instead of strict decoding.
func parseEnrichment(text string) (*task.Enrichment, error) {
	text = stripJSONFences(text)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("reply is not valid JSON: %q", snippet(text))
	}
	root := gjson.Parse(text)

	complexity := root.Get("complexity").String()
	switch complexity {
	case task.ComplexitySimple, task.ComplexityModerate, task.ComplexityComplex:
	default:
		return nil, fmt.Errorf("reply has unknown complexity %q", complexity)
	}

	hours := root.Get("estimated_hours")
	if !hours.Exists() {
		return nil, fmt.Errorf("reply is missing estimated_hours")
	}
	if hours.Float() < 0 {
		return nil, fmt.Errorf("reply has negative estimated_hours %v", hours.Float())
	}

	e := &task.Enrichment{
		Complexity: complexity,
		Hours:      hours.Float(),
		Approach:   root.Get("approach").String(),
	}
	for _, s := range root.Get("skills").Array() {
		e.Skills = append(e.Skills, s.String())
	}
	for _, r := range root.Get("risks").Array() {
		e.Risks = append(e.Risks, r.String())
	}
	return e, nil
}

// stripJSONFences removes markdown code fences that models sometimes add.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

func snippet(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
