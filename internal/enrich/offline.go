package enrich

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/joshharrison/todocomb/internal/task"
)

// complexityKeywords are body words that signal structural work.
var complexityKeywords = []string{
	"refactor", "rewrite", "redesign", "migrate", "overhaul",
	"architecture", "concurrency", "deadlock", "race", "security",
}

// priorityFactor weights the effort score by urgency tier.
var priorityFactor = map[task.Priority]float64{
	task.PriorityCritical: 1.5,
	task.PriorityHigh:     1.2,
	task.PriorityMedium:   1.0,
	task.PriorityLow:      0.8,
	task.PriorityNormal:   1.0,
}

var approachPool = []string{
	"Reproduce the current behaviour with a focused test, then make the change behind it.",
	"Isolate the affected code path and change it in place with a regression test.",
	"Sketch the target shape first, then move callers over one at a time.",
	"Land the mechanical part separately, then the behavioural change.",
}

var skillPool = []string{
	"debugging", "refactoring", "testing", "code review", "profiling", "api design",
}

var riskPool = []string{
	"hidden callers relying on current behaviour",
	"regressions in untested edge cases",
	"scope creep once the code is opened up",
	"merge conflicts with concurrent work in the same area",
}

// OfflineProvider estimates tasks from the marker text alone, with no
// network. Estimates are a pure function of the record, so repeated runs
// over an unchanged tree produce identical output.
type OfflineProvider struct{}

func NewOfflineProvider() *OfflineProvider { return &OfflineProvider{} }

func (p *OfflineProvider) Name() string { return "offline" }

// Enrich scores the marker body by length and structural keywords, weighted
// by priority, and maps the score onto a complexity tier and hour range.
// The task id seeds every in-range choice.
func (p *OfflineProvider) Enrich(_ context.Context, req Request) (*task.Enrichment, error) {
	t := req.Task
	body := strings.ToLower(t.Body)

	hits := 0
	for _, kw := range complexityKeywords {
		if strings.Contains(body, kw) {
			hits++
		}
	}

	score := float64(utf8.RuneCountInString(t.Body))/20 + float64(2*hits)
	score *= priorityFactor[t.Priority]

	seed := fnvHash(t.ID)
	frac := float64(seed%1000) / 999

	e := &task.Enrichment{}
	switch {
	case score > 8:
		e.Complexity = task.ComplexityComplex
		e.Hours = roundHalf(8 + frac*16)
	case score > 4:
		e.Complexity = task.ComplexityModerate
		e.Hours = roundHalf(3 + frac*5)
	default:
		e.Complexity = task.ComplexitySimple
		e.Hours = roundHalf(0.5 + frac*2.5)
	}

	e.Approach = approachPool[seed%uint64(len(approachPool))]
	e.Skills = pickTwo(skillPool, seed)
	if hits > 0 || t.Priority.Rank() >= task.PriorityHigh.Rank() {
		e.Risks = []string{riskPool[seed%uint64(len(riskPool))]}
	}
	return e, nil
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// roundHalf rounds to the nearest half hour.
func roundHalf(x float64) float64 {
	return math.Round(x*2) / 2
}

// pickTwo selects two distinct pool entries from the seed.
func pickTwo(pool []string, seed uint64) []string {
	n := uint64(len(pool))
	first := seed % n
	second := (seed/7 + 1 + first) % n
	if second == first {
		second = (second + 1) % n
	}
	return []string{pool[first], pool[second]}
}
