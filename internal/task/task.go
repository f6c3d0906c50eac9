package task

import (
	"fmt"

	"github.com/google/uuid"
)

// Priority is the urgency tier assigned to a task when it is classified.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
)

// Tiers lists all priorities from most to least severe. Report sections and
// work-plan ordering follow this order.
var Tiers = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityNormal}

// Rank returns the numeric severity of a priority. Higher means more severe.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority converts a string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityNormal:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Record is one task marker found in a source file. Priority is set exactly
// once at classification; Enrichment stays nil until a provider call
// succeeds and is then fully populated in a single assignment.
type Record struct {
	ID         string      `json:"id"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Keyword    string      `json:"keyword"`
	Assignee   string      `json:"assignee,omitempty"`
	Body       string      `json:"body"`
	Priority   Priority    `json:"priority"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// Enrichment holds externally computed effort metadata for one Record.
type Enrichment struct {
	Complexity string   `json:"complexity"`
	Hours      float64  `json:"estimated_hours"`
	Approach   string   `json:"approach"`
	Skills     []string `json:"skills,omitempty"`
	Risks      []string `json:"risks,omitempty"`
}

// Complexity tiers reported by enrichment providers.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Warning records a non-fatal problem (a skipped file, a failed enrichment
// call) with enough context for the caller to surface it.
type Warning struct {
	Path   string `json:"path,omitempty"`
	Line   int    `json:"line,omitempty"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Warning stages.
const (
	StageScan   = "scan"
	StageEnrich = "enrich"
)

// NewID derives the stable task id for a marker at file:line. Re-scanning an
// unchanged file yields the same id.
func NewID(file string, line int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", file, line))).String()
}

// New builds a Record from parsed marker fields, deriving its ID.
func New(file string, line int, keyword, assignee, body string, priority Priority) *Record {
	return &Record{
		ID:       NewID(file, line),
		File:     file,
		Line:     line,
		Keyword:  keyword,
		Assignee: assignee,
		Body:     body,
		Priority: priority,
	}
}
