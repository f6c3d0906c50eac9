package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joshharrison/todocomb/internal/task"
)

// Thresholds maps exclamation-mark counts to tiers: a body with at least
// Critical marks classifies critical, and so on down. Zero marks is normal.
type Thresholds struct {
	Critical int
	High     int
	Medium   int
	Low      int
}

// Rules configures the classifier: punctuation thresholds, per-tier trigger
// words, and an optional locale for case folding.
type Rules struct {
	Thresholds Thresholds
	Triggers   map[task.Priority][]string
	Locale     string
}

// DefaultRules returns the built-in classification rules.
func DefaultRules() Rules {
	return Rules{
		Thresholds: Thresholds{Critical: 4, High: 3, Medium: 2, Low: 1},
		Triggers: map[task.Priority][]string{
			task.PriorityCritical: {"urgent", "immediately", "asap", "紧急", "立即"},
			task.PriorityHigh:     {"important", "must", "重要"},
			task.PriorityMedium:   {"should", "soon", "尽快"},
			task.PriorityLow:      {"minor", "someday", "nice to have", "以后"},
		},
	}
}

// triggerOrder fixes the evaluation order for the keyword signal: the first
// tier whose list matches wins.
var triggerOrder = []task.Priority{
	task.PriorityCritical,
	task.PriorityHigh,
	task.PriorityMedium,
	task.PriorityLow,
}

// Classifier assigns a priority tier from marker body text. It is a pure
// function of (body, rules): identical inputs always yield the same tier.
type Classifier struct {
	rules  Rules
	caser  cases.Caser
	folded map[task.Priority][]string
}

// New builds a Classifier, folding the trigger lists once up front. An empty
// locale uses Unicode case folding; a locale tag switches to lowercasing
// under that language's rules.
func New(rules Rules) *Classifier {
	caser := cases.Fold()
	if rules.Locale != "" {
		caser = cases.Lower(language.Make(rules.Locale))
	}

	folded := make(map[task.Priority][]string, len(rules.Triggers))
	for tier, words := range rules.Triggers {
		fw := make([]string, len(words))
		for i, w := range words {
			fw[i] = caser.String(w)
		}
		folded[tier] = fw
	}

	return &Classifier{rules: rules, caser: caser, folded: folded}
}

// Classify returns exactly one tier for a body. The punctuation and trigger
// signals are evaluated independently and the more severe tier wins.
func (c *Classifier) Classify(body string) task.Priority {
	p := c.punctuationTier(body)
	if k := c.triggerTier(body); k.Rank() > p.Rank() {
		return k
	}
	return p
}

func (c *Classifier) punctuationTier(body string) task.Priority {
	n := strings.Count(body, "!")
	t := c.rules.Thresholds
	switch {
	case n >= t.Critical:
		return task.PriorityCritical
	case n >= t.High:
		return task.PriorityHigh
	case n >= t.Medium:
		return task.PriorityMedium
	case n >= t.Low:
		return task.PriorityLow
	default:
		return task.PriorityNormal
	}
}

func (c *Classifier) triggerTier(body string) task.Priority {
	folded := c.caser.String(body)
	for _, tier := range triggerOrder {
		for _, w := range c.folded[tier] {
			if w != "" && strings.Contains(folded, w) {
				return tier
			}
		}
	}
	return task.PriorityNormal
}
