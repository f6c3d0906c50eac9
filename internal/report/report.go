// Package report turns scanned task records into grouped, render-ready
// views and writes them in terminal, markdown, and JSON form.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/joshharrison/todocomb/internal/task"
)

// Group holds the records of one priority tier, ordered by path then line.
type Group struct {
	Priority task.Priority  `json:"priority"`
	Tasks    []*task.Record `json:"tasks"`
}

// Model is the render-ready report: records grouped by tier, most severe
// tier first. Tiers with no records carry no group and no count entry.
type Model struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Total       int                   `json:"total"`
	Counts      map[task.Priority]int `json:"counts"`
	Groups      []Group               `json:"groups"`
	Warnings    []task.Warning        `json:"warnings,omitempty"`
}

// Build groups records into a Model. Within each tier, records are ordered
// by file path, then line. The input slice is left untouched.
func Build(records []*task.Record, warnings []task.Warning) *Model {
	m := &Model{
		GeneratedAt: time.Now().UTC(),
		Total:       len(records),
		Counts:      make(map[task.Priority]int),
		Groups:      []Group{}, // marshals as [] so empty reports still validate
		Warnings:    warnings,
	}

	byTier := make(map[task.Priority][]*task.Record)
	for _, r := range records {
		byTier[r.Priority] = append(byTier[r.Priority], r)
		m.Counts[r.Priority]++
	}

	for _, tier := range task.Tiers {
		rs := byTier[tier]
		if len(rs) == 0 {
			continue
		}
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].File != rs[j].File {
				return rs[i].File < rs[j].File
			}
			return rs[i].Line < rs[j].Line
		})
		m.Groups = append(m.Groups, Group{Priority: tier, Tasks: rs})
	}
	return m
}

// FilterOptions selects a subset of records. The zero value keeps everything.
type FilterOptions struct {
	Priorities []task.Priority // tiers to keep; empty keeps all
	Keyword    string          // marker keyword, matched case-insensitively
	Assignee   string          // exact assignee
}

// Filter returns the records matching opts, preserving input order. The
// input slice and the records it points to are never modified.
func Filter(records []*task.Record, opts FilterOptions) []*task.Record {
	var tiers map[task.Priority]bool
	if len(opts.Priorities) > 0 {
		tiers = make(map[task.Priority]bool, len(opts.Priorities))
		for _, p := range opts.Priorities {
			tiers[p] = true
		}
	}

	out := make([]*task.Record, 0, len(records))
	for _, r := range records {
		if tiers != nil && !tiers[r.Priority] {
			continue
		}
		if opts.Keyword != "" && !strings.EqualFold(r.Keyword, opts.Keyword) {
			continue
		}
		if opts.Assignee != "" && r.Assignee != opts.Assignee {
			continue
		}
		out = append(out, r)
	}
	return out
}
