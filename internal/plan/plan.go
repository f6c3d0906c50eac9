// Package plan orders enriched tasks into a work schedule.
package plan

import (
	"sort"

	"github.com/joshharrison/todocomb/internal/task"
)

const defaultHoursPerDay = 8

// Item is one scheduled task with its running totals.
type Item struct {
	Task            *task.Record `json:"task"`
	Position        int          `json:"position"` // 1-based rank in the schedule
	CumulativeHours float64      `json:"cumulative_hours"`
	Day             int          `json:"day"` // 1-based working day
}

// Plan is a work schedule over enriched tasks. Tasks without an estimate
// cannot be scheduled and are listed separately.
type Plan struct {
	Items       []Item         `json:"items"`
	Unscheduled []*task.Record `json:"unscheduled,omitempty"`
	TotalHours  float64        `json:"total_hours"`
	Days        int            `json:"days"`
}

// Config controls schedule packing.
type Config struct {
	HoursPerDay float64
}

// Build orders enriched records by priority tier (most severe first), then
// estimated hours ascending, then id, and packs them into working days.
// The input slice is left untouched.
func Build(records []*task.Record, cfg Config) *Plan {
	if cfg.HoursPerDay <= 0 {
		cfg.HoursPerDay = defaultHoursPerDay
	}

	var scheduled []*task.Record
	var unscheduled []*task.Record
	for _, r := range records {
		if r.Enrichment == nil {
			unscheduled = append(unscheduled, r)
			continue
		}
		scheduled = append(scheduled, r)
	}

	sort.Slice(scheduled, func(i, j int) bool {
		a, b := scheduled[i], scheduled[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.Enrichment.Hours != b.Enrichment.Hours {
			return a.Enrichment.Hours < b.Enrichment.Hours
		}
		return a.ID < b.ID
	})
	sort.Slice(unscheduled, func(i, j int) bool {
		if unscheduled[i].File != unscheduled[j].File {
			return unscheduled[i].File < unscheduled[j].File
		}
		return unscheduled[i].Line < unscheduled[j].Line
	})

	p := &Plan{Unscheduled: unscheduled}
	day := 1
	dayHours := 0.0
	total := 0.0
	for i, r := range scheduled {
		h := r.Enrichment.Hours
		// A task that does not fit in the remaining day starts the next
		// one. Tasks longer than a full day still occupy a single slot.
		if dayHours > 0 && dayHours+h > cfg.HoursPerDay {
			day++
			dayHours = 0
		}
		dayHours += h
		total += h
		p.Items = append(p.Items, Item{
			Task:            r,
			Position:        i + 1,
			CumulativeHours: total,
			Day:             day,
		})
	}
	p.TotalHours = total
	if len(p.Items) > 0 {
		p.Days = p.Items[len(p.Items)-1].Day
	}
	return p
}
