package plan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"pgregory.net/rapid"

	"github.com/joshharrison/todocomb/internal/task"
)

func estimated(t *testing.T, file string, line int, prio task.Priority, hours float64) *task.Record {
	t.Helper()
	r := task.New(file, line, "TODO", "", "work on "+file, prio)
	r.Enrichment = &task.Enrichment{Complexity: task.ComplexityModerate, Hours: hours}
	return r
}

func TestBuild_OrdersByTierThenHoursThenID(t *testing.T) {
	records := []*task.Record{
		estimated(t, "slow.go", 1, task.PriorityHigh, 6),
		estimated(t, "quick.go", 1, task.PriorityHigh, 1),
		estimated(t, "later.go", 1, task.PriorityLow, 0.5),
		estimated(t, "burning.go", 1, task.PriorityCritical, 8),
	}

	p := Build(records, Config{})

	wantFiles := []string{"burning.go", "quick.go", "slow.go", "later.go"}
	if len(p.Items) != len(wantFiles) {
		t.Fatalf("got %d items, want %d", len(p.Items), len(wantFiles))
	}
	for i, want := range wantFiles {
		if p.Items[i].Task.File != want {
			t.Errorf("items[%d] = %s, want %s", i, p.Items[i].Task.File, want)
		}
		if p.Items[i].Position != i+1 {
			t.Errorf("items[%d].Position = %d, want %d", i, p.Items[i].Position, i+1)
		}
	}
}

func TestBuild_TiesBreakByID(t *testing.T) {
	a := estimated(t, "a.go", 1, task.PriorityHigh, 2)
	b := estimated(t, "b.go", 1, task.PriorityHigh, 2)

	p := Build([]*task.Record{b, a}, Config{})
	if len(p.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(p.Items))
	}
	if p.Items[0].Task.ID > p.Items[1].Task.ID {
		t.Error("equal tier and hours should order by id")
	}

	// Same input in the other order schedules identically.
	again := Build([]*task.Record{a, b}, Config{})
	for i := range p.Items {
		if p.Items[i].Task.ID != again.Items[i].Task.ID {
			t.Fatalf("schedule depends on input order at %d", i)
		}
	}
}

func TestBuild_CumulativeHours(t *testing.T) {
	records := []*task.Record{
		estimated(t, "a.go", 1, task.PriorityHigh, 2),
		estimated(t, "b.go", 1, task.PriorityHigh, 3),
		estimated(t, "c.go", 1, task.PriorityNormal, 1.5),
	}

	p := Build(records, Config{})

	want := []float64{2, 5, 6.5}
	for i, item := range p.Items {
		if item.CumulativeHours != want[i] {
			t.Errorf("items[%d].CumulativeHours = %v, want %v", i, item.CumulativeHours, want[i])
		}
	}
	if p.TotalHours != 6.5 {
		t.Errorf("TotalHours = %v, want 6.5", p.TotalHours)
	}
}

func TestBuild_UnestimatedListedSeparately(t *testing.T) {
	bare := task.New("bare.go", 7, "TODO", "", "no estimate yet", task.PriorityHigh)
	records := []*task.Record{
		estimated(t, "a.go", 1, task.PriorityNormal, 1),
		bare,
	}

	p := Build(records, Config{})

	if len(p.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(p.Items))
	}
	if len(p.Unscheduled) != 1 || p.Unscheduled[0].ID != bare.ID {
		t.Fatalf("Unscheduled = %v, want the bare record", p.Unscheduled)
	}
	if p.TotalHours != 1 {
		t.Errorf("TotalHours = %v, want 1", p.TotalHours)
	}
}

func TestBuild_PacksDays(t *testing.T) {
	records := []*task.Record{
		estimated(t, "a.go", 1, task.PriorityCritical, 3),
		estimated(t, "b.go", 1, task.PriorityCritical, 4),
		estimated(t, "c.go", 1, task.PriorityCritical, 5),
		estimated(t, "d.go", 1, task.PriorityCritical, 2),
	}

	p := Build(records, Config{HoursPerDay: 8})

	// Hours ascending within the tier: 2, 3, 4, 5. Day one holds 2+3, the
	// 4h task starts day two, and 4+5 overflows again.
	wantDays := []int{1, 1, 2, 3}
	for i, item := range p.Items {
		if item.Day != wantDays[i] {
			t.Errorf("items[%d] (%.0fh) on day %d, want %d", i, item.Task.Enrichment.Hours, item.Day, wantDays[i])
		}
	}
	if p.Days != 3 {
		t.Errorf("Days = %d, want 3", p.Days)
	}
}

func TestBuild_OversizedTaskGetsOwnDay(t *testing.T) {
	records := []*task.Record{
		estimated(t, "a.go", 1, task.PriorityHigh, 12),
		estimated(t, "b.go", 1, task.PriorityNormal, 2),
	}

	p := Build(records, Config{HoursPerDay: 8})

	if p.Items[0].Day != 1 {
		t.Errorf("oversized task on day %d, want 1", p.Items[0].Day)
	}
	if p.Items[1].Day != 2 {
		t.Errorf("following task on day %d, want 2", p.Items[1].Day)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	records := []*task.Record{
		estimated(t, "z.go", 1, task.PriorityNormal, 1),
		estimated(t, "a.go", 1, task.PriorityCritical, 2),
	}
	before := make([]*task.Record, len(records))
	copy(before, records)

	Build(records, Config{})

	for i := range before {
		if records[i] != before[i] {
			t.Fatalf("input slice reordered at %d", i)
		}
	}
}

func TestWriteTerminal_ShowsDaysAndUnestimated(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	records := []*task.Record{
		estimated(t, "a.go", 1, task.PriorityCritical, 6),
		estimated(t, "b.go", 2, task.PriorityNormal, 4),
		task.New("bare.go", 3, "TODO", "", "no estimate yet", task.PriorityLow),
	}
	p := Build(records, Config{HoursPerDay: 8})

	var buf bytes.Buffer
	WriteTerminal(&buf, p)
	out := buf.String()

	for _, want := range []string{"Work Plan", "Day 1", "Day 2", "a.go:1", "bare.go:3", "Unestimated"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteMarkdown_Checklist(t *testing.T) {
	p := Build([]*task.Record{estimated(t, "a.go", 1, task.PriorityHigh, 2)}, Config{})

	var buf bytes.Buffer
	WriteMarkdown(&buf, p)
	out := buf.String()

	for _, want := range []string{"# Work Plan", "## Day 1", "- [ ] `a.go:1` **TODO**: work on a.go (2.0h)"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestProperty_ScheduleInvariants(t *testing.T) {
	tiers := []task.Priority{
		task.PriorityCritical, task.PriorityHigh, task.PriorityMedium,
		task.PriorityLow, task.PriorityNormal,
	}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		records := make([]*task.Record, n)
		for i := range records {
			r := task.New("f.go", i+1, "TODO", "", "item", rapid.SampledFrom(tiers).Draw(rt, "tier"))
			if rapid.Bool().Draw(rt, "estimated") {
				r.Enrichment = &task.Enrichment{
					Complexity: task.ComplexitySimple,
					Hours:      float64(rapid.IntRange(1, 32).Draw(rt, "halfHours")) / 2,
				}
			}
			records[i] = r
		}

		p := Build(records, Config{})

		if len(p.Items)+len(p.Unscheduled) != n {
			t.Fatalf("items %d + unscheduled %d != %d", len(p.Items), len(p.Unscheduled), n)
		}

		prevRank := -1
		prevCum := 0.0
		sum := 0.0
		for i, item := range p.Items {
			rank := item.Task.Priority.Rank()
			if prevRank != -1 && rank > prevRank {
				t.Fatalf("severity increases at position %d", i)
			}
			prevRank = rank
			if item.CumulativeHours < prevCum {
				t.Fatalf("cumulative hours decrease at position %d", i)
			}
			prevCum = item.CumulativeHours
			sum += item.Task.Enrichment.Hours
			if item.Day < 1 || (i > 0 && item.Day < p.Items[i-1].Day) {
				t.Fatalf("days not monotone at position %d", i)
			}
		}
		if len(p.Items) > 0 && p.Items[len(p.Items)-1].CumulativeHours != sum {
			t.Fatalf("final cumulative %v != sum %v", p.Items[len(p.Items)-1].CumulativeHours, sum)
		}
		if p.TotalHours != sum {
			t.Fatalf("TotalHours %v != sum %v", p.TotalHours, sum)
		}
	})
}
