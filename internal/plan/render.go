package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/joshharrison/todocomb/internal/ui"
)

// WriteTerminal renders the schedule for interactive use.
func WriteTerminal(w io.Writer, p *Plan) {
	fmt.Fprintf(w, "\n🪮 %s\n", ui.BoldCyan("Work Plan"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════"))
	fmt.Fprintf(w, "Scheduled:  %s across %s\n",
		ui.Bold(fmt.Sprintf("%d tasks (%.1fh)", len(p.Items), p.TotalHours)),
		ui.Bold(fmt.Sprintf("%d days", p.Days)))
	if len(p.Unscheduled) > 0 {
		fmt.Fprintf(w, "Unestimated: %s\n", ui.Yellow(fmt.Sprintf("%d", len(p.Unscheduled))))
	}
	fmt.Fprintln(w)

	day := 0
	for _, item := range p.Items {
		if item.Day != day {
			day = item.Day
			fmt.Fprintf(w, "  📅 %s %d\n", ui.BoldWhite("Day"), day)
		}

		body := item.Task.Body
		if utf8.RuneCountInString(body) > 46 {
			body = string([]rune(body)[:43]) + "..."
		}

		fmt.Fprintf(w, "    %2d. %s %-24s %-46s %s %s\n",
			item.Position,
			ui.PriorityIcon(item.Task.Priority),
			ui.PathRef(item.Task.File, item.Task.Line),
			body,
			ui.Bold(fmt.Sprintf("%5.1fh", item.Task.Enrichment.Hours)),
			ui.Dim(fmt.Sprintf("(Σ %.1fh)", item.CumulativeHours)))
	}

	if len(p.Unscheduled) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldYellow("Unestimated:"))
		for _, t := range p.Unscheduled {
			fmt.Fprintf(w, "    %s %s %s\n", ui.Yellow("?"), ui.PathRef(t.File, t.Line), t.Body)
		}
	}
	fmt.Fprintln(w)
}

// WriteMarkdown renders the schedule as a markdown checklist.
func WriteMarkdown(w io.Writer, p *Plan) {
	fmt.Fprintln(w, "# Work Plan")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scheduled: %d tasks, %.1fh across %d days\n", len(p.Items), p.TotalHours, p.Days)

	day := 0
	for _, item := range p.Items {
		if item.Day != day {
			day = item.Day
			fmt.Fprintf(w, "\n## Day %d\n\n", day)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "- [ ] `%s:%d` **%s**", item.Task.File, item.Task.Line, item.Task.Keyword)
		if item.Task.Assignee != "" {
			fmt.Fprintf(&b, " (%s)", item.Task.Assignee)
		}
		fmt.Fprintf(&b, ": %s (%.1fh)", item.Task.Body, item.Task.Enrichment.Hours)
		fmt.Fprintln(w, b.String())
	}

	if len(p.Unscheduled) > 0 {
		fmt.Fprintf(w, "\n## Unestimated\n\n")
		for _, t := range p.Unscheduled {
			fmt.Fprintf(w, "- `%s:%d` %s\n", t.File, t.Line, t.Body)
		}
	}
}

// WriteJSON writes the machine-readable schedule.
func WriteJSON(w io.Writer, p *Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("plan: encode: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("plan: write: %w", err)
	}
	return nil
}
