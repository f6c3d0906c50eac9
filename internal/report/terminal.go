package report

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/joshharrison/todocomb/internal/task"
	"github.com/joshharrison/todocomb/internal/ui"
)

// WriteTerminal renders the report for interactive use.
func WriteTerminal(w io.Writer, m *Model) {
	fmt.Fprintf(w, "\n🪮 %s\n", ui.BoldCyan("Task Marker Report"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════════"))
	fmt.Fprintf(w, "Markers:  %s\n", ui.Bold(fmt.Sprintf("%d", m.Total)))
	if len(m.Warnings) > 0 {
		fmt.Fprintf(w, "Skipped:  %s\n", ui.Yellow(fmt.Sprintf("%d", len(m.Warnings))))
	}
	fmt.Fprintln(w)

	for _, g := range m.Groups {
		fmt.Fprintf(w, "  %s %s (%d)\n", ui.PriorityIcon(g.Priority), ui.PriorityBadge(g.Priority), len(g.Tasks))
		for _, t := range g.Tasks {
			writeTaskLine(w, t)
		}
		fmt.Fprintln(w)
	}

	if len(m.Warnings) > 0 {
		fmt.Fprintf(w, "%s\n", ui.BoldYellow("Skipped:"))
		for _, wr := range m.Warnings {
			loc := wr.Path
			if wr.Line > 0 {
				loc = fmt.Sprintf("%s:%d", wr.Path, wr.Line)
			}
			fmt.Fprintf(w, "  %s %-28s %s\n", ui.Yellow("⚠"), loc, ui.Dim(wr.Reason))
		}
		fmt.Fprintln(w)
	}
}

func writeTaskLine(w io.Writer, t *task.Record) {
	who := ""
	if t.Assignee != "" {
		who = ui.Magenta("@"+t.Assignee) + " "
	}

	body := t.Body
	if utf8.RuneCountInString(body) > 60 {
		body = string([]rune(body)[:57]) + "..."
	}

	est := ""
	if t.Enrichment != nil {
		est = " " + ui.Dim(fmt.Sprintf("[%.1fh %s]", t.Enrichment.Hours, t.Enrichment.Complexity))
	}

	fmt.Fprintf(w, "    %s %-28s %s%s%s\n", ui.BoldWhite(t.Keyword), ui.PathRef(t.File, t.Line), who, body, est)
}
