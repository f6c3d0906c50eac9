package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteMarkdown renders the report as a markdown document.
func WriteMarkdown(w io.Writer, m *Model) {
	fmt.Fprintln(w, "# Task Markers")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Generated: %s\n", m.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Total: %d\n", m.Total)

	for _, g := range m.Groups {
		fmt.Fprintf(w, "\n## %s (%d)\n\n", titleCase(string(g.Priority)), len(g.Tasks))
		for _, t := range g.Tasks {
			var b strings.Builder
			fmt.Fprintf(&b, "- `%s:%d` **%s**", t.File, t.Line, t.Keyword)
			if t.Assignee != "" {
				fmt.Fprintf(&b, " (%s)", t.Assignee)
			}
			fmt.Fprintf(&b, ": %s", t.Body)
			fmt.Fprintln(w, b.String())

			if e := t.Enrichment; e != nil {
				fmt.Fprintf(w, "  - complexity: %s, estimate: %.1fh\n", e.Complexity, e.Hours)
				if e.Approach != "" {
					fmt.Fprintf(w, "  - approach: %s\n", e.Approach)
				}
				if len(e.Skills) > 0 {
					fmt.Fprintf(w, "  - skills: %s\n", strings.Join(e.Skills, ", "))
				}
				if len(e.Risks) > 0 {
					fmt.Fprintf(w, "  - risks: %s\n", strings.Join(e.Risks, ", "))
				}
			}
		}
	}

	if len(m.Warnings) > 0 {
		fmt.Fprintf(w, "\n## Skipped\n\n")
		for _, wr := range m.Warnings {
			loc := wr.Path
			if wr.Line > 0 {
				loc = fmt.Sprintf("%s:%d", wr.Path, wr.Line)
			}
			fmt.Fprintf(w, "- `%s`: %s\n", loc, wr.Reason)
		}
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
