package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/joshharrison/todocomb/internal/task"
)

// Sprint color functions for building styled strings.
var (
	Bold       = color.New(color.Bold).SprintFunc()
	Dim        = color.New(color.Faint).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	Red        = color.New(color.FgRed).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	Magenta    = color.New(color.FgMagenta).SprintFunc()
	BoldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldWhite  = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored todocomb logo to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	teeth := color.New(color.FgCyan, color.Faint)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	brand.Fprintln(w, "   |  T  O  D  O  C  O  M  B  |")
	frame.Fprintln(w, "   +--------------------------+")
	teeth.Fprintln(w, "   |  |  |  |  |  |  |  |  |  |")
	teeth.Fprintln(w, "   |  |  |  |  |  |  |  |  |  |")
	tag.Fprintf(w, "   %s Combing task markers out of your tree\n", Dim("🪮"))
	fmt.Fprintln(w)
}

// PriorityColor maps each tier to its visual emphasis: five tiers, five
// distinct emphases. Rendering only, record content is never touched.
func PriorityColor(p task.Priority) func(a ...interface{}) string {
	switch p {
	case task.PriorityCritical:
		return BoldRed
	case task.PriorityHigh:
		return Red
	case task.PriorityMedium:
		return Yellow
	case task.PriorityLow:
		return Cyan
	default:
		return Green
	}
}

// PriorityBadge returns the colored uppercase tier label.
func PriorityBadge(p task.Priority) string {
	return PriorityColor(p)(strings.ToUpper(string(p)))
}

// PriorityIcon returns a compact colored marker for one tier.
func PriorityIcon(p task.Priority) string {
	switch p {
	case task.PriorityCritical:
		return BoldRed("‼")
	case task.PriorityHigh:
		return Red("!")
	case task.PriorityMedium:
		return Yellow("●")
	case task.PriorityLow:
		return Cyan("○")
	default:
		return Green("·")
	}
}

// PathRef returns a dimmed file:line reference.
func PathRef(file string, line int) string {
	return Dim(fmt.Sprintf("%s:%d", file, line))
}
