package source

import "strings"

// Corpus indexes scanned units by path so enrichment can pull the source
// context around a marker without re-reading files.
type Corpus struct {
	lines map[string][]string
}

// NewCorpus builds a Corpus from scanned units.
func NewCorpus(units []Unit) *Corpus {
	c := &Corpus{lines: make(map[string][]string, len(units))}
	for _, u := range units {
		c.lines[u.Path] = strings.Split(u.Content, "\n")
	}
	return c
}

// Context returns up to before lines above and after lines below the given
// 1-based line, joined with newlines. Unknown paths and out-of-range lines
// return an empty string.
func (c *Corpus) Context(path string, line, before, after int) string {
	lines, ok := c.lines[path]
	if !ok || line < 1 || line > len(lines) {
		return ""
	}

	start := line - 1 - before
	if start < 0 {
		start = 0
	}
	end := line + after
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
