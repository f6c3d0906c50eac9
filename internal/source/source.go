package source

import (
	"path/filepath"
	"sort"
	"strings"
)

// Unit is one file handed to the scanner: where it came from, its language
// category, and its full text. Units are immutable for the scan pass.
type Unit struct {
	Path     string
	Category string
	Content  string
}

// BlockPair is one block-comment delimiter pair, e.g. /* and */.
type BlockPair struct {
	Open  string
	Close string
}

// Profile describes how a language category introduces comments. Extraction
// is one generic algorithm parameterized by this descriptor, so adding a
// language means adding a table entry, not code.
type Profile struct {
	Category     string
	LinePrefixes []string
	Blocks       []BlockPair
}

// Registry maps language categories to comment profiles.
type Registry map[string]Profile

// DefaultRegistry returns the built-in comment profiles.
func DefaultRegistry() Registry {
	return Registry{
		"hash": {
			Category:     "hash",
			LinePrefixes: []string{"#"},
		},
		"cstyle": {
			Category:     "cstyle",
			LinePrefixes: []string{"//"},
			Blocks:       []BlockPair{{Open: "/*", Close: "*/"}},
		},
		"css": {
			Category: "css",
			Blocks:   []BlockPair{{Open: "/*", Close: "*/"}},
		},
		"markup": {
			Category: "markup",
			Blocks:   []BlockPair{{Open: "<!--", Close: "-->"}},
		},
		"sql": {
			Category:     "sql",
			LinePrefixes: []string{"--"},
			Blocks:       []BlockPair{{Open: "/*", Close: "*/"}},
		},
	}
}

// fallback is a permissive profile for unknown categories: every known
// introducer is honored so no file is silently skipped.
var fallback = Profile{
	Category:     "any",
	LinePrefixes: []string{"#", "//", "--"},
	Blocks:       []BlockPair{{Open: "/*", Close: "*/"}, {Open: "<!--", Close: "-->"}},
}

// Lookup returns the profile for a category, falling back to a permissive
// profile when the category is unknown.
func (r Registry) Lookup(category string) Profile {
	if p, ok := r[category]; ok {
		return p
	}
	return fallback
}

// Categories returns the registered category names, sorted.
func (r Registry) Categories() []string {
	out := make([]string, 0, len(r))
	for c := range r {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// extCategories maps file extensions to language categories.
var extCategories = map[string]string{
	".py":     "hash",
	".rb":     "hash",
	".sh":     "hash",
	".bash":   "hash",
	".yaml":   "hash",
	".yml":    "hash",
	".toml":   "hash",
	".go":     "cstyle",
	".js":     "cstyle",
	".jsx":    "cstyle",
	".ts":     "cstyle",
	".tsx":    "cstyle",
	".java":   "cstyle",
	".c":      "cstyle",
	".h":      "cstyle",
	".cpp":    "cstyle",
	".cc":     "cstyle",
	".cs":     "cstyle",
	".rs":     "cstyle",
	".swift":  "cstyle",
	".kt":     "cstyle",
	".css":    "css",
	".scss":   "css",
	".less":   "css",
	".html":   "markup",
	".htm":    "markup",
	".xml":    "markup",
	".md":     "markup",
	".vue":    "markup",
	".svelte": "markup",
	".sql":    "sql",
}

// Detect returns the language category for a path based on its extension.
// Unrecognized extensions return "any", which the registry resolves to the
// permissive fallback profile.
func Detect(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if cat, ok := extCategories[ext]; ok {
		return cat
	}
	return "any"
}

// Extensions returns the file extensions mapped to a category, sorted.
func Extensions(category string) []string {
	var out []string
	for ext, cat := range extCategories {
		if cat == category {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
