// Package walk collects candidate source files under a root directory.
package walk

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/joshharrison/todocomb/internal/source"
	"github.com/joshharrison/todocomb/internal/task"
)

// Options filters the files Collect returns.
type Options struct {
	Extensions []string          // kept extensions, leading dot optional
	Excludes   []string          // doublestar globs over slash paths relative to root
	Categories map[string]string // extension to category overrides, consulted before detection
}

// Collect walks root and returns a source unit for every file passing the
// extension and exclusion filters. Paths in the returned units are relative
// to root with forward slashes. Files that cannot be read become warnings,
// not errors; only a broken walk aborts.
func Collect(root string, opts Options) ([]source.Unit, []task.Warning, error) {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	var units []source.Unit
	var warnings []task.Warning

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		excluded, merr := matchAny(opts.Excludes, rel)
		if merr != nil {
			return merr
		}
		if d.IsDir() {
			if excluded {
				return fs.SkipDir
			}
			return nil
		}
		if excluded {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}

		content, rerr := os.ReadFile(path)
		if rerr != nil {
			warnings = append(warnings, task.Warning{
				Path:   rel,
				Stage:  task.StageScan,
				Reason: fmt.Sprintf("read: %v", rerr),
			})
			return nil
		}

		units = append(units, source.Unit{
			Path:     rel,
			Category: categoryFor(rel, opts.Categories),
			Content:  string(content),
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return units, warnings, nil
}

// categoryFor applies extension overrides before built-in detection.
func categoryFor(rel string, overrides map[string]string) string {
	if cat, ok := overrides[strings.ToLower(filepath.Ext(rel))]; ok {
		return cat
	}
	return source.Detect(rel)
}

func matchAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
