package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/todocomb/internal/config"
	"github.com/joshharrison/todocomb/internal/task"
)

// A file that cannot be read is skipped, warned about, and logged; the rest
// of the tree still scans.
func TestScanTree_SurfacesUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "ok.py"), []byte("# TODO: still scanned\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A dangling symlink passes collection but fails the read.
	if err := os.Symlink(filepath.Join(root, "absent"), filepath.Join(root, "gone.py")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	cfg := config.DefaultConfig()
	cfg.Extensions = []string{".py"}

	records, warnings, _, err := scanTree(context.Background(), cfg, logger, root)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}

	if len(records) != 1 || records[0].File != "ok.py" {
		t.Fatalf("records = %+v, want only the readable file", records)
	}

	found := false
	for _, w := range warnings {
		if w.Path == "gone.py" && w.Stage == task.StageScan {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %+v, want a scan warning for gone.py", warnings)
	}

	if out := buf.String(); !strings.Contains(out, "gone.py") {
		t.Errorf("log output should name the skipped file, got %q", out)
	}
}
