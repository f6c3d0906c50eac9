package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshharrison/todocomb/internal/task"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todocomb.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
keywords: [TODO, NOTE]
enrichment:
  provider: anthropic
  model: claude-sonnet-4-6
plan:
  hours_per_day: 6
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Keywords) != 2 || cfg.Keywords[1] != "NOTE" {
		t.Errorf("Keywords = %v", cfg.Keywords)
	}
	if cfg.Enrichment.Provider != "anthropic" || cfg.Enrichment.Model != "claude-sonnet-4-6" {
		t.Errorf("Enrichment = %+v", cfg.Enrichment)
	}
	if cfg.Plan.HoursPerDay != 6 {
		t.Errorf("HoursPerDay = %v, want 6", cfg.Plan.HoursPerDay)
	}
	// Untouched sections keep their defaults.
	if cfg.Enrichment.MaxParallel != 4 {
		t.Errorf("MaxParallel = %d, want default 4", cfg.Enrichment.MaxParallel)
	}
	if len(cfg.Excludes) == 0 {
		t.Error("Excludes should keep defaults")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOrDefault_NoFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Enrichment.Provider != "auto" {
		t.Errorf("Provider = %q, want auto default", cfg.Enrichment.Provider)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TODOCOMB_PROVIDER", "openai")
	t.Setenv("TODOCOMB_MODEL", "gpt-4o")
	t.Setenv("TODOCOMB_API_BASE", "http://localhost:11434")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Enrichment.Provider != "openai" {
		t.Errorf("Provider = %q", cfg.Enrichment.Provider)
	}
	if cfg.Enrichment.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.Enrichment.Model)
	}
	if cfg.Enrichment.APIBase != "http://localhost:11434" {
		t.Errorf("APIBase = %q", cfg.Enrichment.APIBase)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no keywords", func(c *Config) { c.Keywords = nil }, "keywords"},
		{"empty keyword", func(c *Config) { c.Keywords = []string{"TODO", ""} }, "keywords"},
		{"unknown provider", func(c *Config) { c.Enrichment.Provider = "psychic" }, "enrichment.provider"},
		{"zero parallel", func(c *Config) { c.Enrichment.MaxParallel = 0 }, "enrichment.max_parallel"},
		{"zero timeout", func(c *Config) { c.Enrichment.TimeoutSecs = 0 }, "enrichment.timeout_seconds"},
		{"negative retries", func(c *Config) { c.Enrichment.Retries = -1 }, "enrichment.retries"},
		{"zero day", func(c *Config) { c.Plan.HoursPerDay = 0 }, "plan.hours_per_day"},
		{
			"bad block pair",
			func(c *Config) {
				c.Profiles = map[string]ProfileConfig{"cstyle": {Blocks: [][]string{{"/*"}}}}
			},
			"profiles.cstyle.blocks[0]",
		},
		{
			"empty new category",
			func(c *Config) {
				c.Profiles = map[string]ProfileConfig{"zig": {Extensions: []string{".zig"}}}
			},
			"profiles.zig",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() = %v, want ConfigurationError", err)
			}
			if cerr.Field != tc.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tc.field)
			}
		})
	}
}

func TestRules_Overrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classify.Locale = "tr"
	cfg.Classify.Triggers = map[string][]string{"critical": {"yangın"}}
	cfg.Classify.Thresholds = map[string]int{"critical": 5, "high": 4, "medium": 3, "low": 2}

	rules, err := cfg.Rules()
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}

	if rules.Locale != "tr" {
		t.Errorf("Locale = %q", rules.Locale)
	}
	if len(rules.Triggers[task.PriorityCritical]) != 1 || rules.Triggers[task.PriorityCritical][0] != "yangın" {
		t.Errorf("critical triggers = %v", rules.Triggers[task.PriorityCritical])
	}
	// Tiers without overrides keep their default lists.
	if len(rules.Triggers[task.PriorityHigh]) == 0 {
		t.Error("high triggers should keep defaults")
	}
	if rules.Thresholds.Critical != 5 || rules.Thresholds.Low != 2 {
		t.Errorf("thresholds = %+v", rules.Thresholds)
	}
}

func TestRules_RejectsBadTiersAndOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classify.Triggers = map[string][]string{"normal": {"x"}}
	if _, err := cfg.Rules(); err == nil {
		t.Error("normal tier should not accept triggers")
	}

	cfg = DefaultConfig()
	cfg.Classify.Thresholds = map[string]int{"critical": 2, "high": 3}
	if _, err := cfg.Rules(); err == nil {
		t.Error("inverted thresholds should be rejected")
	}
}

func TestRegistry_Overrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = map[string]ProfileConfig{
		"hash": {LinePrefixes: []string{"#", "%"}},
		"zig":  {LinePrefixes: []string{"//"}, Extensions: []string{".zig", "jai"}},
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}

	if got := reg.Lookup("hash").LinePrefixes; len(got) != 2 || got[1] != "%" {
		t.Errorf("hash prefixes = %v", got)
	}
	if got := reg.Lookup("zig").LinePrefixes; len(got) != 1 || got[0] != "//" {
		t.Errorf("zig prefixes = %v", got)
	}
	// Untouched categories keep their built-in profiles.
	if got := reg.Lookup("cstyle").Blocks; len(got) != 1 || got[0].Open != "/*" {
		t.Errorf("cstyle blocks = %v", got)
	}

	cats := cfg.ExtensionCategories()
	if cats[".zig"] != "zig" {
		t.Errorf("ExtensionCategories[.zig] = %q", cats[".zig"])
	}
	if cats[".jai"] != "zig" {
		t.Errorf("dotless extension not normalized: %v", cats)
	}
}

func TestResolveProvider(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := DefaultConfig()
	if got, err := cfg.ResolveProvider(); err != nil || got != "offline" {
		t.Errorf("auto without keys = %q, %v; want offline", got, err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	if got, err := cfg.ResolveProvider(); err != nil || got != "anthropic" {
		t.Errorf("auto with anthropic key = %q, %v", got, err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if got, err := cfg.ResolveProvider(); err != nil || got != "openai" {
		t.Errorf("auto with openai key = %q, %v", got, err)
	}

	t.Setenv("OPENAI_API_KEY", "")
	cfg.Enrichment.Provider = "anthropic"
	_, err := cfg.ResolveProvider()
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) || cerr.Field != "enrichment.provider" {
		t.Errorf("explicit anthropic without key = %v, want ConfigurationError", err)
	}

	cfg.Enrichment.Provider = "offline"
	if got, err := cfg.ResolveProvider(); err != nil || got != "offline" {
		t.Errorf("offline = %q, %v", got, err)
	}
}
