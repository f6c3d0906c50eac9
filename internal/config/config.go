// Package config defines the todocomb configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/todocomb/internal/classify"
	"github.com/joshharrison/todocomb/internal/source"
	"github.com/joshharrison/todocomb/internal/task"
)

// Config is the top-level todocomb configuration.
type Config struct {
	Keywords   []string `json:"keywords" yaml:"keywords"`
	Extensions []string `json:"extensions" yaml:"extensions"`
	Excludes   []string `json:"excludes" yaml:"excludes"`

	Profiles   map[string]ProfileConfig `json:"profiles,omitempty" yaml:"profiles"`
	Classify   ClassifyConfig           `json:"classify" yaml:"classify"`
	Enrichment EnrichmentConfig         `json:"enrichment" yaml:"enrichment"`
	Plan       PlanConfig               `json:"plan" yaml:"plan"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// ProfileConfig overrides or adds a comment profile for a language
// category. Fields left empty keep the built-in profile's values. Blocks
// are [open, close] pairs. Extensions listed here are remapped to this
// category during file collection.
type ProfileConfig struct {
	LinePrefixes []string   `json:"line_prefixes,omitempty" yaml:"line_prefixes"`
	Blocks       [][]string `json:"blocks,omitempty" yaml:"blocks"`
	Extensions   []string   `json:"extensions,omitempty" yaml:"extensions"`
}

// ClassifyConfig overrides trigger words and punctuation thresholds. Tier
// names are critical, high, medium, and low; normal is the absence of a
// signal and takes no overrides.
type ClassifyConfig struct {
	Locale     string              `json:"locale,omitempty" yaml:"locale"`
	Triggers   map[string][]string `json:"triggers,omitempty" yaml:"triggers"`
	Thresholds map[string]int      `json:"thresholds,omitempty" yaml:"thresholds"`
}

// EnrichmentConfig selects and tunes the estimation provider.
type EnrichmentConfig struct {
	Provider     string `json:"provider" yaml:"provider"` // "auto", "offline", "anthropic", "openai"
	Model        string `json:"model,omitempty" yaml:"model"`
	APIBase      string `json:"api_base,omitempty" yaml:"api_base"` // OpenAI-compatible endpoints only
	MaxParallel  int    `json:"max_parallel" yaml:"max_parallel"`
	TimeoutSecs  int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	Retries      int    `json:"retries" yaml:"retries"`
	ContextLines int    `json:"context_lines" yaml:"context_lines"`
	TemplatePath string `json:"template,omitempty" yaml:"template"`
}

// PlanConfig controls work-plan packing.
type PlanConfig struct {
	HoursPerDay float64 `json:"hours_per_day" yaml:"hours_per_day"`
}

// ConfigurationError reports an invalid configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Keywords:   []string{"TODO", "FIXME", "HACK", "XXX"},
		Extensions: []string{".py", ".js", ".ts", ".go", ".html", ".css", ".md"},
		Excludes:   []string{"node_modules/**", ".git/**", "vendor/**", "__pycache__/**"},
		Enrichment: EnrichmentConfig{
			Provider:     "auto",
			MaxParallel:  4,
			TimeoutSecs:  30,
			Retries:      0,
			ContextLines: 30,
		},
		Plan:     PlanConfig{HoursPerDay: 8},
		LogLevel: "info",
	}
}

// DefaultPaths are tried in order when no config path is given.
var DefaultPaths = []string{"todocomb.yaml", ".todocomb.yaml"}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when set, otherwise tries DefaultPaths and falls
// back to the built-in defaults when none exists.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return DefaultConfig(), nil
}

// ApplyEnv overlays provider settings from the environment. Flags still win
// over both file and environment. API keys are read by the providers
// themselves from ANTHROPIC_API_KEY and OPENAI_API_KEY.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TODOCOMB_PROVIDER"); v != "" {
		c.Enrichment.Provider = v
	}
	if v := os.Getenv("TODOCOMB_MODEL"); v != "" {
		c.Enrichment.Model = v
	}
	if v := os.Getenv("TODOCOMB_API_BASE"); v != "" {
		c.Enrichment.APIBase = v
	}
}

// Validate checks every field a run depends on and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Keywords) == 0 {
		return &ConfigurationError{Field: "keywords", Reason: "at least one marker keyword is required"}
	}
	for _, k := range c.Keywords {
		if k == "" {
			return &ConfigurationError{Field: "keywords", Reason: "keywords must not be empty"}
		}
	}

	switch c.Enrichment.Provider {
	case "auto", "offline", "anthropic", "openai":
	default:
		return &ConfigurationError{Field: "enrichment.provider", Reason: fmt.Sprintf("unknown provider %q", c.Enrichment.Provider)}
	}
	if c.Enrichment.MaxParallel < 1 {
		return &ConfigurationError{Field: "enrichment.max_parallel", Reason: "must be at least 1"}
	}
	if c.Enrichment.TimeoutSecs < 1 {
		return &ConfigurationError{Field: "enrichment.timeout_seconds", Reason: "must be at least 1"}
	}
	if c.Enrichment.Retries < 0 {
		return &ConfigurationError{Field: "enrichment.retries", Reason: "must not be negative"}
	}
	if c.Enrichment.ContextLines < 0 {
		return &ConfigurationError{Field: "enrichment.context_lines", Reason: "must not be negative"}
	}
	if c.Plan.HoursPerDay <= 0 {
		return &ConfigurationError{Field: "plan.hours_per_day", Reason: "must be positive"}
	}

	if _, err := c.Registry(); err != nil {
		return err
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	return nil
}

// ResolveProvider resolves the configured provider name to a concrete one.
// "auto" picks the first networked provider whose API key is present and
// falls back to offline. An explicit networked provider without its key is
// a ConfigurationError so the run aborts before any scanning.
func (c *Config) ResolveProvider() (string, error) {
	switch c.Enrichment.Provider {
	case "auto":
		if os.Getenv("ANTHROPIC_API_KEY") != "" {
			return "anthropic", nil
		}
		if os.Getenv("OPENAI_API_KEY") != "" {
			return "openai", nil
		}
		return "offline", nil
	case "anthropic":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return "", &ConfigurationError{Field: "enrichment.provider", Reason: "anthropic requires ANTHROPIC_API_KEY"}
		}
		return "anthropic", nil
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return "", &ConfigurationError{Field: "enrichment.provider", Reason: "openai requires OPENAI_API_KEY"}
		}
		return "openai", nil
	default:
		return c.Enrichment.Provider, nil
	}
}

// Registry builds the comment-profile registry with config overrides
// applied. Overrides replace only the fields they set on built-in
// categories; a new category must declare at least one introducer.
func (c *Config) Registry() (source.Registry, error) {
	reg := source.DefaultRegistry()
	for cat, pc := range c.Profiles {
		p, known := reg[cat]
		if !known {
			p = source.Profile{Category: cat}
		}

		if len(pc.LinePrefixes) > 0 {
			p.LinePrefixes = pc.LinePrefixes
		}
		if len(pc.Blocks) > 0 {
			pairs := make([]source.BlockPair, 0, len(pc.Blocks))
			for i, b := range pc.Blocks {
				if len(b) != 2 || b[0] == "" || b[1] == "" {
					return nil, &ConfigurationError{
						Field:  fmt.Sprintf("profiles.%s.blocks[%d]", cat, i),
						Reason: "must be an [open, close] pair",
					}
				}
				pairs = append(pairs, source.BlockPair{Open: b[0], Close: b[1]})
			}
			p.Blocks = pairs
		}

		if !known && len(p.LinePrefixes) == 0 && len(p.Blocks) == 0 {
			return nil, &ConfigurationError{
				Field:  "profiles." + cat,
				Reason: "new category needs line_prefixes or blocks",
			}
		}
		reg[cat] = p
	}
	return reg, nil
}

// ExtensionCategories returns the extension remappings declared by profile
// overrides, keyed by lowered extension with a leading dot.
func (c *Config) ExtensionCategories() map[string]string {
	out := make(map[string]string)
	for cat, pc := range c.Profiles {
		for _, ext := range pc.Extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out[ext] = cat
		}
	}
	return out
}

// Rules converts the classify overrides into classifier rules, starting
// from the defaults. Overridden trigger lists replace the default list for
// that tier.
func (c *Config) Rules() (classify.Rules, error) {
	rules := classify.DefaultRules()
	rules.Locale = c.Classify.Locale

	for name, words := range c.Classify.Triggers {
		tier, err := task.ParsePriority(name)
		if err != nil || tier == task.PriorityNormal {
			return classify.Rules{}, &ConfigurationError{
				Field:  "classify.triggers." + name,
				Reason: "tier must be critical, high, medium, or low",
			}
		}
		rules.Triggers[tier] = words
	}

	for name, n := range c.Classify.Thresholds {
		if n < 1 {
			return classify.Rules{}, &ConfigurationError{
				Field:  "classify.thresholds." + name,
				Reason: "must be at least 1",
			}
		}
		switch name {
		case "critical":
			rules.Thresholds.Critical = n
		case "high":
			rules.Thresholds.High = n
		case "medium":
			rules.Thresholds.Medium = n
		case "low":
			rules.Thresholds.Low = n
		default:
			return classify.Rules{}, &ConfigurationError{
				Field:  "classify.thresholds." + name,
				Reason: "tier must be critical, high, medium, or low",
			}
		}
	}

	t := rules.Thresholds
	if t.Critical <= t.High || t.High <= t.Medium || t.Medium <= t.Low {
		return classify.Rules{}, &ConfigurationError{
			Field:  "classify.thresholds",
			Reason: "must strictly decrease from critical to low",
		}
	}
	return rules, nil
}
