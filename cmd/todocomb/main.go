package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/joshharrison/todocomb/internal/classify"
	"github.com/joshharrison/todocomb/internal/config"
	"github.com/joshharrison/todocomb/internal/enrich"
	"github.com/joshharrison/todocomb/internal/logging"
	"github.com/joshharrison/todocomb/internal/plan"
	"github.com/joshharrison/todocomb/internal/report"
	"github.com/joshharrison/todocomb/internal/scan"
	"github.com/joshharrison/todocomb/internal/source"
	"github.com/joshharrison/todocomb/internal/task"
	"github.com/joshharrison/todocomb/internal/ui"
	"github.com/joshharrison/todocomb/internal/walk"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagJSON     bool
	flagNoColor  bool
	flagLogLevel string

	flagKeywords   []string
	flagExtensions []string
	flagExcludes   []string
	flagPriorities []string
	flagAssignee   string
	flagMarkdown   string
	flagOut        string
	flagJobs       int

	flagEnrich       bool
	flagProvider     string
	flagModel        string
	flagAPIBase      string
	flagTemplate     string
	flagOffline      bool
	flagContextLines int
	flagMaxParallel  int
	flagTimeout      int
	flagRetries      int

	flagHoursPerDay float64
	flagFromReport  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "todocomb",
		Short: "Comb task markers out of a source tree, triage them, and plan the work",
		Long: `Todocomb walks a source tree, pulls TODO-style task markers out of
comments, classifies how urgent each one is, and renders the result as
reports and work plans. Effort estimates come from an offline heuristic
or an LLM provider.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				color.NoColor = true
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default todocomb.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON on stdout")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(profilesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagKeywords, "keyword", nil, "Marker keywords to match (repeatable, overrides config)")
	cmd.Flags().StringSliceVar(&flagExtensions, "ext", nil, "File extensions to scan (repeatable, overrides config)")
	cmd.Flags().StringSliceVar(&flagExcludes, "exclude", nil, "Exclusion globs (repeatable, overrides config)")
	cmd.Flags().StringSliceVar(&flagPriorities, "priority", nil, "Keep only these tiers (repeatable)")
	cmd.Flags().StringVar(&flagAssignee, "assignee", "", "Keep only markers assigned to this name")
	cmd.Flags().StringVar(&flagMarkdown, "markdown", "", "Write a markdown report to this file")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write a JSON report to this file")
	cmd.Flags().IntVar(&flagJobs, "jobs", 0, "Scan workers (default one per CPU, max 8)")
}

func addEnrichFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "Estimation provider (anthropic, openai, offline, auto)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Provider model name")
	cmd.Flags().StringVar(&flagAPIBase, "api-base", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&flagTemplate, "prompt-template", "", "Custom estimation prompt template path")
	cmd.Flags().BoolVar(&flagOffline, "offline", false, "Force the offline estimation provider")
	cmd.Flags().IntVar(&flagContextLines, "context-lines", -1, "Source lines sent around each marker")
	cmd.Flags().IntVar(&flagMaxParallel, "max-parallel", 0, "Concurrent provider calls")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per-call timeout in seconds")
	cmd.Flags().IntVar(&flagRetries, "retries", -1, "Extra attempts after a failed call")
}

// setup loads the config, applies env and flag overrides, and builds the
// logger. Shared by scan and plan.
func setup() (*config.Config, *log.Logger, error) {
	cfg, err := config.LoadOrDefault(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv()

	if len(flagKeywords) > 0 {
		cfg.Keywords = flagKeywords
	}
	if len(flagExtensions) > 0 {
		cfg.Extensions = flagExtensions
	}
	if len(flagExcludes) > 0 {
		cfg.Excludes = flagExcludes
	}
	if flagProvider != "" {
		cfg.Enrichment.Provider = flagProvider
	}
	if flagOffline {
		cfg.Enrichment.Provider = "offline"
	}
	if flagModel != "" {
		cfg.Enrichment.Model = flagModel
	}
	if flagAPIBase != "" {
		cfg.Enrichment.APIBase = flagAPIBase
	}
	if flagTemplate != "" {
		cfg.Enrichment.TemplatePath = flagTemplate
	}
	if flagContextLines >= 0 {
		cfg.Enrichment.ContextLines = flagContextLines
	}
	if flagMaxParallel > 0 {
		cfg.Enrichment.MaxParallel = flagMaxParallel
	}
	if flagTimeout > 0 {
		cfg.Enrichment.TimeoutSecs = flagTimeout
	}
	if flagRetries >= 0 {
		cfg.Enrichment.Retries = flagRetries
	}
	if flagHoursPerDay > 0 {
		cfg.Plan.HoursPerDay = flagHoursPerDay
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.LogLevel), nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, stopping..."))
		cancel()
	}()

	return ctx, cancel
}

// scanTree walks root and runs the scan pipeline over everything collected.
// Files that cannot be read are logged and carried as warnings.
func scanTree(ctx context.Context, cfg *config.Config, logger *log.Logger, root string) ([]*task.Record, []task.Warning, []source.Unit, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, nil, nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, nil, nil, err
	}

	units, warnings, err := walk.Collect(root, walk.Options{
		Extensions: cfg.Extensions,
		Excludes:   cfg.Excludes,
		Categories: cfg.ExtensionCategories(),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	for _, w := range warnings {
		logger.Warn("skipping file", "path", w.Path, "reason", w.Reason)
	}
	logger.Debug("collected files", "root", root, "count", len(units))

	scanner := scan.New(scan.Config{
		Keywords: cfg.Keywords,
		Registry: registry,
		Workers:  flagJobs,
	}, classify.New(rules), logger)
	set, scanWarnings := scanner.Scan(ctx, units)
	warnings = append(warnings, scanWarnings...)

	return set.Records(), warnings, units, nil
}

// buildProvider resolves and constructs the estimation provider. Credential
// problems surface here, before any scanning.
func buildProvider(cfg *config.Config) (enrich.Provider, error) {
	name, err := cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}

	e := cfg.Enrichment
	switch name {
	case "offline":
		return enrich.NewOfflineProvider(), nil
	case "anthropic":
		return enrich.NewAnthropicProvider("", e.Model, e.TemplatePath)
	case "openai":
		return enrich.NewOpenAIProvider(enrich.OpenAIConfig{
			Model:        e.Model,
			BaseURL:      e.APIBase,
			TemplatePath: e.TemplatePath,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// enrichMissing estimates every record that has no enrichment yet.
func enrichMissing(ctx context.Context, cfg *config.Config, logger *log.Logger, provider enrich.Provider, records []*task.Record, corpus *source.Corpus) []task.Warning {
	var missing []*task.Record
	for _, r := range records {
		if r.Enrichment == nil {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	logger.Info("estimating tasks", "provider", provider.Name(), "count", len(missing))

	runner := enrich.NewRunner(provider, enrich.RunnerConfig{
		MaxParallel:  cfg.Enrichment.MaxParallel,
		Timeout:      time.Duration(cfg.Enrichment.TimeoutSecs) * time.Second,
		Retries:      cfg.Enrichment.Retries,
		ContextLines: cfg.Enrichment.ContextLines,
	}, logger)
	return runner.Run(ctx, missing, corpus)
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Extract and classify task markers under a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			var provider enrich.Provider
			if flagEnrich {
				if provider, err = buildProvider(cfg); err != nil {
					return err
				}
			}

			ctx, cancel := signalContext()
			defer cancel()

			records, warnings, units, err := scanTree(ctx, cfg, logger, root)
			if err != nil {
				return err
			}

			opts, err := filterOptions()
			if err != nil {
				return err
			}
			records = report.Filter(records, opts)

			if provider != nil {
				warnings = append(warnings, enrichMissing(ctx, cfg, logger, provider, records, source.NewCorpus(units))...)
			}

			return emitReport(report.Build(records, warnings))
		},
	}

	addScanFlags(cmd)
	addEnrichFlags(cmd)
	cmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Estimate effort for each marker")

	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Build a work schedule from estimated markers",
		Long: `Plan scans a tree (or loads a previously saved report), estimates any
marker that has no estimate yet, and packs the result into working days:
most severe tier first, shortest task first within a tier.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			provider, err := buildProvider(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			var (
				records []*task.Record
				corpus  *source.Corpus
			)
			if flagFromReport != "" {
				m, err := loadReportFile(flagFromReport)
				if err != nil {
					return err
				}
				for _, g := range m.Groups {
					records = append(records, g.Tasks...)
				}
			} else {
				var units []source.Unit
				records, _, units, err = scanTree(ctx, cfg, logger, root)
				if err != nil {
					return err
				}
				corpus = source.NewCorpus(units)
			}

			opts, err := filterOptions()
			if err != nil {
				return err
			}
			records = report.Filter(records, opts)

			// Estimation failures surface as unscheduled plan entries.
			enrichMissing(ctx, cfg, logger, provider, records, corpus)

			p := plan.Build(records, plan.Config{HoursPerDay: cfg.Plan.HoursPerDay})

			if !flagJSON {
				ui.PrintLogo()
			}
			return emitPlan(p)
		},
	}

	addScanFlags(cmd)
	addEnrichFlags(cmd)
	cmd.Flags().StringVar(&flagFromReport, "from-report", "", "Plan from a saved JSON report instead of scanning")
	cmd.Flags().Float64Var(&flagHoursPerDay, "hours-per-day", 0, "Working hours per day (default 8)")

	return cmd
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List comment profiles and the extensions mapped to them",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := source.DefaultRegistry()

			if flagJSON {
				type blockJSON struct {
					Open  string `json:"open"`
					Close string `json:"close"`
				}
				type profileJSON struct {
					LinePrefixes []string    `json:"line_prefixes,omitempty"`
					Blocks       []blockJSON `json:"blocks,omitempty"`
					Extensions   []string    `json:"extensions"`
				}

				out := make(map[string]profileJSON)
				for _, cat := range reg.Categories() {
					p := reg.Lookup(cat)
					pj := profileJSON{LinePrefixes: p.LinePrefixes, Extensions: source.Extensions(cat)}
					for _, b := range p.Blocks {
						pj.Blocks = append(pj.Blocks, blockJSON{Open: b.Open, Close: b.Close})
					}
					out[cat] = pj
				}
				return outputJSON(out)
			}

			fmt.Printf("🪮 %s\n\n", ui.BoldCyan("Comment Profiles"))
			for _, cat := range reg.Categories() {
				p := reg.Lookup(cat)

				var intro []string
				intro = append(intro, p.LinePrefixes...)
				for _, b := range p.Blocks {
					intro = append(intro, b.Open+" "+b.Close)
				}

				fmt.Printf("  %s %s\n", ui.BoldWhite(fmt.Sprintf("%-8s", cat)), ui.Dim(strings.Join(intro, "  ")))
				if exts := source.Extensions(cat); len(exts) > 0 {
					fmt.Printf("           %s\n", strings.Join(exts, " "))
				}
			}
			return nil
		},
	}
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func filterOptions() (report.FilterOptions, error) {
	opts := report.FilterOptions{Assignee: flagAssignee}
	for _, name := range flagPriorities {
		p, err := task.ParsePriority(name)
		if err != nil {
			return report.FilterOptions{}, fmt.Errorf("--priority: %w", err)
		}
		opts.Priorities = append(opts.Priorities, p)
	}
	return opts, nil
}

// emitReport prints the report to stdout and writes any requested artifact
// files. Artifact files never contain color codes.
func emitReport(m *report.Model) error {
	if flagJSON {
		var buf bytes.Buffer
		if err := report.WriteJSON(&buf, m); err != nil {
			return err
		}
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return err
		}
	} else {
		report.WriteTerminal(os.Stdout, m)
	}

	if flagMarkdown != "" {
		var buf bytes.Buffer
		report.WriteMarkdown(&buf, m)
		if err := os.WriteFile(flagMarkdown, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	if flagOut != "" {
		var buf bytes.Buffer
		if err := report.WriteJSON(&buf, m); err != nil {
			return err
		}
		if err := os.WriteFile(flagOut, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

func emitPlan(p *plan.Plan) error {
	if flagJSON {
		var buf bytes.Buffer
		if err := plan.WriteJSON(&buf, p); err != nil {
			return err
		}
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return err
		}
	} else {
		plan.WriteTerminal(os.Stdout, p)
	}

	if flagMarkdown != "" {
		var buf bytes.Buffer
		plan.WriteMarkdown(&buf, p)
		if err := os.WriteFile(flagMarkdown, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	if flagOut != "" {
		var buf bytes.Buffer
		if err := plan.WriteJSON(&buf, p); err != nil {
			return err
		}
		if err := os.WriteFile(flagOut, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

// loadReportFile reads a machine-readable report saved by scan --out.
func loadReportFile(path string) (*report.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	m, err := report.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", path, err)
	}
	return m, nil
}
