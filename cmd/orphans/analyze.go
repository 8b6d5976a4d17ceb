package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/panbanda/orphans/internal/cache"
	"github.com/panbanda/orphans/internal/metrics"
	"github.com/panbanda/orphans/internal/output"
	"github.com/panbanda/orphans/pkg/analyzer"
	"github.com/panbanda/orphans/pkg/analyzer/orphans"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/spf13/cobra"
)

// analyzeFlags override config values for one run.
type analyzeFlags struct {
	failOnUnused bool
	strict       bool
	scanner      string
	workers      int
	noCache      bool
	metricsFile  string
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&f.failOnUnused, "fail-on-unused", false, "Exit with status 2 when unused files are found")
	flags.BoolVar(&f.strict, "strict", false, "Fail on unreadable files, malformed tsconfig and probe errors")
	flags.StringVar(&f.scanner, "scanner", config.ScannerRegex, "Import scanner: regex, treesitter")
	flags.IntVar(&f.workers, "workers", 0, "Parallel extraction workers (0 = 2x CPUs)")
	flags.BoolVar(&f.noCache, "no-cache", false, "Disable the extraction cache")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
}

// apply overlays the flags the user set onto cfg and validates the result.
func (f *analyzeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("fail-on-unused") {
		cfg.Report.FailOnUnused = f.failOnUnused
	}
	if flags.Changed("strict") {
		cfg.Mode.Strict = f.strict
	}
	if flags.Changed("scanner") {
		cfg.Scanner.Kind = f.scanner
	}
	if flags.Changed("workers") {
		cfg.Scanner.Workers = f.workers
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg.Validate()
}

// project is a project directory with its effective configuration.
type project struct {
	dir    string
	config *config.Config
	// source is the config file used, empty for defaults.
	source string
}

func (o *rootOptions) loadProject(cmd *cobra.Command, args []string) (*project, error) {
	dir, err := filepath.Abs(getProjectDir(args))
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	loadOpts := []config.LoadOption{config.WithDir(dir)}
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithPath(o.configFile))
	}
	loaded, err := config.LoadConfig(loadOpts...)
	if err != nil {
		return nil, err
	}
	if err := o.flags.apply(cmd, loaded.Config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o.logger.Debug("configuration loaded", "dir", dir, "source", loaded.Source)
	return &project{dir: dir, config: loaded.Config, source: loaded.Source}, nil
}

// analyze runs the analysis once, drawing progress when stderr is a terminal.
func (o *rootOptions) analyze(ctx context.Context, p *project) (*orphans.Result, time.Duration, error) {
	start := time.Now()

	opts := []orphans.Option{
		orphans.WithConfig(p.config),
		orphans.WithLogger(o.logger),
	}
	if p.config.Cache.Enabled {
		c, err := cache.New(osfs.New(p.dir), p.config.Cache.Dir, p.config.Cache.TTL, true)
		if err != nil {
			o.logger.Warn("extraction cache disabled", "dir", p.config.Cache.Dir, "error", err)
		} else {
			opts = append(opts, orphans.WithCache(c))
		}
	}

	a, err := orphans.Open(p.dir, opts...)
	if err != nil {
		return nil, 0, err
	}
	defer a.Close()

	bar := newProgressBar(o.stderr)
	if bar != nil {
		ctx = analyzer.WithTracker(ctx, analyzer.NewTracker(bar.tick))
	}

	result, err := a.Run(ctx)
	bar.finish(err)
	return result, time.Since(start), err
}

// formatFor picks the output format: flag or environment first, then config.
func (o *rootOptions) formatFor(cfg *config.Config) (output.Format, error) {
	if o.format != "" {
		return output.ParseFormat(o.format)
	}
	return output.ParseFormat(cfg.Output.Format)
}

func (o *rootOptions) newFormatter(format output.Format, cfg *config.Config) (*output.Formatter, error) {
	colored := cfg.Output.Color && !color.NoColor
	if o.output == "" {
		f := output.NewWriterFormatter(format, o.stdout, colored)
		f.SetStatusWriter(o.stderr)
		return f, nil
	}

	f, err := output.NewFormatter(format, o.output, false)
	if err != nil {
		return nil, err
	}
	f.SetStatusWriter(o.stderr)
	return f, nil
}

func runAnalyze(cmd *cobra.Command, o *rootOptions, args []string) error {
	p, err := o.loadProject(cmd, args)
	if err != nil {
		return err
	}
	format, err := o.formatFor(p.config)
	if err != nil {
		return err
	}

	result, elapsed, err := o.analyze(cmd.Context(), p)
	if err != nil {
		return err
	}

	if o.flags.metricsFile != "" {
		if err := writeMetrics(o.flags.metricsFile, result, elapsed); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	formatter, err := o.newFormatter(format, p.config)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(result.Report); err != nil {
		return err
	}
	if o.output != "" {
		formatter.Success("Report written to %s", o.output)
	}

	if p.config.Report.FailOnUnused && result.Report.HasUnused() {
		return &ExitError{Code: 2, Message: fmt.Sprintf("%d unused files found", result.Report.UnusedCount)}
	}
	return nil
}

func writeMetrics(path string, result *orphans.Result, elapsed time.Duration) error {
	r := metrics.NewRecorder()
	r.Observe(metrics.Summary{
		Candidates: result.Report.CandidateCount,
		Reachable:  result.Report.UsedCount,
		Unused:     result.Report.UnusedCount,
		Edges:      result.Graph.EdgeCount(),
		Roots:      len(result.Roots),
		Duration:   elapsed,
	})
	return r.WriteFile(path)
}
