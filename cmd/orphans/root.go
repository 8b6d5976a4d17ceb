package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile  string
	format      string
	output      string
	verbose     bool
	pprofPrefix string
	flags       analyzeFlags

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	pprofCPUFile *os.File
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "orphans [project-dir]",
		Short: "Find source files no entry point imports",
		Long: `Orphans builds the import graph of a JS/TS web project, starting from the
files the framework loads directly (pages, layouts, routes, middleware and global
stylesheets), and reports every source file nothing reaches.

Path aliases from tsconfig.json/jsconfig.json are honored. Output is JSON by default.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.setupLogger()
			return opts.startProfile()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.stopProfile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", os.Getenv("ORPHANS_CONFIG"), "Path to config file (TOML, YAML, or JSON)")
	flags.StringVarP(&opts.format, "format", "f", os.Getenv("ORPHANS_FORMAT"), "Output format: json, text, markdown, toon")
	flags.StringVarP(&opts.output, "output", "o", "", "Write output to file")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flags.StringVar(&opts.pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")

	opts.flags.register(cmd)

	cmd.AddCommand(
		newGraphCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(opts),
		newInitCmd(opts),
		newMCPCmd(opts),
		newCacheCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setupLogger() {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)
}

func (o *rootOptions) startProfile() error {
	if o.pprofPrefix == "" {
		return nil
	}
	f, err := os.Create(o.pprofPrefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	o.pprofCPUFile = f
	return nil
}

func (o *rootOptions) stopProfile() error {
	if o.pprofPrefix == "" {
		return nil
	}

	pprof.StopCPUProfile()
	if o.pprofCPUFile != nil {
		o.pprofCPUFile.Close()
		fmt.Fprintln(o.stderr, color.GreenString("CPU profile written to %s.cpu.pprof", o.pprofPrefix))
	}

	memFile, err := os.Create(o.pprofPrefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	fmt.Fprintln(o.stderr, color.GreenString("Memory profile written to %s.mem.pprof", o.pprofPrefix))
	return nil
}
