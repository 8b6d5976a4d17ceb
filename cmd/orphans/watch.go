package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/orphans/internal/output"
	"github.com/panbanda/orphans/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [project-dir]",
		Short: "Re-run the analysis when sources change",
		Long: `Watches the source root and the project's tsconfig/jsconfig files. After each
burst of changes the analysis runs again and the report is printed when it
differs from the last one printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, o, args, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")
	return cmd
}

func runWatch(cmd *cobra.Command, o *rootOptions, args []string, debounce time.Duration) error {
	p, err := o.loadProject(cmd, args)
	if err != nil {
		return err
	}
	format, err := o.formatFor(p.config)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var digest watch.Digest

	rerun := func() {
		out, err := o.renderReport(ctx, p, format)
		if err != nil {
			fmt.Fprintln(o.stderr, color.RedString("Analysis error: %v", err))
			return
		}
		if !digest.Changed(out) {
			fmt.Fprintln(o.stderr, color.GreenString("Report unchanged"))
			return
		}
		if _, err := o.stdout.Write(out); err != nil {
			fmt.Fprintln(o.stderr, color.RedString("Write error: %v", err))
		}
	}

	rerun()

	watcher, err := watch.NewWatcher(p.dir, p.config, debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.SetStatusWriter(o.stderr)

	watcher.SetCallback(func(paths []string) {
		rel := make([]string, 0, len(paths))
		for _, path := range paths {
			if r, err := filepath.Rel(p.dir, path); err == nil {
				path = filepath.ToSlash(r)
			}
			rel = append(rel, path)
		}
		fmt.Fprintln(o.stderr, color.YellowString("Changed: %s", strings.Join(rel, ", ")))
		rerun()
	})

	err = watcher.Start(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(o.stderr, "Stopped watching")
		return nil
	}
	return err
}

// renderReport runs the analysis and renders the report into memory.
func (o *rootOptions) renderReport(ctx context.Context, p *project, format output.Format) ([]byte, error) {
	result, _, err := o.analyze(ctx, p)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	formatter := output.NewWriterFormatter(format, &buf, p.config.Output.Color && !color.NoColor)
	formatter.SetStatusWriter(o.stderr)
	if err := formatter.Output(result.Report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
