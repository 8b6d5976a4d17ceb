package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/panbanda/orphans/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the extraction cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear [project-dir]",
			Short: "Remove all cached extraction results",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := o.openCache(args)
				if err != nil {
					return err
				}
				if err := c.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintln(o.stderr, color.GreenString("Cache cleared"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats [project-dir]",
			Short: "Show the number and size of cache entries",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := o.openCache(args)
				if err != nil {
					return err
				}
				stats, err := c.GetStats()
				if err != nil {
					return fmt.Errorf("read cache: %w", err)
				}
				fmt.Fprintf(o.stdout, "Entries: %d\nSize: %d bytes\n", stats.Entries, stats.TotalSize)
				return nil
			},
		},
	)
	return cmd
}

// openCache opens the project's cache directory whether or not caching is enabled.
func (o *rootOptions) openCache(args []string) (*cache.Cache, error) {
	result, err := o.findConfig(args)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(getProjectDir(args))
	if err != nil {
		return nil, err
	}
	cfg := result.Config
	return cache.New(osfs.New(dir), cfg.Cache.Dir, cfg.Cache.TTL, true)
}
