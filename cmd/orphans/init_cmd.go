package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "orphans.toml"

func newInitCmd(o *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new orphans configuration file",
		Long: `Creates a new orphans.toml configuration file in the current directory
with the Next.js defaults. Use --output to specify a different location.

Examples:
  orphans init                          # Creates orphans.toml in current directory
  orphans init -o .orphans/orphans.toml # Creates config in .orphans directory
  orphans init --force                  # Overwrite existing config file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(o, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	return cmd
}

func runInit(o *rootOptions, force bool) error {
	outputPath := o.output
	if outputPath == "" {
		outputPath = defaultConfigFile
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintln(o.stderr, color.GreenString("Created %s", outputPath))
	fmt.Fprintln(o.stderr, "Edit entry.patterns to match your framework's entry files.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# orphans configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/orphans\n\n")
	buf.Write(content)

	return buf.String(), nil
}
