package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	validate := &cobra.Command{
		Use:   "validate [project-dir]",
		Short: "Validate a configuration file",
		Long: `Validates an orphans configuration file against its schema and checks its values.

Examples:
  orphans config validate                   # Validates default config locations
  orphans config validate -c orphans.toml   # Validates specific file
  orphans config validate ./web             # Validates the config of another project`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(o, args)
		},
	}

	show := &cobra.Command{
		Use:   "show [project-dir]",
		Short: "Show the effective configuration",
		Long: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  orphans config show                  # Show effective config
  orphans config show -c orphans.toml  # Show config from specific file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(o, args)
		},
	}

	cmd.AddCommand(validate, show)
	return cmd
}

// findConfig returns the explicit config file, or the one found in the project directory.
func (o *rootOptions) findConfig(args []string) (*config.LoadResult, error) {
	loadOpts := []config.LoadOption{config.WithDir(getProjectDir(args))}
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithPath(o.configFile))
	}
	return config.LoadConfig(loadOpts...)
}

func runConfigValidate(o *rootOptions, args []string) error {
	result, err := o.findConfig(args)
	if err == nil && result.Source != "" {
		err = config.ValidateFile(result.Source)
	}
	if err != nil {
		fmt.Fprintln(o.stderr, color.RedString("Configuration validation failed:"))
		fmt.Fprintf(o.stderr, "  - %s\n", err)
		return &ExitError{Code: 1}
	}

	if result.Source != "" {
		fmt.Fprintln(o.stdout, color.GreenString("Configuration valid: %s", result.Source))
	} else {
		fmt.Fprintln(o.stdout, color.YellowString("No config file found. Default configuration is valid."))
	}
	return nil
}

func runConfigShow(o *rootOptions, args []string) error {
	result, err := o.findConfig(args)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Fprintf(o.stdout, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(o.stdout, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(o.stdout, string(content))
	return nil
}
