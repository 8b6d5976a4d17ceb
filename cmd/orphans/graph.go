package main

import (
	"github.com/spf13/cobra"
)

func newGraphCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "graph [project-dir]",
		Aliases: []string{"dag"},
		Short:   "Print the resolved import graph (Mermaid for text and markdown)",
		Long: `Prints every candidate file with its resolved imports and any import cycles.

JSON and TOON output the nodes, edges and cycles as data. Text and markdown
output a Mermaid diagram followed by the cycles.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, o, args)
		},
	}
}

func runGraph(cmd *cobra.Command, o *rootOptions, args []string) error {
	p, err := o.loadProject(cmd, args)
	if err != nil {
		return err
	}
	format, err := o.formatFor(p.config)
	if err != nil {
		return err
	}

	result, _, err := o.analyze(cmd.Context(), p)
	if err != nil {
		return err
	}

	formatter, err := o.newFormatter(format, p.config)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(result.Graph.Export(result.Roots))
}
