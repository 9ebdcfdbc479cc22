package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/grochmal/harmonia/internal/infrastructure/applog"
)

type listOptions struct {
	jsonOutput bool
}

// newListCmd exposes list_graphs / list_compiled / list_versions behind a
// single verb, keyed by how many positional args are given: none lists
// graphs, one lists compiled plans for that graph, two lists versions for
// that (graph, compiled) pair.
func newListCmd(flags *rootFlags, logger *applog.Logger) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list [graph] [compiled]",
		Short: "List declared graphs, compiled plans, or running versions",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, flags, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func runList(cmd *cobra.Command, flags *rootFlags, opts *listOptions, args []string) error {
	sp, err := flags.stateProvider()
	if err != nil {
		return err
	}

	var names []string
	switch len(args) {
	case 0:
		names, err = sp.ListGraphs()
	case 1:
		names, err = sp.ListCompiled(args[0])
	case 2:
		names, err = sp.ListVersions(args[0], args[1])
	}
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(names)
	}

	return renderNameTable(cmd, names)
}

func renderNameTable(cmd *cobra.Command, names []string) error {
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(none)")
		return nil
	}

	if !isTerminal(cmd.OutOrStdout()) {
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	}

	header := lipgloss.NewStyle().Bold(true).Render("NAME")
	fmt.Fprintln(cmd.OutOrStdout(), header)
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func isTerminal(w interface{}) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
