package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grochmal/harmonia/internal/infrastructure/applog"
	"github.com/grochmal/harmonia/internal/infrastructure/state"
)

// newInspectCmd prints the JSON of a declared graph, compiled plan, or
// running instance, selected by <kind>; each kind requires its own number
// of positional args after it.
func newInspectCmd(flags *rootFlags, logger *applog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect graph|compiled|running <graph-name> [compiled-name] [version]",
		Short: "Print the persisted JSON for a graph, compiled plan, or running instance",
		Args:  cobra.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, flags, args)
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, flags *rootFlags, args []string) error {
	sp, err := flags.stateProvider()
	if err != nil {
		return err
	}

	kind := args[0]
	rest := args[1:]

	switch kind {
	case "graph":
		if len(rest) != 1 {
			return fmt.Errorf("inspect graph requires exactly one graph name")
		}
		g, err := sp.ReadGraph(rest[0])
		if err != nil {
			return err
		}
		data, err := state.MarshalGraph(g)
		if err != nil {
			return err
		}
		return printJSON(cmd, data)
	case "compiled":
		if len(rest) != 2 {
			return fmt.Errorf("inspect compiled requires <graph-name> <compiled-name>")
		}
		cg, err := sp.ReadCompiled(rest[0], rest[1])
		if err != nil {
			return err
		}
		data, err := state.MarshalCompiledGraph(cg)
		if err != nil {
			return err
		}
		return printJSON(cmd, data)
	case "running":
		if len(rest) != 3 {
			return fmt.Errorf("inspect running requires <graph-name> <compiled-name> <version>")
		}
		cg, err := sp.ReadRunning(rest[0], rest[1], rest[2])
		if err != nil {
			return err
		}
		data, err := state.MarshalCompiledGraph(cg)
		if err != nil {
			return err
		}
		return printJSON(cmd, data)
	default:
		return fmt.Errorf("unknown inspect kind %q: expected graph, compiled, or running", kind)
	}
}

// printJSON writes already-marshaled JSON to cmd's stdout, matching the
// persisted artifact byte-for-byte instead of re-deriving a shape from the
// domain struct.
func printJSON(cmd *cobra.Command, data []byte) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
