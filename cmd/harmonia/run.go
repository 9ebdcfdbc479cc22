package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grochmal/harmonia/internal/infrastructure/applog"
	"github.com/grochmal/harmonia/internal/infrastructure/supervisor"
)

// newRunCmd reads a compiled plan and runs it under the given version,
// persisting a running-instance snapshot before launch.
func newRunCmd(flags *rootFlags, logger *applog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <graph-name> <compiled-name> <version>",
		Short: "Run a compiled plan, spawning layered processes as OS children",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, flags, args[0], args[1], args[2], logger)
		},
	}
	return cmd
}

func runRun(cmd *cobra.Command, flags *rootFlags, graphName, compiledName, version string, logger *applog.Logger) error {
	sp, err := flags.stateProvider()
	if err != nil {
		return err
	}

	cg, err := sp.ReadCompiled(graphName, compiledName)
	if err != nil {
		return err
	}

	if err := sp.WriteRunning(graphName, compiledName, version, cg); err != nil {
		return err
	}

	ctx := newContext(cmd)
	logger.Info(ctx, "starting run", "graph", graphName, "compiled", compiledName, "version", version)

	result, err := supervisor.RunCompiled(ctx, cg, version, nil)
	if err != nil {
		logger.Error(ctx, "run failed", "graph", graphName, "compiled", compiledName, "version", version, "error", err)
		return err
	}

	for i, layer := range result.Layers {
		for _, pr := range layer {
			fmt.Fprintf(cmd.OutOrStdout(), "layer %d: %s exited %d\n", i, pr.NodeName, pr.ExitCode)
		}
	}
	logger.Info(ctx, "run completed", "graph", graphName, "compiled", compiledName, "version", version)
	return nil
}
