package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/grochmal/harmonia/internal/infrastructure/applog"
	"github.com/grochmal/harmonia/internal/infrastructure/state"
)

type rootFlags struct {
	verbose      bool
	graphRoot    string
	compiledRoot string
	runningRoot  string
}

func newRootCmd(logger *applog.Logger) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "harmonia",
		Short:         "Harmonia declares, compiles, and runs DAG data pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Accepted but has no effect; the log level is fixed at info")
	cmd.PersistentFlags().StringVar(&flags.graphRoot, "graph-root", "file://./state/graphs", "file:// root for declared graphs")
	cmd.PersistentFlags().StringVar(&flags.compiledRoot, "compiled-root", "file://./state/compiled", "file:// root for compiled plans")
	cmd.PersistentFlags().StringVar(&flags.runningRoot, "running-root", "file://./state/running", "file:// root for running instances")

	cmd.AddCommand(newListCmd(flags, logger))
	cmd.AddCommand(newCompileCmd(flags, logger))
	cmd.AddCommand(newRunCmd(flags, logger))
	cmd.AddCommand(newInspectCmd(flags, logger))

	return cmd
}

// newContext returns cmd's context, which carries the correlation ID
// attached at the CLI entry point in main.go (falling back to a bare
// background context for callers, such as tests, that never go through
// cobra's ExecuteContext).
func newContext(cmd *cobra.Command) context.Context {
	if cmd != nil {
		if ctx := cmd.Context(); ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

func (f *rootFlags) stateProvider() (*state.StateProvider, error) {
	return state.New(f.graphRoot, f.compiledRoot, f.runningRoot)
}
