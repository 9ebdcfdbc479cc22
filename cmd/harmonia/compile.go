package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
	"github.com/grochmal/harmonia/internal/engine"
	"github.com/grochmal/harmonia/internal/infrastructure/applog"
)

type compileOptions struct {
	compiledName string
	inputs       []string
	outputs      []string
	middle       []string
}

// newCompileCmd reads a declared graph and compiles it, optionally
// restricted to a sub-graph bounded by --inputs/--middle/--outputs edge
// URIs; with none given, the whole graph is compiled via full_io().
func newCompileCmd(flags *rootFlags, logger *applog.Logger) *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <graph-name>",
		Short: "Compile a declared graph into a layered execution plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, flags, opts, args[0], logger)
		},
	}

	cmd.Flags().StringVar(&opts.compiledName, "name", "", "Name for the compiled plan (defaults to the graph name)")
	cmd.Flags().StringSliceVar(&opts.inputs, "inputs", nil, "Boundary input edge URIs (sub-graph compilation)")
	cmd.Flags().StringSliceVar(&opts.outputs, "outputs", nil, "Boundary output edge URIs (sub-graph compilation)")
	cmd.Flags().StringSliceVar(&opts.middle, "middle", nil, "Permissible intra-plan edge URIs (sub-graph compilation)")

	return cmd
}

func runCompile(cmd *cobra.Command, flags *rootFlags, opts *compileOptions, graphName string, logger *applog.Logger) error {
	sp, err := flags.stateProvider()
	if err != nil {
		return err
	}

	g, err := sp.ReadGraph(graphName)
	if err != nil {
		return err
	}

	compiledName := opts.compiledName
	if compiledName == "" {
		compiledName = graphName
	}

	var cg harmonia.CompiledGraph
	if len(opts.inputs) == 0 && len(opts.outputs) == 0 && len(opts.middle) == 0 {
		cg, err = engine.Compile(compiledName, g)
	} else {
		inputEdges, ierr := resolveEdgeURIs(g, opts.inputs)
		if ierr != nil {
			return ierr
		}
		middleEdges, merr := resolveEdgeURIs(g, opts.middle)
		if merr != nil {
			return merr
		}
		outputEdges, oerr := resolveEdgeURIs(g, opts.outputs)
		if oerr != nil {
			return oerr
		}
		cg, err = engine.CompileGraph(compiledName, g, inputEdges, middleEdges, outputEdges)
	}
	if err != nil {
		return err
	}

	if err := sp.WriteCompiled(graphName, cg); err != nil {
		return err
	}

	logger.Info(newContext(cmd), "compiled graph", "graph", graphName, "compiled", compiledName, "layers", len(cg.Order))
	fmt.Fprintf(cmd.OutOrStdout(), "compiled %s/%s: %d layers, %d processes\n", graphName, compiledName, len(cg.Order), cg.TotalProcesses())
	return nil
}

func resolveEdgeURIs(g harmonia.Graph, uris []string) ([]harmonia.Edge, error) {
	byURI := make(map[string]harmonia.Edge, len(g.Edges))
	for _, e := range g.Edges {
		byURI[e.URI] = e
	}
	out := make([]harmonia.Edge, 0, len(uris))
	for _, u := range uris {
		e, ok := byURI[u]
		if !ok {
			return nil, &harmonia.DomainError{
				Code:    harmonia.ErrCodeGraphStructure,
				Message: "requested boundary edge is not a member of the graph",
				Context: map[string]interface{}{"uri": u},
			}
		}
		out = append(out, e)
	}
	return out, nil
}
