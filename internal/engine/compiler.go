// Package engine implements the graph validator and topological compiler
// (component D): reducing a validated Graph's edge/process bag into a
// layered CompiledGraph, including sub-graph extraction bounded by
// caller-chosen input and output edges.
package engine

import (
	"sort"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
)

// Compile runs the Kahn-style layered walk over the whole graph, using
// full_io()'s own partition as the (inputs, middle, outputs) boundary.
func Compile(name string, g harmonia.Graph) (harmonia.CompiledGraph, error) {
	inputs, middle, outputs, err := g.FullIO()
	if err != nil {
		return harmonia.CompiledGraph{}, err
	}
	return CompileGraph(name, g, inputs, middle, outputs)
}

// CompileGraph produces a CompiledGraph restricted to the sub-graph whose
// boundary edges are inputs (assumed externally satisfied) and outputs
// (must be produced by the plan); middle lists the permissible intra-plan
// edges. See §4.4 for the algorithm this function implements verbatim.
func CompileGraph(name string, g harmonia.Graph, inputs, middle, outputs []harmonia.Edge) (harmonia.CompiledGraph, error) {
	inputSet := edgeSet(inputs)
	middleSet := edgeSet(middle)
	outputSet := edgeSet(outputs)

	consumable := unionSets(inputSet, middleSet)
	producible := unionSets(middleSet, outputSet)

	remaining := make(map[string]harmonia.Process)
	for _, p := range g.Processes {
		if !everyEdgeIn(p.OutputEdges, producible) {
			continue
		}
		if !everyEdgeIn(p.InputEdges, consumable) {
			continue
		}
		remaining[p.Node.Name] = p
	}

	satisfied := make(map[string]struct{}, len(inputSet))
	for uri := range inputSet {
		satisfied[uri] = struct{}{}
	}

	var order []harmonia.Layer
	for len(remaining) > 0 {
		var layerProcesses []harmonia.Process
		for _, p := range remaining {
			if everyEdgeInSet(p.InputEdges, satisfied) {
				layerProcesses = append(layerProcesses, p)
			}
		}
		if len(layerProcesses) == 0 {
			return harmonia.CompiledGraph{}, disconnectedError(remaining)
		}

		sort.Slice(layerProcesses, func(i, j int) bool { return layerProcesses[i].Less(layerProcesses[j]) })

		for _, p := range layerProcesses {
			delete(remaining, p.Node.Name)
			for _, out := range p.OutputEdges {
				satisfied[out.URI] = struct{}{}
			}
		}
		order = append(order, harmonia.Layer{Processes: layerProcesses})
	}

	cg := harmonia.CompiledGraph{
		Name:       name,
		Order:      order,
		InputEdges: harmonia.SortEdges(inputs),
	}
	if err := cg.Validate(); err != nil {
		return harmonia.CompiledGraph{}, err
	}
	return cg, nil
}

func edgeSet(edges []harmonia.Edge) map[string]struct{} {
	s := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		s[e.URI] = struct{}{}
	}
	return s
}

func unionSets(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

func everyEdgeIn(edges []harmonia.Edge, set map[string]struct{}) bool {
	return everyEdgeInSet(edges, set)
}

func everyEdgeInSet(edges []harmonia.Edge, set map[string]struct{}) bool {
	for _, e := range edges {
		if _, ok := set[e.URI]; !ok {
			return false
		}
	}
	return true
}

func disconnectedError(remaining map[string]harmonia.Process) error {
	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	return &harmonia.DomainError{
		Code:    harmonia.ErrCodeGraphStructure,
		Message: "compilation boundary does not admit a realizable cut: remaining processes are unreachable from the given inputs",
		Context: map[string]interface{}{"unreachable_nodes": names},
	}
}
