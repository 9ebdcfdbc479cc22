package harmonia

// Layer is a set of Processes with no mutual dependency, runnable
// concurrently. Materialized as a slice in canonical (node-name-sorted)
// order so that serialization is reproducible.
type Layer struct {
	Processes []Process
}

// CompiledGraph is a layered, topologically ordered execution plan derived
// from a Graph, possibly restricted to a sub-graph. It is immutable once
// produced by internal/engine's compiler.
type CompiledGraph struct {
	Name       string
	Order      []Layer
	InputEdges []Edge
}

// Validate checks the CompiledGraph invariant from §3: for every Process P
// in layer L_k, every input edge of P is either in the plan's input set or
// produced by some Process in an earlier layer. internal/engine's compiler
// cannot produce a CompiledGraph that violates this by construction, but
// Validate lets the state provider re-check artifacts loaded from disk.
func (cg CompiledGraph) Validate() error {
	satisfied := make(map[string]struct{}, len(cg.InputEdges))
	for _, e := range cg.InputEdges {
		satisfied[e.URI] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, layer := range cg.Order {
		for _, p := range layer.Processes {
			if _, dup := seen[p.Node.Name]; dup {
				return newGraphStructureError("process appears in more than one layer").WithContext("node", p.Node.Name)
			}
			for _, in := range p.InputEdges {
				if _, ok := satisfied[in.URI]; !ok {
					return newGraphStructureError("process consumes an edge not yet produced").
						WithContext("node", p.Node.Name).WithContext("edge", in.URI)
				}
			}
		}
		for _, p := range layer.Processes {
			seen[p.Node.Name] = struct{}{}
			for _, out := range p.OutputEdges {
				satisfied[out.URI] = struct{}{}
			}
		}
	}
	return nil
}

// NodeByName returns the Node bound to the given name anywhere in the
// plan, searching the layers in order. The supervisor does not call it: it
// runs each layer process's own Node directly (see DESIGN.md).
func (cg CompiledGraph) NodeByName(name string) (Node, bool) {
	for _, layer := range cg.Order {
		for _, p := range layer.Processes {
			if p.Node.Name == name {
				return p.Node, true
			}
		}
	}
	return Node{}, false
}

// TotalProcesses counts every process across every layer.
func (cg CompiledGraph) TotalProcesses() int {
	n := 0
	for _, layer := range cg.Order {
		n += len(layer.Processes)
	}
	return n
}
