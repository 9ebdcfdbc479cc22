package harmonia

import "sort"

// Graph is a named, validated DAG of Processes and Edges. All invariants
// from §3 are enforced once, at construction, by NewGraph; a Graph value
// that exists is by definition valid.
type Graph struct {
	Name      string
	Processes []Process
	Edges     []Edge
}

// NewGraph validates processes and edges against every §3 invariant and
// returns an immutable Graph with canonicalized (sorted) collections.
func NewGraph(name string, processes []Process, edges []Edge) (Graph, error) {
	if name == "" {
		return Graph{}, newInvalidInputError("graph name must not be empty", nil)
	}

	edgeSet := make(map[string]Edge, len(edges))
	for _, e := range edges {
		if _, dup := edgeSet[e.URI]; dup {
			return Graph{}, newGraphStructureError("duplicate edge in graph").WithContext("edge", e.URI)
		}
		edgeSet[e.URI] = e
	}

	processByNode := make(map[string]Process, len(processes))
	for _, p := range processes {
		if _, dup := processByNode[p.Node.Name]; dup {
			return Graph{}, newGraphStructureError("duplicate process in graph").WithContext("node", p.Node.Name)
		}
		processByNode[p.Node.Name] = p
	}

	producedBy := make(map[string]string) // edge uri -> producing node name
	referenced := make(map[string]struct{})

	for _, p := range processes {
		for _, e := range p.referencedEdges() {
			referenced[e.URI] = struct{}{}
			if _, ok := edgeSet[e.URI]; !ok {
				return Graph{}, newGraphStructureError("process references an edge not in the graph's edge set").
					WithContext("node", p.Node.Name).WithContext("edge", e.URI)
			}
		}
		for _, e := range p.OutputEdges {
			if existing, ok := producedBy[e.URI]; ok {
				return Graph{}, newGraphStructureError("edge is the output of more than one process").
					WithContext("edge", e.URI).WithContext("producers", []string{existing, p.Node.Name})
			}
			producedBy[e.URI] = p.Node.Name
		}
	}

	for uri := range edgeSet {
		if _, ok := referenced[uri]; !ok {
			return Graph{}, newGraphStructureError("edge is not referenced by any process").WithContext("edge", uri)
		}
	}

	if err := checkConnected(processes, edgeSet); err != nil {
		return Graph{}, err
	}

	hasInput, hasOutput := false, false
	for uri := range edgeSet {
		if _, produced := producedBy[uri]; !produced {
			hasInput = true
		}
	}
	consumedEdges := make(map[string]struct{})
	for _, p := range processes {
		for _, e := range p.InputEdges {
			consumedEdges[e.URI] = struct{}{}
		}
		for _, opt := range p.Options {
			if opt.Value.Kind == OptionValueKindEdge {
				consumedEdges[opt.Value.EdgeValue.URI] = struct{}{}
			}
		}
	}
	for uri := range edgeSet {
		if _, consumed := consumedEdges[uri]; !consumed {
			hasOutput = true
		}
	}
	if !hasInput {
		return Graph{}, newGraphStructureError("graph has no edge without a producer (missing graph input)")
	}
	if !hasOutput {
		return Graph{}, newGraphStructureError("graph has no edge without a consumer (missing graph output)")
	}

	sortedProcesses := append([]Process(nil), processes...)
	sort.Slice(sortedProcesses, func(i, j int) bool { return sortedProcesses[i].Less(sortedProcesses[j]) })
	sortedEdges := make([]Edge, 0, len(edgeSet))
	for _, e := range edgeSet {
		sortedEdges = append(sortedEdges, e)
	}
	sortedEdges = SortEdges(sortedEdges)

	return Graph{Name: name, Processes: sortedProcesses, Edges: sortedEdges}, nil
}

// checkConnected verifies that the union of process inputs and outputs has
// no disjoint component, via union-find over edge URIs and process node
// names treated as members of one vertex space.
func checkConnected(processes []Process, edgeSet map[string]Edge) error {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for uri := range edgeSet {
		find(uri)
	}
	for _, p := range processes {
		procKey := "process:" + p.Node.Name
		find(procKey)
		for _, e := range p.referencedEdges() {
			union(procKey, e.URI)
		}
	}

	if len(processes) == 0 {
		return nil
	}

	root := find("process:" + processes[0].Node.Name)
	for _, p := range processes {
		if find("process:"+p.Node.Name) != root {
			return newGraphStructureError("graph is disconnected").WithContext("node", p.Node.Name)
		}
	}
	for uri := range edgeSet {
		if find(uri) != root {
			return newGraphStructureError("graph is disconnected").WithContext("edge", uri)
		}
	}
	return nil
}

// FullIO partitions the graph's edges into inputs (nobody's output),
// middle (both some process's input and some process's output), and
// outputs (nobody's input). Both inputs and outputs must be non-empty.
func (g Graph) FullIO() (inputs, middle, outputs []Edge, err error) {
	produced := make(map[string]struct{})
	consumed := make(map[string]struct{})
	for _, p := range g.Processes {
		for _, e := range p.OutputEdges {
			produced[e.URI] = struct{}{}
		}
		for _, e := range p.InputEdges {
			consumed[e.URI] = struct{}{}
		}
		for _, opt := range p.Options {
			if opt.Value.Kind == OptionValueKindEdge {
				consumed[opt.Value.EdgeValue.URI] = struct{}{}
			}
		}
	}

	for _, e := range g.Edges {
		_, isProduced := produced[e.URI]
		_, isConsumed := consumed[e.URI]
		switch {
		case !isProduced && isConsumed:
			inputs = append(inputs, e)
		case isProduced && isConsumed:
			middle = append(middle, e)
		case isProduced && !isConsumed:
			outputs = append(outputs, e)
		}
	}

	if len(inputs) == 0 {
		return nil, nil, nil, newGraphStructureError("graph has no input edges")
	}
	if len(outputs) == 0 {
		return nil, nil, nil, newGraphStructureError("graph has no output edges")
	}
	return inputs, middle, outputs, nil
}

// ProcessByNodeName finds a process bound to the given node name, for
// callers that need to resolve sub-graph boundaries by process rather
// than by edge.
func (g Graph) ProcessByNodeName(name string) (Process, bool) {
	for _, p := range g.Processes {
		if p.Node.Name == name {
			return p, true
		}
	}
	return Process{}, false
}
