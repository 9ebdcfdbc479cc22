package harmonia

// OptionValueKind tags an OptionValue as carrying a plain string or an
// Edge reference.
type OptionValueKind int

const (
	OptionValueKindString OptionValueKind = iota
	OptionValueKindEdge
)

// OptionValue is the tagged union string | Edge used for Process option
// values. Exactly one of StringValue / EdgeValue is meaningful, selected
// by Kind.
type OptionValue struct {
	Kind        OptionValueKind
	StringValue string
	EdgeValue   Edge
}

// NewStringOption wraps a plain string option value.
func NewStringOption(s string) OptionValue {
	return OptionValue{Kind: OptionValueKindString, StringValue: s}
}

// NewEdgeOption wraps an Edge-typed option value.
func NewEdgeOption(e Edge) OptionValue {
	return OptionValue{Kind: OptionValueKindEdge, EdgeValue: e}
}

// Option is a single ordered entry of a Process's option mapping;
// preserved as a slice (not a map) to keep iteration order stable across
// serialization, per §9's note on the heterogeneous options map.
type Option struct {
	Name  string
	Value OptionValue
}

// Process binds a Node to its input and output edges plus option
// arguments. Processes compare by their Node.
type Process struct {
	Node        Node
	InputEdges  []Edge
	OutputEdges []Edge
	Flags       []string
	Options     []Option
}

// NewProcess validates that output edges is non-empty (the sole
// constructor-time invariant specific to Process; edge-membership and
// single-writer checks are Graph-level concerns) and freezes the value.
func NewProcess(node Node, inputEdges, outputEdges []Edge, flags []string, options []Option) (Process, error) {
	if len(outputEdges) == 0 {
		return Process{}, newInvalidInputError("process must declare at least one output edge", nil).WithContext("node", node.Name)
	}
	return Process{
		Node:        node,
		InputEdges:  append([]Edge(nil), inputEdges...),
		OutputEdges: append([]Edge(nil), outputEdges...),
		Flags:       append([]string(nil), flags...),
		Options:     append([]Option(nil), options...),
	}, nil
}

// Equal reports Node equality.
func (p Process) Equal(other Process) bool {
	return p.Node.Equal(other.Node)
}

// Less implements the canonical materialization order: lexicographic on
// the bound Node's name, per §4.4's "sorted by node name" requirement.
func (p Process) Less(other Process) bool {
	return p.Node.Less(other.Node)
}

// referencedEdges returns every edge this process references: inputs,
// outputs, and any Edge-typed option value. Used by Graph validation
// (edge membership and the connectedness check).
func (p Process) referencedEdges() []Edge {
	all := make([]Edge, 0, len(p.InputEdges)+len(p.OutputEdges)+len(p.Options))
	all = append(all, p.InputEdges...)
	all = append(all, p.OutputEdges...)
	for _, opt := range p.Options {
		if opt.Value.Kind == OptionValueKindEdge {
			all = append(all, opt.Value.EdgeValue)
		}
	}
	return all
}
