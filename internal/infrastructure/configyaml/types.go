// Package configyaml implements the declarative YAML authoring format
// described in SPEC_FULL.md §4.7: a convenience layer for hand-writing a
// Graph, distinct from the canonical persisted Graph JSON the state
// provider reads and writes. Grounded on the teacher's
// internal/config/{types,parser,validator}.go and
// internal/infrastructure/config/yaml_loader.go.
package configyaml

// Document is the top-level YAML authoring structure.
type Document struct {
	Name               string         `yaml:"name" validate:"required,min=1"`
	LogProviderFactory LogFactoryYAML `yaml:"log_provider_factory" validate:"required"`
	Edges              []EdgeYAML     `yaml:"edges" validate:"required,min=1,dive"`
	Processes          []ProcessYAML  `yaml:"processes" validate:"required,min=1,dive"`
}

// LogFactoryYAML is the default log provider factory template new
// processes inherit when they don't declare their own.
type LogFactoryYAML struct {
	URI string `yaml:"uri" validate:"required,uri_scheme"`
}

// EdgeYAML declares one data artifact. Local is an authoring-time hint;
// the actual LocalEdge classification is always re-derived from the URI
// shape (file:// + {version}) at conversion time, never trusted blindly
// from this flag. Edges have no separate authoring-time name: processes
// and "edge:" option values reference them by their URI string, the same
// identity the persisted Graph JSON (§6) and the domain model use.
type EdgeYAML struct {
	URI   string `yaml:"uri" validate:"required,uri_scheme"`
	Local bool   `yaml:"local,omitempty"`
}

// NodeYAML describes the command a process binds to.
type NodeYAML struct {
	Name               string          `yaml:"name" validate:"required,min=1"`
	Cmd                []string        `yaml:"cmd" validate:"required,min=1"`
	LogProviderFactory *LogFactoryYAML `yaml:"log_provider_factory,omitempty"`
}

// OptionYAML is one option-name -> value entry. Value is either a bare
// string or an edge URI reference prefixed with "edge:", resolved at
// conversion time against the document's edges list.
type OptionYAML struct {
	Name  string `yaml:"name" validate:"required,min=1"`
	Value string `yaml:"value" validate:"required"`
}

// ProcessYAML binds a node to its input/output edges, referenced by URI
// (matching EdgeYAML.URI and the persisted Graph JSON's edge identity),
// plus flags and options.
type ProcessYAML struct {
	Node        NodeYAML     `yaml:"node" validate:"required"`
	InputEdges  []string     `yaml:"input_edges,omitempty"`
	OutputEdges []string     `yaml:"output_edges" validate:"required,min=1"`
	Flags       []string     `yaml:"flags,omitempty"`
	Options     []OptionYAML `yaml:"options,omitempty"`
}
