package harmonia

import "github.com/grochmal/harmonia/internal/domain/uri"

// LogProviderFactoryRef is the immutable descriptor a Node carries: a
// templated URI containing both {name} and {version}. The infrastructure
// layer (internal/infrastructure/runlog) turns this descriptor into an
// actual write-only handle at build time; the domain layer only validates
// and carries the template.
type LogProviderFactoryRef struct {
	URI string
}

// NewLogProviderFactoryRef validates that uri contains both the {name} and
// {version} templating tokens, per §4.3. The sentinel URI "-" (standard
// output) is exempt from both checks.
func NewLogProviderFactoryRef(u string) (LogProviderFactoryRef, error) {
	if u == "-" {
		return LogProviderFactoryRef{URI: u}, nil
	}
	if err := uri.HasName(u); err != nil {
		return LogProviderFactoryRef{}, newInvalidInputError("log provider factory uri must contain {name}", err).WithContext("uri", u)
	}
	if err := uri.HasVersion(u); err != nil {
		return LogProviderFactoryRef{}, newInvalidInputError("log provider factory uri must contain {version}", err).WithContext("uri", u)
	}
	return LogProviderFactoryRef{URI: u}, nil
}

// Node is an external command and its metadata: a non-empty name, an
// ordered argument vector (the command), and a log provider factory
// reference. Nodes are value-equal and ordered by name.
type Node struct {
	Name               string
	Cmd                []string
	LogProviderFactory LogProviderFactoryRef
}

// NewNode validates name (non-empty) and cmd (non-empty) and freezes the
// value.
func NewNode(name string, cmd []string, logFactory LogProviderFactoryRef) (Node, error) {
	if name == "" {
		return Node{}, newInvalidInputError("node name must not be empty", nil)
	}
	if len(cmd) == 0 {
		return Node{}, newInvalidInputError("node cmd must not be empty", nil).WithContext("node", name)
	}
	frozenCmd := append([]string(nil), cmd...)
	return Node{Name: name, Cmd: frozenCmd, LogProviderFactory: logFactory}, nil
}

// Equal reports name equality.
func (n Node) Equal(other Node) bool {
	return n.Name == other.Name
}

// Less implements the total order on Nodes: lexicographic on Name.
func (n Node) Less(other Node) bool {
	return n.Name < other.Name
}
