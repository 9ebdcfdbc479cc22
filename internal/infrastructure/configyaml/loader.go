package configyaml

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
)

const edgeOptionPrefix = "edge:"

// Loader reads the YAML authoring format from disk and converts it into a
// validated Graph. It never touches the persisted Graph JSON the state
// provider reads and writes; this is an authoring-time convenience only.
type Loader struct{}

// NewLoader constructs a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses path, runs struct-tag validation, and converts the result
// into a harmonia.Graph via the domain layer's validating constructors.
func (l *Loader) Load(path string) (harmonia.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return harmonia.Graph{}, harmonia.NewUnreadableError(path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return harmonia.Graph{}, harmonia.NewUnreadableError(path, err)
	}

	if err := Validate(&doc); err != nil {
		return harmonia.Graph{}, &harmonia.DomainError{
			Code:    harmonia.ErrCodeInvalidInput,
			Message: "yaml document failed schema validation",
			Cause:   err,
			Context: map[string]interface{}{"path": path},
		}
	}

	return toGraph(doc)
}

func toGraph(doc Document) (harmonia.Graph, error) {
	edgesByURI := make(map[string]harmonia.Edge, len(doc.Edges))
	allEdges := make([]harmonia.Edge, 0, len(doc.Edges))
	for _, ey := range doc.Edges {
		e, err := harmonia.NewEdge(ey.URI)
		if err != nil {
			return harmonia.Graph{}, err
		}
		edgesByURI[ey.URI] = e
		allEdges = append(allEdges, e)
	}

	resolveEdges := func(uris []string) ([]harmonia.Edge, error) {
		out := make([]harmonia.Edge, 0, len(uris))
		for _, uri := range uris {
			e, ok := edgesByURI[uri]
			if !ok {
				return nil, &harmonia.DomainError{
					Code:    harmonia.ErrCodeGraphStructure,
					Message: "process references an undeclared edge URI",
					Context: map[string]interface{}{"edge_uri": uri},
				}
			}
			out = append(out, e)
		}
		return out, nil
	}

	processes := make([]harmonia.Process, 0, len(doc.Processes))
	for _, py := range doc.Processes {
		logURI := doc.LogProviderFactory.URI
		if py.Node.LogProviderFactory != nil {
			logURI = py.Node.LogProviderFactory.URI
		}
		factory, err := harmonia.NewLogProviderFactoryRef(logURI)
		if err != nil {
			return harmonia.Graph{}, err
		}
		node, err := harmonia.NewNode(py.Node.Name, py.Node.Cmd, factory)
		if err != nil {
			return harmonia.Graph{}, err
		}

		inputs, err := resolveEdges(py.InputEdges)
		if err != nil {
			return harmonia.Graph{}, err
		}
		outputs, err := resolveEdges(py.OutputEdges)
		if err != nil {
			return harmonia.Graph{}, err
		}

		options := make([]harmonia.Option, 0, len(py.Options))
		for _, oy := range py.Options {
			if strings.HasPrefix(oy.Value, edgeOptionPrefix) {
				uri := strings.TrimPrefix(oy.Value, edgeOptionPrefix)
				e, ok := edgesByURI[uri]
				if !ok {
					return harmonia.Graph{}, fmt.Errorf("option %q references undeclared edge %q", oy.Name, uri)
				}
				options = append(options, harmonia.Option{Name: oy.Name, Value: harmonia.NewEdgeOption(e)})
				continue
			}
			options = append(options, harmonia.Option{Name: oy.Name, Value: harmonia.NewStringOption(oy.Value)})
		}

		p, err := harmonia.NewProcess(node, inputs, outputs, py.Flags, options)
		if err != nil {
			return harmonia.Graph{}, err
		}
		processes = append(processes, p)
	}

	return harmonia.NewGraph(doc.Name, processes, allEdges)
}
