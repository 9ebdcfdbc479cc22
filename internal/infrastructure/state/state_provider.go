package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
)

const fileScheme = "file://"

// StateProvider is the three-tier filesystem catalog for declared graphs,
// compiled plans, and running instances. Each root defaults to a file://
// location; only file:// roots are currently supported, matching §4.5 (any
// other scheme is an externally-provided transport out of this core's
// scope).
type StateProvider struct {
	graphRoot    string
	compiledRoot string
	runningRoot  string
}

// New constructs a StateProvider from three file:// root URIs.
func New(graphRootURI, compiledRootURI, runningRootURI string) (*StateProvider, error) {
	graphRoot, err := toLocalPath(graphRootURI)
	if err != nil {
		return nil, err
	}
	compiledRoot, err := toLocalPath(compiledRootURI)
	if err != nil {
		return nil, err
	}
	runningRoot, err := toLocalPath(runningRootURI)
	if err != nil {
		return nil, err
	}
	return &StateProvider{graphRoot: graphRoot, compiledRoot: compiledRoot, runningRoot: runningRoot}, nil
}

func toLocalPath(rootURI string) (string, error) {
	if !strings.HasPrefix(rootURI, fileScheme) {
		return "", &harmonia.DomainError{
			Code:    harmonia.ErrCodeInvalidInput,
			Message: "only file:// state provider roots are currently supported",
			Context: map[string]interface{}{"uri": rootURI},
		}
	}
	return rootURI[len(fileScheme):], nil
}

func listJSONNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListGraphs returns the names of *.json artifacts directly under the
// graph root.
func (sp *StateProvider) ListGraphs() ([]string, error) {
	return listJSONNames(sp.graphRoot)
}

// ListCompiled returns the names of *.json artifacts under
// <compiled_root>/<graph>/.
func (sp *StateProvider) ListCompiled(graph string) ([]string, error) {
	return listJSONNames(filepath.Join(sp.compiledRoot, graph))
}

// ListVersions returns the names of *.json artifacts under
// <running_root>/<graph>/<compiled>/.
func (sp *StateProvider) ListVersions(graph, compiled string) ([]string, error) {
	return listJSONNames(filepath.Join(sp.runningRoot, graph, compiled))
}

func (sp *StateProvider) graphPath(name string) string {
	return filepath.Join(sp.graphRoot, name+".json")
}

func (sp *StateProvider) compiledPath(graph, compiled string) string {
	return filepath.Join(sp.compiledRoot, graph, compiled+".json")
}

func (sp *StateProvider) runningPath(graph, compiled, version string) string {
	return filepath.Join(sp.runningRoot, graph, compiled, version+".json")
}

// readJSON loads and parses path, distinguishing Unreadable (missing file
// or malformed JSON) from a caller-supplied validation step that may
// report Incompatible.
func readJSON(path string, out interface{}) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, harmonia.NewUnreadableError(path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, harmonia.NewUnreadableError(path, err)
	}
	return data, nil
}

func prettyJSON(data []byte) string {
	var buf []byte
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(buf)
}

// writeJSONAtomic serializes v to pretty JSON and writes it at path via a
// write-to-temp-then-rename, creating parent directories as needed.
// Grounded on the teacher's internal/registry/cache.go StatusCache.Save.
func writeJSONAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// ReadGraph loads and validates the Graph stored at name. Unreadable
// covers a missing file or malformed JSON; Incompatible covers JSON that
// parses but fails Graph invariants.
func (sp *StateProvider) ReadGraph(name string) (harmonia.Graph, error) {
	path := sp.graphPath(name)
	var dto graphDTO
	data, err := readJSON(path, &dto)
	if err != nil {
		return harmonia.Graph{}, err
	}
	g, err := fromGraphDTO(dto)
	if err != nil {
		return harmonia.Graph{}, harmonia.NewIncompatibleError(prettyJSON(data), err)
	}
	return g, nil
}

// WriteGraph serializes g to pretty JSON at the deterministic graph path.
func (sp *StateProvider) WriteGraph(g harmonia.Graph) error {
	return writeJSONAtomic(sp.graphPath(g.Name), toGraphDTO(g))
}

// ReadCompiled loads and validates the CompiledGraph stored under
// (graph, compiled).
func (sp *StateProvider) ReadCompiled(graph, compiled string) (harmonia.CompiledGraph, error) {
	path := sp.compiledPath(graph, compiled)
	var dto compiledGraphDTO
	data, err := readJSON(path, &dto)
	if err != nil {
		return harmonia.CompiledGraph{}, err
	}
	cg, err := fromCompiledGraphDTO(dto)
	if err != nil {
		return harmonia.CompiledGraph{}, harmonia.NewIncompatibleError(prettyJSON(data), err)
	}
	return cg, nil
}

// WriteCompiled serializes cg to pretty JSON under (graph, compiled).
func (sp *StateProvider) WriteCompiled(graph string, cg harmonia.CompiledGraph) error {
	return writeJSONAtomic(sp.compiledPath(graph, cg.Name), toCompiledGraphDTO(cg))
}

// ReadRunning loads and validates the running-instance record stored under
// (graph, compiled, version). A running-instance record is itself a
// CompiledGraph snapshot, frozen at launch time.
func (sp *StateProvider) ReadRunning(graph, compiled, version string) (harmonia.CompiledGraph, error) {
	path := sp.runningPath(graph, compiled, version)
	var dto compiledGraphDTO
	data, err := readJSON(path, &dto)
	if err != nil {
		return harmonia.CompiledGraph{}, err
	}
	cg, err := fromCompiledGraphDTO(dto)
	if err != nil {
		return harmonia.CompiledGraph{}, harmonia.NewIncompatibleError(prettyJSON(data), err)
	}
	return cg, nil
}

// WriteRunning serializes running to pretty JSON under (graph, compiled,
// version).
func (sp *StateProvider) WriteRunning(graph, compiled, version string, running harmonia.CompiledGraph) error {
	return writeJSONAtomic(sp.runningPath(graph, compiled, version), toCompiledGraphDTO(running))
}
