// Package state implements the three-tier persisted state catalog
// (component E): declared graphs, compiled plans, and running instances,
// indexed by name and version under three file:// roots. It is grounded
// on the teacher's atomic write-to-temp-then-rename pattern in
// internal/registry/cache.go, generalized to three artifact kinds and two
// distinguished failure kinds (Unreadable, Incompatible).
package state

import (
	"encoding/json"
	"fmt"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
)

// edgeDTO is the wire form of an Edge: { "uri": string }. Kind is derived
// on load, not serialized, matching §6's schema.
type edgeDTO struct {
	URI string `json:"uri"`
}

// optionValueDTO marshals an OptionValue as either a bare JSON string or
// an edgeDTO object, matching the "string|Edge" union in §6.
type optionValueDTO struct {
	value harmonia.OptionValue
}

func (o optionValueDTO) MarshalJSON() ([]byte, error) {
	if o.value.Kind == harmonia.OptionValueKindEdge {
		return json.Marshal(edgeDTO{URI: o.value.EdgeValue.URI})
	}
	return json.Marshal(o.value.StringValue)
}

func (o *optionValueDTO) UnmarshalJSON(data []byte) error {
	var asEdge edgeDTO
	if err := json.Unmarshal(data, &asEdge); err == nil && asEdge.URI != "" {
		edge, err := harmonia.NewEdge(asEdge.URI)
		if err != nil {
			return err
		}
		o.value = harmonia.NewEdgeOption(edge)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("option value is neither a string nor an edge: %w", err)
	}
	o.value = harmonia.NewStringOption(asString)
	return nil
}

// optionEntryDTO is one [name, value] pair of a process's options array.
type optionEntryDTO struct {
	Name  string
	Value optionValueDTO
}

func (e optionEntryDTO) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Name, e.Value})
}

func (e *optionEntryDTO) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("option entry must be a [name, value] pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Value)
}

type logProviderFactoryDTO struct {
	URI string `json:"uri"`
}

type nodeDTO struct {
	Name               string                `json:"name"`
	Cmd                []string              `json:"cmd"`
	LogProviderFactory logProviderFactoryDTO `json:"log_provider_factory"`
}

type processDTO struct {
	Node        nodeDTO          `json:"node"`
	Flags       []string         `json:"flags"`
	Options     []optionEntryDTO `json:"options"`
	InputEdges  []edgeDTO        `json:"input_edges"`
	OutputEdges []edgeDTO        `json:"output_edges"`
}

type graphDTO struct {
	Name      string       `json:"name"`
	Processes []processDTO `json:"processes"`
	Edges     []edgeDTO    `json:"edges"`
}

type compiledGraphDTO struct {
	Name       string         `json:"name"`
	Order      [][]processDTO `json:"order"`
	InputEdges []edgeDTO      `json:"input_edges"`
}

func toEdgeDTOs(edges []harmonia.Edge) []edgeDTO {
	out := make([]edgeDTO, len(edges))
	for i, e := range edges {
		out[i] = edgeDTO{URI: e.URI}
	}
	return out
}

func fromEdgeDTOs(dtos []edgeDTO) ([]harmonia.Edge, error) {
	out := make([]harmonia.Edge, len(dtos))
	for i, d := range dtos {
		e, err := harmonia.NewEdge(d.URI)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func toProcessDTO(p harmonia.Process) processDTO {
	options := make([]optionEntryDTO, len(p.Options))
	for i, opt := range p.Options {
		options[i] = optionEntryDTO{Name: opt.Name, Value: optionValueDTO{value: opt.Value}}
	}
	return processDTO{
		Node: nodeDTO{
			Name:               p.Node.Name,
			Cmd:                p.Node.Cmd,
			LogProviderFactory: logProviderFactoryDTO{URI: p.Node.LogProviderFactory.URI},
		},
		Flags:       p.Flags,
		Options:     options,
		InputEdges:  toEdgeDTOs(p.InputEdges),
		OutputEdges: toEdgeDTOs(p.OutputEdges),
	}
}

func fromProcessDTO(d processDTO) (harmonia.Process, error) {
	factory, err := harmonia.NewLogProviderFactoryRef(d.Node.LogProviderFactory.URI)
	if err != nil {
		return harmonia.Process{}, err
	}
	node, err := harmonia.NewNode(d.Node.Name, d.Node.Cmd, factory)
	if err != nil {
		return harmonia.Process{}, err
	}
	inputs, err := fromEdgeDTOs(d.InputEdges)
	if err != nil {
		return harmonia.Process{}, err
	}
	outputs, err := fromEdgeDTOs(d.OutputEdges)
	if err != nil {
		return harmonia.Process{}, err
	}
	options := make([]harmonia.Option, len(d.Options))
	for i, opt := range d.Options {
		options[i] = harmonia.Option{Name: opt.Name, Value: opt.Value.value}
	}
	return harmonia.NewProcess(node, inputs, outputs, d.Flags, options)
}

// MarshalGraph renders g in the canonical §6 on-disk schema (the same
// DTO form WriteGraph persists), for callers such as `inspect` that need
// to surface the persisted shape rather than the bare domain struct.
func MarshalGraph(g harmonia.Graph) ([]byte, error) {
	return json.MarshalIndent(toGraphDTO(g), "", "  ")
}

// MarshalCompiledGraph renders cg in the canonical §6 on-disk schema (the
// same DTO form WriteCompiled/WriteRunning persist).
func MarshalCompiledGraph(cg harmonia.CompiledGraph) ([]byte, error) {
	return json.MarshalIndent(toCompiledGraphDTO(cg), "", "  ")
}

func toGraphDTO(g harmonia.Graph) graphDTO {
	processes := make([]processDTO, len(g.Processes))
	for i, p := range g.Processes {
		processes[i] = toProcessDTO(p)
	}
	return graphDTO{Name: g.Name, Processes: processes, Edges: toEdgeDTOs(g.Edges)}
}

func fromGraphDTO(d graphDTO) (harmonia.Graph, error) {
	processes := make([]harmonia.Process, len(d.Processes))
	for i, pd := range d.Processes {
		p, err := fromProcessDTO(pd)
		if err != nil {
			return harmonia.Graph{}, err
		}
		processes[i] = p
	}
	edges, err := fromEdgeDTOs(d.Edges)
	if err != nil {
		return harmonia.Graph{}, err
	}
	return harmonia.NewGraph(d.Name, processes, edges)
}

func toCompiledGraphDTO(cg harmonia.CompiledGraph) compiledGraphDTO {
	order := make([][]processDTO, len(cg.Order))
	for i, layer := range cg.Order {
		layerDTOs := make([]processDTO, len(layer.Processes))
		for j, p := range layer.Processes {
			layerDTOs[j] = toProcessDTO(p)
		}
		order[i] = layerDTOs
	}
	return compiledGraphDTO{Name: cg.Name, Order: order, InputEdges: toEdgeDTOs(cg.InputEdges)}
}

func fromCompiledGraphDTO(d compiledGraphDTO) (harmonia.CompiledGraph, error) {
	order := make([]harmonia.Layer, len(d.Order))
	for i, layerDTOs := range d.Order {
		processes := make([]harmonia.Process, len(layerDTOs))
		for j, pd := range layerDTOs {
			p, err := fromProcessDTO(pd)
			if err != nil {
				return harmonia.CompiledGraph{}, err
			}
			processes[j] = p
		}
		order[i] = harmonia.Layer{Processes: processes}
	}
	inputEdges, err := fromEdgeDTOs(d.InputEdges)
	if err != nil {
		return harmonia.CompiledGraph{}, err
	}
	cg := harmonia.CompiledGraph{Name: d.Name, Order: order, InputEdges: inputEdges}
	if err := cg.Validate(); err != nil {
		return harmonia.CompiledGraph{}, err
	}
	return cg, nil
}
