package supervisor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
	"github.com/grochmal/harmonia/internal/infrastructure/runlog"
)

const fileScheme = "file://"

// ProcessResult records the outcome of a single process's run.
type ProcessResult struct {
	NodeName string
	ExitCode int
	Err      error
}

// RunResult aggregates every process result of a CompiledGraph run, in
// layer order.
type RunResult struct {
	Layers [][]ProcessResult
}

// RunCompiled executes a CompiledGraph's layers in order: within a layer,
// processes are launched concurrently; a layer completes only when every
// process in it has exited. Any non-zero exit in a layer fails that
// process, marks the run failed, and aborts subsequent layers. RunCompiled
// blocks full completion of layer L_k before launching any process in
// L_{k+1}.
//
// logFactoryOverride, when non-nil, is used instead of each node's own log
// provider factory — primarily for tests that need a single predictable
// log root.
func RunCompiled(ctx context.Context, cg harmonia.CompiledGraph, version string, logFactoryOverride *runlog.LogProviderFactory) (RunResult, error) {
	var result RunResult
	for _, layer := range cg.Order {
		if err := ctx.Err(); err != nil {
			return result, harmonia.NewCancelledError("run cancelled before layer launch")
		}

		names := make([]string, len(layer.Processes))
		for i, p := range layer.Processes {
			names[i] = p.Node.Name
		}
		sort.Strings(names)

		layerResults := make([]ProcessResult, len(layer.Processes))
		var wg sync.WaitGroup
		var mu sync.Mutex
		var firstErr error

		for i, p := range layer.Processes {
			wg.Add(1)
			go func(idx int, proc harmonia.Process) {
				defer wg.Done()

				factory, err := resolveLogFactory(proc.Node, logFactoryOverride)
				if err != nil {
					recordFailure(&mu, &layerResults[idx], proc.Node.Name, err, &firstErr)
					return
				}

				handle, err := RunNode(proc.Node, factory, version, processArgs(proc, version))
				if err != nil {
					recordFailure(&mu, &layerResults[idx], proc.Node.Name, err, &firstErr)
					return
				}
				defer handle.Release()

				code := handle.Wait(ctx)
				if code != 0 {
					handle.logger.Msg(fmt.Sprintf("node %s exited with non-zero status %d", proc.Node.Name, code))
				}
				mu.Lock()
				layerResults[idx] = ProcessResult{NodeName: proc.Node.Name, ExitCode: code}
				if code != 0 && firstErr == nil {
					firstErr = harmonia.NewExecutionError("node exited with non-zero status", nil).
						WithContext("node", proc.Node.Name).WithContext("exit_code", code)
				}
				mu.Unlock()
			}(i, p)
		}

		wg.Wait()
		result.Layers = append(result.Layers, layerResults)

		if firstErr != nil {
			return result, firstErr
		}
	}
	return result, nil
}

func recordFailure(mu *sync.Mutex, slot *ProcessResult, nodeName string, err error, firstErr *error) {
	mu.Lock()
	defer mu.Unlock()
	*slot = ProcessResult{NodeName: nodeName, ExitCode: -1, Err: err}
	if *firstErr == nil {
		*firstErr = err
	}
}

func resolveLogFactory(node harmonia.Node, override *runlog.LogProviderFactory) (runlog.LogProviderFactory, error) {
	if override != nil {
		return *override, nil
	}
	return runlog.NewLogProviderFactory(node.LogProviderFactory.URI)
}

// processArgs derives the positional arguments passed to a node beyond its
// own cmd: the URIs of its input and output edges, expanded for version.
// This is the concrete realization of "version ... used ... to expand
// edge URIs passed as args" from §4.6.
func processArgs(p harmonia.Process, version string) []string {
	args := make([]string, 0, len(p.InputEdges)+len(p.OutputEdges)+len(p.Flags))
	for _, e := range p.InputEdges {
		args = append(args, edgeArg(e, version))
	}
	for _, e := range p.OutputEdges {
		args = append(args, edgeArg(e, version))
	}
	args = append(args, p.Flags...)
	return args
}

// edgeArg expands an edge's URI for version and, for file:// edges,
// strips the scheme so the spawned process receives a real filesystem
// path rather than a URI it has no way of resolving. Non-local schemes
// are passed through verbatim: their transport is externally provided.
func edgeArg(e harmonia.Edge, version string) string {
	expanded := e.BuildURI(version)
	if strings.HasPrefix(expanded, fileScheme) {
		return expanded[len(fileScheme):]
	}
	return expanded
}
