package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
	"github.com/grochmal/harmonia/internal/engine"
)

func mustEdge(t *testing.T, u string) harmonia.Edge {
	t.Helper()
	e, err := harmonia.NewEdge(u)
	require.NoError(t, err)
	return e
}

func mustProcess(t *testing.T, name string, inputs, outputs []harmonia.Edge) harmonia.Process {
	t.Helper()
	factory, err := harmonia.NewLogProviderFactoryRef("file://./logs/{version}/{name}.log")
	require.NoError(t, err)
	node, err := harmonia.NewNode(name, []string{"true"}, factory)
	require.NoError(t, err)
	p, err := harmonia.NewProcess(node, inputs, outputs, nil, nil)
	require.NoError(t, err)
	return p
}

type diamond struct {
	graph                harmonia.Graph
	a, b, c, c2, d       harmonia.Edge
	root, left, right, j harmonia.Process
}

func buildDiamond(t *testing.T) diamond {
	t.Helper()
	a := mustEdge(t, "file://./a")
	b := mustEdge(t, "file://./{version}/b")
	c := mustEdge(t, "file://./{version}/c")
	c2 := mustEdge(t, "file://./{version}/c2")
	d := mustEdge(t, "file://./{version}/d")

	root := mustProcess(t, "root", []harmonia.Edge{a}, []harmonia.Edge{b})
	left := mustProcess(t, "left", []harmonia.Edge{b}, []harmonia.Edge{c})
	right := mustProcess(t, "right", []harmonia.Edge{b}, []harmonia.Edge{c2})
	join := mustProcess(t, "join", []harmonia.Edge{c, c2}, []harmonia.Edge{d})

	g, err := harmonia.NewGraph("diamond", []harmonia.Process{root, left, right, join},
		[]harmonia.Edge{a, b, c, c2, d})
	require.NoError(t, err)

	return diamond{graph: g, a: a, b: b, c: c, c2: c2, d: d, root: root, left: left, right: right, j: join}
}

// TestDiamondCompilesThreeLayers covers scenario 2 of §8.
func TestDiamondCompilesThreeLayers(t *testing.T) {
	dm := buildDiamond(t)

	cg, err := engine.Compile("diamond", dm.graph)
	require.NoError(t, err)
	require.Len(t, cg.Order, 3)

	assert.Equal(t, []harmonia.Process{dm.root}, cg.Order[0].Processes)
	assert.Equal(t, []harmonia.Process{dm.left, dm.right}, cg.Order[1].Processes)
	assert.Equal(t, []harmonia.Process{dm.j}, cg.Order[2].Processes)
}

// TestSubGraphExtraction covers scenario 5 of §8: bounding inputs=[B],
// outputs=[D] excludes root (its output B is now a boundary input).
func TestSubGraphExtraction(t *testing.T) {
	dm := buildDiamond(t)

	cg, err := engine.CompileGraph("diamond-sub", dm.graph,
		[]harmonia.Edge{dm.b}, []harmonia.Edge{dm.c, dm.c2}, []harmonia.Edge{dm.d})
	require.NoError(t, err)
	require.Len(t, cg.Order, 2)

	assert.Equal(t, []harmonia.Process{dm.left, dm.right}, cg.Order[0].Processes)
	assert.Equal(t, []harmonia.Process{dm.j}, cg.Order[1].Processes)
	assert.Equal(t, cg.TotalProcesses(), 3)
}

// TestCompileIsDeterministic covers the determinism invariant of §8: two
// compilations of the same graph produce identical (byte-equal after
// serialization) CompiledGraphs.
func TestCompileIsDeterministic(t *testing.T) {
	dm := buildDiamond(t)

	first, err := engine.Compile("diamond", dm.graph)
	require.NoError(t, err)
	second, err := engine.Compile("diamond", dm.graph)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompileCoversEveryProcessExactlyOnce(t *testing.T) {
	dm := buildDiamond(t)

	cg, err := engine.Compile("diamond", dm.graph)
	require.NoError(t, err)
	require.NoError(t, cg.Validate())
	assert.Equal(t, len(dm.graph.Processes), cg.TotalProcesses())
}

func TestIncoherentBoundaryFails(t *testing.T) {
	dm := buildDiamond(t)

	// Boundary omits B entirely: join qualifies (its inputs C,C2 and output
	// D both lie within the declared middle/outputs) but nothing ever
	// produces C or C2, so the first layer can never become non-empty.
	_, err := engine.CompileGraph("bad", dm.graph,
		[]harmonia.Edge{dm.a}, []harmonia.Edge{dm.c, dm.c2}, []harmonia.Edge{dm.d})
	require.Error(t, err)
	var domainErr *harmonia.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, harmonia.ErrCodeGraphStructure, domainErr.Code)
}
