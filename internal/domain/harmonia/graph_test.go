package harmonia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
)

func mustEdge(t *testing.T, u string) harmonia.Edge {
	t.Helper()
	e, err := harmonia.NewEdge(u)
	require.NoError(t, err)
	return e
}

func mustNode(t *testing.T, name string) harmonia.Node {
	t.Helper()
	factory, err := harmonia.NewLogProviderFactoryRef("file://./logs/{version}/{name}.log")
	require.NoError(t, err)
	n, err := harmonia.NewNode(name, []string{"true"}, factory)
	require.NoError(t, err)
	return n
}

func mustProcess(t *testing.T, name string, inputs, outputs []harmonia.Edge) harmonia.Process {
	t.Helper()
	p, err := harmonia.NewProcess(mustNode(t, name), inputs, outputs, nil, nil)
	require.NoError(t, err)
	return p
}

// TestTwoStageLinearPipeline covers scenario 1 of §8.
func TestTwoStageLinearPipeline(t *testing.T) {
	a := mustEdge(t, "file://./in")
	b := mustEdge(t, "file://./{version}/mid")
	c := mustEdge(t, "file://./{version}/out")

	p1 := mustProcess(t, "p1", []harmonia.Edge{a}, []harmonia.Edge{b})
	p2 := mustProcess(t, "p2", []harmonia.Edge{b}, []harmonia.Edge{c})

	g, err := harmonia.NewGraph("linear", []harmonia.Process{p1, p2}, []harmonia.Edge{a, b, c})
	require.NoError(t, err)

	inputs, middle, outputs, err := g.FullIO()
	require.NoError(t, err)
	assert.Equal(t, []harmonia.Edge{a}, inputs)
	assert.Equal(t, []harmonia.Edge{b}, middle)
	assert.Equal(t, []harmonia.Edge{c}, outputs)
}

// TestMultiWriterRejection covers scenario 3 of §8.
func TestMultiWriterRejection(t *testing.T) {
	x := mustEdge(t, "file://./{version}/x")
	a := mustEdge(t, "file://./a")
	b := mustEdge(t, "file://./b")

	p1 := mustProcess(t, "writer-one", []harmonia.Edge{a}, []harmonia.Edge{x})
	p2 := mustProcess(t, "writer-two", []harmonia.Edge{b}, []harmonia.Edge{x})

	_, err := harmonia.NewGraph("conflict", []harmonia.Process{p1, p2}, []harmonia.Edge{a, b, x})
	require.Error(t, err)
	var domainErr *harmonia.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, harmonia.ErrCodeGraphStructure, domainErr.Code)
	assert.Equal(t, x.URI, domainErr.Context["edge"])
}

// TestDisconnectedRejection covers scenario 4 of §8.
func TestDisconnectedRejection(t *testing.T) {
	a := mustEdge(t, "file://./a")
	b := mustEdge(t, "file://./b")
	c := mustEdge(t, "file://./c")
	d := mustEdge(t, "file://./d")

	p1 := mustProcess(t, "p1", []harmonia.Edge{a}, []harmonia.Edge{b})
	p2 := mustProcess(t, "p2", []harmonia.Edge{c}, []harmonia.Edge{d})

	_, err := harmonia.NewGraph("split", []harmonia.Process{p1, p2}, []harmonia.Edge{a, b, c, d})
	require.Error(t, err)
	var domainErr *harmonia.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, harmonia.ErrCodeGraphStructure, domainErr.Code)
}

func TestProcessRequiresOutputEdges(t *testing.T) {
	node := mustNode(t, "no-output")
	_, err := harmonia.NewProcess(node, nil, nil, nil, nil)
	require.Error(t, err)
	var domainErr *harmonia.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, harmonia.ErrCodeInvalidInput, domainErr.Code)
}

// buildDiamond constructs the diamond graph from scenario 2 / 5 of §8:
// root A->B, left B->C, right B->C2, join (C,C2)->D.
func buildDiamond(t *testing.T) (harmonia.Graph, map[string]harmonia.Edge) {
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
	return g, map[string]harmonia.Edge{"a": a, "b": b, "c": c, "c2": c2, "d": d}
}

func TestDiamondFullIO(t *testing.T) {
	g, edges := buildDiamond(t)
	inputs, middle, outputs, err := g.FullIO()
	require.NoError(t, err)
	assert.Equal(t, []harmonia.Edge{edges["a"]}, inputs)
	assert.ElementsMatch(t, []harmonia.Edge{edges["b"], edges["c"], edges["c2"]}, middle)
	assert.Equal(t, []harmonia.Edge{edges["d"]}, outputs)
}
