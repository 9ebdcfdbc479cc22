package harmonia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
)

func TestNewEdge_ClassifiesLocal(t *testing.T) {
	e, err := harmonia.NewEdge("file://./{version}/mid")
	require.NoError(t, err)
	assert.True(t, e.IsLocal())
}

func TestNewEdge_ClassifiesGeneric(t *testing.T) {
	e, err := harmonia.NewEdge("s3://bucket/{version}/key")
	require.NoError(t, err)
	assert.False(t, e.IsLocal())

	e2, err := harmonia.NewEdge("file://./no-version-token")
	require.NoError(t, err)
	assert.False(t, e2.IsLocal())
}

func TestNewEdge_RejectsMissingScheme(t *testing.T) {
	_, err := harmonia.NewEdge("no-scheme-here")
	require.Error(t, err)
	var domainErr *harmonia.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, harmonia.ErrCodeInvalidInput, domainErr.Code)
}

func TestEdge_ExistsNonLocalAlwaysTrue(t *testing.T) {
	e, err := harmonia.NewEdge("s3://bucket/{version}/key")
	require.NoError(t, err)
	assert.True(t, e.Exists("v1"))
}

func TestEdge_ExistsLocalObservesFilesystem(t *testing.T) {
	dir := t.TempDir()
	e, err := harmonia.NewEdge("file://" + dir + "/{version}/out.txt")
	require.NoError(t, err)
	assert.False(t, e.Exists("v1"))
}

func TestEdge_EqualityIsURIString(t *testing.T) {
	a, _ := harmonia.NewEdge("file://./{version}/x")
	b, _ := harmonia.NewEdge("file://./{version}/x")
	assert.True(t, a.Equal(b))
}

func TestSortEdges_TotalOrder(t *testing.T) {
	b, _ := harmonia.NewEdge("file://./{version}/b")
	a, _ := harmonia.NewEdge("file://./{version}/a")
	sorted := harmonia.SortEdges([]harmonia.Edge{b, a})
	require.Len(t, sorted, 2)
	assert.Equal(t, a.URI, sorted[0].URI)
	assert.Equal(t, b.URI, sorted[1].URI)
}
