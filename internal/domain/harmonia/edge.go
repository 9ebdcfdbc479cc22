package harmonia

import (
	"os"
	"sort"

	"github.com/grochmal/harmonia/internal/domain/uri"
)

// EdgeKind distinguishes a LocalEdge (file:// + {version}) from a Generic
// edge backed by an opaque remote store. The source models this distinction
// via subclassing; here it is a derived field on a single value type so
// that URI-string equality holds regardless of kind.
type EdgeKind int

const (
	EdgeKindGeneric EdgeKind = iota
	EdgeKindLocal
)

// Edge is a named data artifact identified by a templated URI. Edge is
// value-equal and ordered by its URI string. Kind is derived at
// construction time, not chosen by the caller: an Edge whose URI is
// file://-scheme and embeds {version} is automatically a LocalEdge.
type Edge struct {
	URI  string
	Kind EdgeKind
}

// NewEdge validates the URI (must have a scheme) and classifies it. A URI
// that is both file:// and carries a {version} token is classified as
// EdgeKindLocal; anything else is EdgeKindGeneric.
func NewEdge(u string) (Edge, error) {
	if err := uri.HasScheme(u); err != nil {
		return Edge{}, newInvalidInputError("edge uri must have a scheme", err).WithContext("uri", u)
	}
	kind := EdgeKindGeneric
	if uri.IsFileScheme(u) == nil && uri.HasVersion(u) == nil {
		kind = EdgeKindLocal
	}
	return Edge{URI: u, Kind: kind}, nil
}

// IsLocal reports whether the edge is a LocalEdge.
func (e Edge) IsLocal() bool {
	return e.Kind == EdgeKindLocal
}

// BuildURI returns the edge's URI with {version} expanded; any {name}
// token passes through untouched.
func (e Edge) BuildURI(version string) string {
	return uri.ExpandVersion(e.URI, version)
}

// Exists reports whether the edge's backing artifact is present. A
// non-local edge always reports true: the remote store is assumed to
// materialize on demand. A LocalEdge strips the file:// prefix, expands
// {version}, and stats the resulting path.
func (e Edge) Exists(version string) bool {
	if !e.IsLocal() {
		return true
	}
	path := e.BuildURI(version)[len("file://"):]
	_, err := os.Stat(path)
	return err == nil
}

// Equal reports URI-string equality, independent of Kind.
func (e Edge) Equal(other Edge) bool {
	return e.URI == other.URI
}

// Less implements the total order on Edges: lexicographic on URI.
func (e Edge) Less(other Edge) bool {
	return e.URI < other.URI
}

// SortEdges returns a new, URI-sorted copy of edges.
func SortEdges(edges []Edge) []Edge {
	out := append([]Edge(nil), edges...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
