// Package applog implements the ambient, control-plane logger used by
// cmd/harmonia and the infrastructure packages that wire it — distinct
// from internal/infrastructure/runlog's per-run, per-node data-plane log
// providers. Grounded on the teacher's internal/infrastructure/logging.
package applog

import (
	"context"

	"github.com/google/uuid"
)

type correlationIDKey struct{}

// WithCorrelationID attaches id to ctx so downstream log calls are
// correlated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID extracts the correlation ID from ctx, or "" if none was
// set.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateCorrelationID produces a new UUIDv4 string for a CLI invocation.
// Uses google/uuid rather than the teacher's hand-rolled crypto/rand
// implementation (see DESIGN.md).
func GenerateCorrelationID() string {
	return uuid.NewString()
}
