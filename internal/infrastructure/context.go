package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// EnsureTraceID returns ctx unchanged when it already carries a trace ID.
// Otherwise it attaches a fresh one so log lines from a single CLI run or
// background job can be correlated.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}
