// Package actor identifies the user performing an action. Actor IDs come from
// the external auth gateway and are used for audit attribution on the
// threshold store (created_by/updated_by) and sync runs.
package actor

import (
	"context"
)

// SystemID is the actor recorded for system-initiated operations such as
// scheduled sync runs.
const SystemID int64 = 1

type contextKey string

const actorContextKey contextKey = "actor_id"

// FromContext retrieves the actor ID from the context. The second return
// value reports whether an actor is present.
func FromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(actorContextKey).(int64)
	return id, ok
}

// WithActor returns a new context with the actor ID attached.
func WithActor(ctx context.Context, id int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, id)
}

// OrSystem returns the actor from the context, or SystemID when none is set.
func OrSystem(ctx context.Context) int64 {
	if id, ok := FromContext(ctx); ok {
		return id
	}
	return SystemID
}
