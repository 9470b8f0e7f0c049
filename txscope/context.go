package txscope

import "context"

type contextIDKeyType struct{}

var contextIDKey contextIDKeyType

// WithContextID returns a context carrying id, retrievable via
// [ContextIDFrom]. A source collection threads this through its own
// transaction context so every collection it mutates within one
// transaction calls back with the same id (§9: "a value threaded through
// the source collections' transaction context"), mirroring
// [github.com/simon-lentz/ivm/internal/trace.WithRequestID], which
// carries the same id into log lines emitted while a flush runs.
func WithContextID(ctx context.Context, id ContextID) context.Context {
	return context.WithValue(ctx, contextIDKey, id)
}

// ContextIDFrom returns the context id stored in ctx, if any.
func ContextIDFrom(ctx context.Context) (ContextID, bool) {
	id, ok := ctx.Value(contextIDKey).(ContextID)
	return id, ok && id != ""
}
