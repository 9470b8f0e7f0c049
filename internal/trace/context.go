package trace

import "context"

type requestIDKeyType struct{}

var requestIDKey requestIDKeyType

// WithRequestID returns a context carrying id, retrievable via
// [RequestIDFrom]. Used by the coordinator to thread a transaction context
// id (§4.7) through to every log line an operator emits while servicing
// that transaction's flush.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}
