// Package diag provides structured diagnostics for the incremental view
// maintenance engine's error taxonomy (compilation errors, runtime
// invariant violations, downstream/async-load/cleanup failures).
//
// Diagnostics are organized by [CodeCategory], carry a stable [Code] for
// programmatic matching independent of message text, and are accumulated
// by a [Collector] into an immutable [Result]. This separates "the kind of
// failure" (a Code, stable across releases) from "what a human should read"
// (the message), matching the rest of the engine's habit of dispatching on
// small closed enumerations rather than error string matching.
//
// Not every engine failure goes through diag: programmer errors (nil
// receivers, nil contexts) are reported as ordinary sentinel Go errors
// (see each package's errors.go) because they should never be inspected
// structurally by a caller - they indicate a bug, not a data condition.
package diag
