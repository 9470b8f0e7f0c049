// Package compile translates a [ir.Query] into a compiled [Pipeline]: a
// [dataflow.Graph] plus the bookkeeping the coordinator needs to drive it
// (per-alias input nodes, pushed-down where clauses, the alias ->
// collection-id map, join active/lazy classification, and order-by index
// hints) (§4.4).
//
// Compile-time errors (§4.4 "Error conditions", §7.2) are reported through
// a [diag.Result] rather than a Go error, so a single Compile call can
// surface every problem in a malformed query at once instead of stopping
// at the first one.
package compile
