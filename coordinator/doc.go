// Package coordinator implements the live-query coordinator (§4.6): it
// compiles a query once, opens one subscription per alias against the
// [github.com/simon-lentz/ivm/source.Collection] registry the caller
// supplies, routes every subscription's changes into the compiled
// [github.com/simon-lentz/ivm/dataflow.Graph] through the
// [github.com/simon-lentz/ivm/txscope] scheduler, and republishes the
// graph's terminal deltas as insert/update/delete changes on its own
// result-collection-shaped surface.
package coordinator
