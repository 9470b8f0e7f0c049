package dataflow

import (
	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/mset"
)

// Entry is one (key, row) pair as it flows through the graph.
type Entry = mset.KV[string, immutable.Row]

// Delta is a signed-multiplicity batch of entries moving between
// operators in a single tick.
type Delta = mset.MultiSet[Entry]

// rowHash is the content hash used by every Delta in the graph: entries
// are equal when their key and row both are, so two inserts of the same
// (key, row) consolidate instead of double-counting.
var rowHash = mset.HashKV[string](func(r immutable.Row) string { return r.CanonicalString() })

// NewDelta returns an empty Delta using the graph's standard row hash.
func NewDelta() *Delta {
	return mset.New(rowHash)
}
