package dataflow

import (
	"context"
	"iter"

	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/index"
)

// FoldFunc computes a group's result row from its member (row,
// multiplicity) pairs (§4.3: "applies a user-supplied fold over (V,m)*
// to produce (K, R, m)").
type FoldFunc func(key string, group iter.Seq2[immutable.Row, int64]) immutable.Row

type reduceNode struct {
	src   NodeID
	keyOf KeyFunc
	fold  FoldFunc

	grouped *index.Index[string, immutable.Row]
	// lastResult holds the most recently emitted result row per key, so a
	// group whose membership changed can retract its stale result before
	// emitting the recomputed one.
	lastResult map[string]immutable.Row
}

// Reduce registers a groupBy operator: rows are grouped by keyOf into
// the hybrid index (§4.2), then fold recomputes a key's result row from
// scratch whenever that key's group changes this tick. Reduce is
// non-incremental per group (the fold always walks the group's current
// full membership) but only re-folds groups that actually changed.
func (g *Graph) Reduce(src NodeID, keyOf KeyFunc, fold FoldFunc) NodeID {
	return g.register(&reduceNode{
		src: src, keyOf: keyOf, fold: fold,
		grouped:    index.New[string](rowHashValue),
		lastResult: make(map[string]immutable.Row),
	})
}

func (n *reduceNode) step(_ context.Context, g *Graph) (*Delta, error) {
	in := g.output(n.src)
	out := NewDelta()

	changed := map[string]bool{}
	for e, m := range in.Iter() {
		key := n.keyOf(e.Value)
		if err := n.grouped.Add(key, e.Value, m); err != nil {
			return nil, err
		}
		changed[key] = true
	}

	for key := range changed {
		if prev, ok := n.lastResult[key]; ok {
			out.Insert(Entry{Key: key, Value: prev}, -1)
			delete(n.lastResult, key)
		}
		if !n.grouped.Has(key) {
			continue
		}
		result := n.fold(key, n.grouped.Get(key))
		n.lastResult[key] = result
		out.Insert(Entry{Key: key, Value: result}, 1)
	}

	return out.Consolidate(), nil
}
