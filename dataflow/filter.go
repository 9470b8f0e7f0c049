package dataflow

import (
	"context"

	"github.com/simon-lentz/ivm/immutable"
)

// Predicate reports whether a row should pass a filter operator.
type Predicate func(key string, row immutable.Row) bool

type filterNode struct {
	src  NodeID
	pred Predicate
}

// Filter registers an operator that keeps only entries of src for which
// pred returns true, preserving their multiplicities (§4.3).
func (g *Graph) Filter(src NodeID, pred Predicate) NodeID {
	return g.register(&filterNode{src: src, pred: pred})
}

func (n *filterNode) step(_ context.Context, g *Graph) (*Delta, error) {
	in := g.output(n.src)
	out := NewDelta()
	for e, m := range in.Iter() {
		if n.pred(e.Key, e.Value) {
			out.Insert(e, m)
		}
	}
	return out, nil
}

type negateNode struct {
	src NodeID
}

// Negate registers an operator that flips the sign of every entry's
// multiplicity, used to build a retraction stream from an insertion
// stream (e.g. computing a set difference as A + negate(B)).
func (g *Graph) Negate(src NodeID) NodeID {
	return g.register(&negateNode{src: src})
}

func (n *negateNode) step(_ context.Context, g *Graph) (*Delta, error) {
	return g.output(n.src).Negate(), nil
}

type consolidateNode struct {
	src NodeID
}

// Consolidate registers an operator that sums multiplicities for
// equal-hash entries within a single tick's delta and drops net-zero
// results (§4.3).
func (g *Graph) Consolidate(src NodeID) NodeID {
	return g.register(&consolidateNode{src: src})
}

func (n *consolidateNode) step(_ context.Context, g *Graph) (*Delta, error) {
	return g.output(n.src).Consolidate(), nil
}
