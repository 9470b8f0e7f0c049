package dataflow

import (
	"context"

	"github.com/simon-lentz/ivm/immutable"
)

// MapFunc transforms a row, optionally changing its key (used by the
// join operator to assemble the composite post-join key).
type MapFunc func(key string, row immutable.Row) (string, immutable.Row)

type mapNode struct {
	src NodeID
	f   MapFunc
}

// Map registers an operator that applies f to every entry of src,
// one-for-one, preserving multiplicities (§4.3).
func (g *Graph) Map(src NodeID, f MapFunc) NodeID {
	return g.register(&mapNode{src: src, f: f})
}

func (n *mapNode) step(_ context.Context, g *Graph) (*Delta, error) {
	in := g.output(n.src)
	out := NewDelta()
	for e, m := range in.Iter() {
		k, v := n.f(e.Key, e.Value)
		out.Insert(Entry{Key: k, Value: v}, m)
	}
	return out, nil
}
