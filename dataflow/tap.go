package dataflow

import "context"

// TapFunc observes each entry of a tick's delta without altering the
// stream. Neither the compiler nor the coordinator registers a tap;
// lazy key loading observes join-key values in the coordinator's
// subscription callbacks instead.
type TapFunc func(key string, mult int64)

type tapNode struct {
	src NodeID
	f   TapFunc
}

// Tap registers a pass-through operator that calls f once per entry,
// then forwards src's delta unchanged.
func (g *Graph) Tap(src NodeID, f TapFunc) NodeID {
	return g.register(&tapNode{src: src, f: f})
}

func (n *tapNode) step(_ context.Context, g *Graph) (*Delta, error) {
	in := g.output(n.src)
	for e, m := range in.Iter() {
		n.f(e.Key, m)
	}
	return in, nil
}

// SinkFunc receives the terminal delta of each tick. delta.Len() == 0 is
// a valid, meaningful call (it means "nothing changed this tick").
type SinkFunc func(delta *Delta)

type outputNode struct {
	src  NodeID
	sink SinkFunc
}

// Output registers the terminal operator of a pipeline: every tick, the
// coordinator's sink receives src's emitted delta (§4.3: "hands a
// MultiSet<(K,V)> to the coordinator for application").
func (g *Graph) Output(src NodeID, sink SinkFunc) NodeID {
	return g.register(&outputNode{src: src, sink: sink})
}

func (n *outputNode) step(_ context.Context, g *Graph) (*Delta, error) {
	d := g.output(n.src)
	n.sink(d)
	return d, nil
}
