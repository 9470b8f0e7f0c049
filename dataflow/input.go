package dataflow

import "context"

// inputNode is the source of deltas for one collection alias. Deposits
// via [Graph.Append] accumulate in pending until the next [Graph.Run],
// which drains pending as this node's emission and leaves it empty for
// the next transaction's deposits.
type inputNode struct {
	pending *Delta
}

func (n *inputNode) step(_ context.Context, _ *Graph) (*Delta, error) {
	emitted := n.pending
	n.pending = NewDelta()
	return emitted, nil
}
