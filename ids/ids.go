package ids

import "sync/atomic"

// OperatorID identifies a single operator within a dataflow graph.
//
// OperatorID is unique within one graph instance only; graphs are rebuilt
// on every re-subscription (§3, graphs are single-shot once finalized), so
// IDs are not stable across graph rebuilds.
type OperatorID uint64

// StreamID identifies a single difference stream (edge) within a graph.
type StreamID uint64

// Sequence generates monotonically increasing OperatorID/StreamID values
// for one graph. The zero value is ready to use; Sequence is safe for
// concurrent use even though the engine itself is single-threaded, so
// that tests may allocate IDs from goroutines without coordination.
type Sequence struct {
	nextOp     atomic.Uint64
	nextStream atomic.Uint64
}

// NextOperator returns the next unused OperatorID, starting at 1. Zero is
// reserved to mean "no operator" so callers can use the zero value of
// OperatorID as a sentinel.
func (s *Sequence) NextOperator() OperatorID {
	return OperatorID(s.nextOp.Add(1))
}

// NextStream returns the next unused StreamID, starting at 1.
func (s *Sequence) NextStream() StreamID {
	return StreamID(s.nextStream.Add(1))
}
