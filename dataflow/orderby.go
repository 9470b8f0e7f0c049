package dataflow

import (
	"context"
	"sort"

	"github.com/simon-lentz/ivm/fracindex"
	"github.com/simon-lentz/ivm/ids"
	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/internal/collate"
)

// ExtractFunc pulls the sort value out of a row.
type ExtractFunc func(row immutable.Row) any

// LessFunc reports whether a sorts before b. A nil LessFunc defaults to
// [internal/collate.ValueOrder], which is sufficient for any comparable
// scalar column.
type LessFunc func(a, b any) bool

// FractionalIndexField is the row field [Graph.OrderByWithFractionalIndex]
// writes the assigned [fracindex.Key] into, carried alongside the row's
// own fields in the operator's output (§4.5: "Output: (K, (V,
// fractional_index))").
const FractionalIndexField = "$fracIndex"

type orderByNode struct {
	src       NodeID
	extractor ExtractFunc
	less      LessFunc
	window    ids.Window

	setSizeCallback     func(func() int)
	setSizeCallbackDone bool

	live         map[string]immutable.Row
	cache        map[string]immutable.Row
	mult         map[string]int64
	prevWindow   []string
	prevAssigned map[string]fracindex.Key
	windowSize   int
}

// OrderByOptions configures [Graph.OrderByWithFractionalIndex].
type OrderByOptions struct {
	Offset          int
	Limit           int
	Less            LessFunc
	SetSizeCallback func(func() int)
}

// OrderByWithFractionalIndex registers the windowed top-K operator
// (§4.5). It maintains every live row keyed by its original row key,
// re-derives the window [Offset, Offset+Limit) by sorting the live set
// every tick (the engine does not maintain an incremental order
// statistic tree; correctness does not depend on it, only the constant
// factor), and emits a retraction followed by an insertion for every row
// whose fractional index changed since the previous tick.
func (g *Graph) OrderByWithFractionalIndex(src NodeID, extractor ExtractFunc, opts OrderByOptions) NodeID {
	less := opts.Less
	if less == nil {
		less = func(a, b any) bool {
			c, err := collate.ValueOrder(a, b)
			if err != nil {
				return false
			}
			return c < 0
		}
	}
	return g.register(&orderByNode{
		src: src, extractor: extractor, less: less,
		window:          ids.NewWindow(opts.Offset, opts.Limit),
		setSizeCallback: opts.SetSizeCallback,
		live:            make(map[string]immutable.Row),
		cache:           make(map[string]immutable.Row),
		mult:            make(map[string]int64),
		prevAssigned:    make(map[string]fracindex.Key),
	})
}

func (n *orderByNode) step(_ context.Context, g *Graph) (*Delta, error) {
	in := g.output(n.src)
	for e, m := range in.Iter() {
		n.cache[e.Key] = e.Value
		n.mult[e.Key] += m
		if n.mult[e.Key] <= 0 {
			delete(n.live, e.Key)
			delete(n.mult, e.Key)
			continue
		}
		n.live[e.Key] = e.Value
	}

	keys := make([]string, 0, len(n.live))
	for k := range n.live {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		vi, vj := n.extractor(n.live[keys[i]]), n.extractor(n.live[keys[j]])
		if n.less(vi, vj) {
			return true
		}
		if n.less(vj, vi) {
			return false
		}
		return keys[i] < keys[j]
	})

	end := n.window.End()
	if end > len(keys) {
		end = len(keys)
	}
	var window []string
	if n.window.Offset < end {
		window = keys[n.window.Offset:end]
	}
	n.windowSize = len(window)

	if n.setSizeCallback != nil && !n.setSizeCallbackDone {
		n.setSizeCallback(func() int { return n.windowSize })
		n.setSizeCallbackDone = true
	}

	newAssigned := make(map[string]fracindex.Key, len(window))
	if len(window) > 0 {
		for i, k := range fracindex.Sequence(len(window)) {
			newAssigned[window[i]] = k
		}
	}

	out := NewDelta()
	for _, k := range window {
		if old, ok := n.prevAssigned[k]; !ok || old != newAssigned[k] {
			if ok {
				out.Insert(n.taggedEntry(k, n.live[k], old), -1)
			}
			out.Insert(n.taggedEntry(k, n.live[k], newAssigned[k]), 1)
		}
	}
	for _, k := range n.prevWindow {
		if _, stillIn := newAssigned[k]; !stillIn {
			out.Insert(n.taggedEntry(k, n.cache[k], n.prevAssigned[k]), -1)
		}
	}

	n.prevWindow = window
	n.prevAssigned = newAssigned
	return out.Consolidate(), nil
}

func (n *orderByNode) taggedEntry(key string, row immutable.Row, fi fracindex.Key) Entry {
	fields := row.Clone()
	if fields == nil {
		fields = map[string]any{}
	}
	fields[FractionalIndexField] = fi.String()
	return Entry{Key: key, Value: immutable.WrapRowClone(fields, row.Key().Clone())}
}
