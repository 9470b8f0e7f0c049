package dataflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/simon-lentz/ivm/internal/trace"
)

// NodeID identifies an operator within a [Graph]. The zero NodeID never
// refers to a real node; builder methods start numbering at 1.
type NodeID int

// node is the operator contract every built-in operator implements.
// step is called at most once per [Graph.Run], in the order the node was
// registered, which is always after every node it reads from (builder
// methods take already-built NodeIDs as arguments, so registration order
// is a topological order by construction).
type node interface {
	step(ctx context.Context, g *Graph) (*Delta, error)
}

// Graph is a dataflow operator DAG (§4.3). Graph is NOT safe for
// concurrent building; the query compiler builds one Graph per compiled
// pipeline on a single goroutine. [Graph.Run] and [Graph.Append] ARE
// safe to call from multiple goroutines, guarded by an internal mutex,
// matching the teacher's graph.Graph concurrency contract.
type Graph struct {
	cfg *graphConfig
	mu  sync.Mutex

	nodes   []node
	outputs []*Delta // outputs[id-1] is node id's emission from the most recent Run

	inputs      map[NodeID]*inputNode
	aliasInputs map[string]NodeID
}

// New returns an empty Graph.
func New(opts ...GraphOption) *Graph {
	cfg := &graphConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Graph{
		cfg:         cfg,
		inputs:      make(map[NodeID]*inputNode),
		aliasInputs: make(map[string]NodeID),
	}
}

// register appends n as the next node and returns its id.
func (g *Graph) register(n node) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes))
}

// output returns the delta the given node emitted during the tick
// currently being run. Called by downstream nodes' step methods.
func (g *Graph) output(id NodeID) *Delta {
	if int(id) < 1 || int(id) > len(g.outputs) {
		return NewDelta()
	}
	d := g.outputs[id-1]
	if d == nil {
		return NewDelta()
	}
	return d
}

// Input registers a new input node for alias and returns its id. Deltas
// for alias are deposited with [Graph.Append].
func (g *Graph) Input(alias string) NodeID {
	in := &inputNode{pending: NewDelta()}
	id := g.register(in)
	g.inputs[id] = in
	g.aliasInputs[alias] = id
	return id
}

// InputByAlias returns the NodeID previously returned by Input(alias),
// and false if no such input was registered.
func (g *Graph) InputByAlias(alias string) (NodeID, bool) {
	id, ok := g.aliasInputs[alias]
	return id, ok
}

// Append deposits delta into alias's input buffer without running the
// graph (§4.7: transaction-scoped batching relies on this).
func (g *Graph) Append(alias string, delta *Delta) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := g.aliasInputs[alias]
	if !ok {
		return
	}
	g.inputs[id].pending.Extend(delta)
}

// HasPendingWork reports whether any input has buffered deltas waiting
// for the next Run.
func (g *Graph) HasPendingWork() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, in := range g.inputs {
		if in.pending.Len() > 0 {
			return true
		}
	}
	return false
}

// Run steps every node once, in registration order, propagating this
// tick's deltas from each node to its downstream readers. Run drains all
// input buffers, so after Run returns, [Graph.HasPendingWork] is false
// until more deltas are appended.
func (g *Graph) Run(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	op := trace.Begin(ctx, g.cfg.logger, "ivm.dataflow.run", slog.Int("nodes", len(g.nodes)))
	var err error
	defer func() { op.End(err) }()

	g.outputs = make([]*Delta, len(g.nodes))
	for i, n := range g.nodes {
		var d *Delta
		d, err = n.step(ctx, g)
		if err != nil {
			return err
		}
		g.outputs[i] = d
	}
	return nil
}
