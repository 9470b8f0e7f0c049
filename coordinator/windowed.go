package coordinator

import (
	"context"
	"sync"

	"github.com/simon-lentz/ivm/compile"
	"github.com/simon-lentz/ivm/dataflow"
	"github.com/simon-lentz/ivm/diag"
	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/source"
	"github.com/simon-lentz/ivm/txscope"
)

// acceptAll is the no-op [source.FieldIndex.Take] filter for a windowed
// subscription with no alias-local predicate to apply during the walk.
func acceptAll(immutable.Row) bool { return true }

// windowedState tracks the one order-by-by-index alias a pipeline may
// carry (§4.4 "Order-by-by-index", §4.6.3 flavor 3 "Ordered (windowed)"):
// the field index it was seeded from, the last key taken from that
// index, and whether a LoadSubset refill is currently outstanding.
type windowedState struct {
	alias string
	plan  *compile.OrderByPlan
	coll  source.Collection

	mu      sync.Mutex
	lastKey string
	loading bool
}

// startWindowed seeds alias's initial window directly from its field
// index instead of subscribing to the collection's full current state,
// so only [Offset, Offset+Limit) worth of rows ever crosses the
// Collection boundary up front (§4.5). It only takes this fast path when
// the order-by column is ascending, has a maintained index, and carries
// no alias-local predicate - a descending sort, a missing index, or a
// pushed-down where clause all fall back to the ordinary eager
// subscription, since [source.FieldIndex.Take] walks index order with no
// reverse-iteration or predicate-evaluation hook of its own.
func (c *Coordinator) startWindowed(alias string, plan *compile.OrderByPlan, coll source.Collection) source.SubscribeOptions {
	if plan.Descending {
		return c.eagerSubscribeOptions(alias)
	}
	if _, hasWhere := c.pipeline.WhereClauses[alias]; hasWhere {
		return c.eagerSubscribeOptions(alias)
	}
	idx, ok := coll.Index(plan.Field)
	if !ok {
		return c.eagerSubscribeOptions(alias)
	}

	want := plan.Offset + plan.Limit
	delta := dataflow.NewDelta()
	var lastKey string
	for key, row := range idx.Take(want, "", acceptAll) {
		delta.Insert(dataflow.Entry{Key: key, Value: row}, 1)
		lastKey = key
	}
	if delta.Len() > 0 {
		c.pipeline.Graph.Append(alias, delta)
	}

	w := &windowedState{alias: alias, plan: plan, coll: coll, lastKey: lastKey}
	c.mu.Lock()
	c.windowed = w
	c.mu.Unlock()

	return source.SubscribeOptions{IncludeInitialState: false}
}

// eagerSubscribeOptions is the fallback subscription this live query
// would have used had wireOrderBy never recorded an [OrderByPlan] - a
// full current-state burst plus any pushdown where clause (§4.4, §4.6.3
// flavor 1).
func (c *Coordinator) eagerSubscribeOptions(alias string) source.SubscribeOptions {
	opts := source.SubscribeOptions{IncludeInitialState: true}
	if where, ok := c.pipeline.WhereClauses[alias]; ok {
		opts.WhereExpression = where
	}
	return opts
}

// maybeLoadMore runs after every tick's output and asks whether the
// windowed alias's live window has fallen short of [Offset, Offset+Limit)
// - e.g. the index-seeded rows were filtered downstream by a joined
// predicate the index could not see. A shortfall triggers exactly one
// outstanding LoadSubset refill at a time (loading guards re-entry from
// the next tick's check while one is already in flight).
func (c *Coordinator) maybeLoadMore() {
	c.mu.Lock()
	w := c.windowed
	c.mu.Unlock()
	if w == nil || w.plan.WindowSize == nil {
		return
	}

	want := w.plan.Offset + w.plan.Limit
	w.mu.Lock()
	if w.loading {
		w.mu.Unlock()
		return
	}
	size := w.plan.WindowSize()
	if size >= want {
		w.mu.Unlock()
		return
	}
	need := want - size
	w.loading = true
	w.mu.Unlock()

	go c.loadMoreSubset(w, need)
}

// loadMoreSubset fills a windowed alias's shortfall (§4.5
// "loadMoreIfNeeded", §5/§7.5's LoadSubset suspension contract): the live
// query moves to loadingSubset for the duration of the async fetch, the
// source is asked to materialize need more matching rows via LoadSubset,
// and on success the field index is re-walked from the last key this
// coordinator has already taken so only the newly materialized rows are
// appended to the graph.
func (c *Coordinator) loadMoreSubset(w *windowedState, need int) {
	defer func() {
		w.mu.Lock()
		w.loading = false
		w.mu.Unlock()
	}()

	c.transition(source.StatusLoadingSubset)
	defer c.transition(source.StatusReady)

	limit := need
	ready, done := w.coll.LoadSubset(context.Background(), source.LoadSubsetOptions{
		Where:        c.pipeline.WhereClauses[w.alias],
		Limit:        &limit,
		OrderBy:      w.plan.Terms,
		Subscription: w.alias,
	})
	if !ready {
		if done == nil {
			return
		}
		if err := <-done; err != nil {
			c.fail(diag.NewIssue(diag.Error, diag.EInternal, err.Error()).WithAlias(w.alias).Build())
			return
		}
	}

	idx, ok := w.coll.Index(w.plan.Field)
	if !ok {
		return
	}
	w.mu.Lock()
	from := w.lastKey
	w.mu.Unlock()

	delta := dataflow.NewDelta()
	var newLast string
	for key, row := range idx.Take(need, from, acceptAll) {
		delta.Insert(dataflow.Entry{Key: key, Value: row}, 1)
		newLast = key
	}
	if delta.Len() == 0 {
		return
	}

	w.mu.Lock()
	w.lastKey = newLast
	w.mu.Unlock()

	c.pipeline.Graph.Append(w.alias, delta)
	txID := txscope.NewContextID()
	c.scheduler.Enqueue(txID, func(runCtx context.Context) error {
		return c.runIfPending(runCtx)
	})
	if err := c.scheduler.Flush(context.Background(), txID); err != nil {
		c.fail(diag.NewIssue(diag.Error, diag.EInternal, err.Error()).WithAlias(w.alias).Build())
	}
}
