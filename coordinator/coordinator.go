package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/simon-lentz/ivm/compile"
	"github.com/simon-lentz/ivm/dataflow"
	"github.com/simon-lentz/ivm/diag"
	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/internal/trace"
	"github.com/simon-lentz/ivm/ir"
	"github.com/simon-lentz/ivm/source"
	"github.com/simon-lentz/ivm/txscope"
)

// Coordinator is the live-query coordinator (§4.6): it compiles a query
// once, subscribes to every alias's backing [source.Collection], routes
// their changes through a [txscope.Scheduler] into the compiled
// [dataflow.Graph], and republishes the graph's terminal deltas as
// insert/update/delete changes.
type Coordinator struct {
	cfg         *config
	pipeline    *compile.Pipeline
	collections map[string]source.Collection
	scheduler   *txscope.Scheduler

	mu              sync.Mutex
	status          source.Status
	sourceStatus    map[string]source.Status
	statusSubs      map[int]func(source.Change)
	nextStatusSubID int
	resultSubs      map[int]func([]source.ValueChange)
	nextResultSubID int
	unsubChanges    map[string]source.Unsubscribe
	unsubStatus     map[string]source.Unsubscribe
	lazyRequested   map[string]map[string]bool
	lazyRowsLoaded  map[string]map[string]bool
	lastIssue       *diag.Issue
	gcTimer         *time.Timer
	windowed        *windowedState

	runCount   atomic.Int64
	running    atomic.Bool
	everFlowed atomic.Bool
}

// New compiles query and returns a Coordinator ready for [Coordinator.Start].
// collections maps collection id (as named in the query's [ir.CollectionRef]
// nodes) to the [source.Collection] backing it; every leaf alias's
// collection id must have an entry, checked at Start time since
// compile-time validation (§4.4) has no visibility into what the caller
// will eventually supply.
//
// If query fails to compile, New returns (nil, result) with result
// describing every compile error (§4.4); this is the "Compilation errors
// surface synchronously at live-query construction" propagation policy
// (§7).
func New(query *ir.Query, collections map[string]source.Collection, opts ...Option) (*Coordinator, diag.Result) {
	cfg := applyOptions(opts)
	compiler := compile.New(compile.WithLogger(cfg.logger))
	pipeline, result := compiler.Compile(query)
	if pipeline == nil {
		return nil, result
	}

	c := &Coordinator{
		cfg:           cfg,
		pipeline:      pipeline,
		collections:   collections,
		scheduler:     txscope.New(txscope.WithLogger(cfg.logger), txscope.WithBatchLimit(cfg.batchLimit)),
		status:        source.StatusIdle,
		sourceStatus:  map[string]source.Status{},
		statusSubs:    map[int]func(source.Change){},
		resultSubs:    map[int]func([]source.ValueChange){},
		unsubChanges:  map[string]source.Unsubscribe{},
		unsubStatus:   map[string]source.Unsubscribe{},
		lazyRequested:  map[string]map[string]bool{},
		lazyRowsLoaded: map[string]map[string]bool{},
	}
	return c, result
}

// RunCount reports how many times the compiled graph has actually run
// (§6 "utils.getRunCount()"), for tests to assert scheduler coalescing
// (§8: "For an N-collection transaction, the number of graph runs is
// exactly 1").
func (c *Coordinator) RunCount() int64 {
	return c.runCount.Load()
}

// Status reports the live query's current lifecycle status (§3).
func (c *Coordinator) Status() source.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastIssue returns the diagnostic that caused the most recent
// transition into [source.StatusError], or nil if none occurred.
func (c *Coordinator) LastIssue() *diag.Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastIssue
}

// OnStatusChange registers cb to receive this live query's status:change
// events. The returned Unsubscribe detaches cb.
func (c *Coordinator) OnStatusChange(cb func(source.Change)) source.Unsubscribe {
	c.mu.Lock()
	id := c.nextStatusSubID
	c.nextStatusSubID++
	c.statusSubs[id] = cb
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.statusSubs, id)
		c.mu.Unlock()
	}
}

// SubscribeChanges registers cb to receive the live query's own
// insert/update/delete change batches (§6 "Observable contract on the
// result collection"). Subscribing cancels any pending gcTime cleanup
// (§6 "gcTime") armed by a previous subscriber going to zero.
func (c *Coordinator) SubscribeChanges(cb func([]source.ValueChange)) source.Unsubscribe {
	c.mu.Lock()
	id := c.nextResultSubID
	c.nextResultSubID++
	c.resultSubs[id] = cb
	c.stopGCTimerLocked()
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.resultSubs, id)
		if len(c.resultSubs) == 0 {
			c.armGCTimerLocked()
		}
		c.mu.Unlock()
	}
}

// armGCTimerLocked starts the gcTime countdown; called with c.mu held. A
// non-positive gcTime disables garbage collection entirely - the live
// query then lives until the caller explicitly calls [Coordinator.Cleanup].
func (c *Coordinator) armGCTimerLocked() {
	if c.cfg.gcTime <= 0 {
		return
	}
	c.gcTimer = time.AfterFunc(c.cfg.gcTime, c.gcSweep)
}

// stopGCTimerLocked cancels any pending gcTime cleanup; called with c.mu
// held.
func (c *Coordinator) stopGCTimerLocked() {
	if c.gcTimer != nil {
		c.gcTimer.Stop()
		c.gcTimer = nil
	}
}

// gcSweep fires gcTime after the idle duration with zero result
// subscribers; it re-checks the subscriber count before tearing anything
// down, since a subscriber may have arrived between the timer firing and
// this callback running.
func (c *Coordinator) gcSweep() {
	c.mu.Lock()
	idle := len(c.resultSubs) == 0
	c.gcTimer = nil
	c.mu.Unlock()
	if idle {
		trace.Info(context.Background(), c.cfg.logger, "ivm.coordinator.gc_sweep",
			slog.Duration("gc_time", c.cfg.gcTime))
		c.Cleanup()
	}
}

// Flush drains every job and load-more callback queued for txID,
// coalescing the graph runs every collection mutated under txID deposited
// (§4.7). Transaction-driving code external to this module calls Flush
// once every participating collection has routed its changes through the
// same ctx (threaded via [txscope.WithContextID]); Coordinator calls it
// automatically for any change delivered without an embedded context id.
func (c *Coordinator) Flush(ctx context.Context, txID txscope.ContextID) error {
	return c.scheduler.Flush(ctx, txID)
}

// Start wires one subscription per alias (§4.6 steps 2-5) and, if every
// source is already ready, runs the synthetic-empty-commit path so the
// live query reaches ready without waiting on real data.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.status != source.StatusIdle {
		cur := c.status
		c.mu.Unlock()
		return fmt.Errorf("coordinator: Start called from status %s, expected idle", cur)
	}
	c.mu.Unlock()
	c.transition(source.StatusLoading)

	c.pipeline.Graph.Output(c.pipeline.Result, c.handleOutput)

	lazyAliases := c.lazyAliasSet()
	for alias := range c.pipeline.Inputs {
		collectionID := c.pipeline.AliasCollection[alias]
		coll, ok := c.collections[collectionID]
		if !ok {
			issue := diag.NewIssue(diag.Error, diag.EAliasNoInputStream,
				fmt.Sprintf("alias %q resolves to collection %q, which was not supplied", alias, collectionID)).
				WithAlias(alias).Build()
			c.fail(issue)
			return fmt.Errorf("coordinator: %s", issue.Message())
		}

		lazy := lazyAliases[alias]
		var opts source.SubscribeOptions
		switch {
		case lazy:
			opts.IncludeInitialState = false
		case c.pipeline.OrderBy != nil && c.pipeline.OrderBy.Alias == alias:
			opts = c.startWindowed(alias, c.pipeline.OrderBy, coll)
		default:
			opts = c.eagerSubscribeOptions(alias)
		}

		c.unsubChanges[alias] = coll.SubscribeChanges(c.routeChanges(alias, lazy), opts)
		c.unsubStatus[alias] = coll.OnStatusChange(c.routeSourceStatus(alias))
		c.mu.Lock()
		c.sourceStatus[alias] = coll.Status()
		c.mu.Unlock()
	}

	c.checkReady(ctx)
	return nil
}

// Cleanup tears the live query down (§4.6 step 7): unsubscribes from
// every source, after which the compiled graph and pipeline are
// discarded by the caller dropping its reference to this Coordinator
// (graphs are finalized once; a fresh [New]/[Coordinator.Start] is
// required for any subsequent subscription).
func (c *Coordinator) Cleanup() {
	c.mu.Lock()
	unsubChanges := c.unsubChanges
	unsubStatus := c.unsubStatus
	c.unsubChanges = map[string]source.Unsubscribe{}
	c.unsubStatus = map[string]source.Unsubscribe{}
	c.stopGCTimerLocked()
	c.windowed = nil
	c.mu.Unlock()

	for _, u := range unsubChanges {
		u()
	}
	for _, u := range unsubStatus {
		u()
	}
	c.transition(source.StatusCleanedUp)
}

func (c *Coordinator) fail(issue diag.Issue) {
	c.mu.Lock()
	c.lastIssue = &issue
	c.mu.Unlock()
	c.transition(source.StatusError)
}

func (c *Coordinator) transition(to source.Status) {
	c.mu.Lock()
	from := c.status
	if from == to {
		c.mu.Unlock()
		return
	}
	if issue := source.ValidateTransition(from, to); issue != nil {
		c.mu.Unlock()
		return
	}
	c.status = to
	subs := make([]func(source.Change), 0, len(c.statusSubs))
	for _, f := range c.statusSubs {
		subs = append(subs, f)
	}
	c.mu.Unlock()

	change := source.Change{Status: to, PreviousStatus: from}
	trace.Info(context.Background(), c.cfg.logger, "ivm.coordinator.status",
		slog.String("status", string(to)), slog.String("previous_status", string(from)))
	for _, f := range subs {
		f(change)
	}
}

// routeSourceStatus tracks alias's backing collection's status and
// applies the downstream-failure propagation policy (§4.6 step 5, §7.4):
// any source entering error or cleaned-up while depended upon fails the
// live query; otherwise it re-checks whether all sources are now ready.
func (c *Coordinator) routeSourceStatus(alias string) func(source.Change) {
	return func(ch source.Change) {
		c.mu.Lock()
		c.sourceStatus[alias] = ch.Status
		c.mu.Unlock()

		switch ch.Status {
		case source.StatusError:
			c.fail(diag.NewIssue(diag.Error, diag.ESourceEnteredError,
				fmt.Sprintf("source backing alias %q entered error", alias)).WithAlias(alias).Build())
			return
		case source.StatusCleanedUp:
			c.fail(diag.NewIssue(diag.Error, diag.ESourceCleanedUp,
				fmt.Sprintf("source backing alias %q was cleaned up while the live query depends on it", alias)).
				WithAlias(alias).Build())
			return
		}
		c.checkReady(context.Background())
	}
}

// checkReady transitions to ready once every source alias reports ready,
// emitting the synthetic empty commit first if no delta has ever flowed
// (§4.6.4).
func (c *Coordinator) checkReady(ctx context.Context) {
	if !c.allSourcesReady() {
		return
	}
	if err := c.emitSyntheticCommitIfNeeded(ctx); err != nil {
		c.fail(diag.NewIssue(diag.Error, diag.EInternal, err.Error()).Build())
		return
	}
	c.transition(source.StatusReady)
}

func (c *Coordinator) allSourcesReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pipeline.Inputs) > 0 && len(c.sourceStatus) < len(c.pipeline.Inputs) {
		return false
	}
	for _, st := range c.sourceStatus {
		if st != source.StatusReady {
			return false
		}
	}
	return true
}

// emitSyntheticCommitIfNeeded runs the graph exactly once, unconditionally
// of pending input, the first time every source is ready with nothing
// ever having flowed - otherwise downstream would never see a tick to
// mark the (empty) result collection ready (§4.6.4).
func (c *Coordinator) emitSyntheticCommitIfNeeded(ctx context.Context) error {
	if c.everFlowed.Load() {
		return nil
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}
	defer c.running.Store(false)

	if err := c.pipeline.Graph.Run(ctx); err != nil {
		return err
	}
	c.runCount.Add(1)
	c.everFlowed.Store(true)
	return nil
}

// routeChanges adapts one alias's source subscription into graph input
// deltas, deposited immediately (§4.7: "without running the graph"), and
// enqueues an idempotent run job for the change's transaction context -
// one fresh [txscope.ContextID] per call when the source did not supply
// one of its own, flushed immediately so a single, non-transactional
// mutation still produces output this tick.
func (c *Coordinator) routeChanges(alias string, lazy bool) source.ChangeFunc {
	return func(ctx context.Context, changes []source.ValueChange) {
		if lazy {
			changes = c.filterLazyChanges(alias, changes)
		} else {
			c.triggerLazyLoads(alias, changes)
		}

		delta := deltaFromChanges(changes)
		c.pipeline.Graph.Append(alias, delta)

		txID, owned := txscope.ContextIDFrom(ctx)
		if !owned {
			txID = txscope.NewContextID()
		}
		c.scheduler.Enqueue(txID, func(runCtx context.Context) error {
			return c.runIfPending(runCtx)
		})
		if !owned {
			if err := c.scheduler.Flush(trace.WithRequestID(ctx, string(txID)), txID); err != nil {
				c.fail(diag.NewIssue(diag.Error, diag.EInternal, err.Error()).WithAlias(alias).Build())
			}
		}
	}
}

// runIfPending runs the graph exactly once if, and only if, an input has
// buffered deltas waiting (§4.6 step 6 "eager execution"). Re-entrant
// calls made while a run is already executing return immediately without
// running (§4.6 step 6's re-entry flag); this, combined with every
// participating alias's job calling runIfPending, is what makes an
// N-collection transaction run the graph exactly once (§8): only the
// first job observes pending work, every job after it finds the input
// buffers already drained.
func (c *Coordinator) runIfPending(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}
	defer c.running.Store(false)

	if !c.pipeline.Graph.HasPendingWork() {
		return nil
	}
	if err := c.pipeline.Graph.Run(ctx); err != nil {
		c.fail(diag.NewIssue(diag.Error, diag.EInternal, err.Error()).Build())
		return err
	}
	c.runCount.Add(1)
	c.everFlowed.Store(true)
	return nil
}

// handleOutput is the [dataflow.Graph.Output] sink for the compiled
// pipeline's terminal node: it renders this tick's delta into
// insert/update/delete changes and republishes them to every
// [Coordinator.SubscribeChanges] subscriber.
func (c *Coordinator) handleOutput(delta *dataflow.Delta) {
	changes := changesFromDelta(delta)
	c.mu.Lock()
	subs := make([]func([]source.ValueChange), 0, len(c.resultSubs))
	for _, f := range c.resultSubs {
		subs = append(subs, f)
	}
	c.mu.Unlock()
	for _, f := range subs {
		f(changes)
	}
	c.maybeLoadMore()
}

// changesFromDelta groups a tick's delta entries by key and renders each
// group into insert/update/delete changes: a key with exactly one
// positive and one negative row becomes an update (§8 scenario 4: "never
// both" a delete+insert and an update for the same net change); any
// other combination becomes one delete per removed row and one insert
// per added row. Keys are rendered in sorted order for deterministic
// output.
func changesFromDelta(delta *dataflow.Delta) []source.ValueChange {
	type group struct {
		pos []dataflowEntry
		neg []dataflowEntry
	}
	groups := map[string]*group{}
	for e, m := range delta.Iter() {
		g := groups[e.Key]
		if g == nil {
			g = &group{}
			groups[e.Key] = g
		}
		switch {
		case m > 0:
			for i := int64(0); i < m; i++ {
				g.pos = append(g.pos, dataflowEntry{key: e.Key, row: e.Value})
			}
		case m < 0:
			for i := int64(0); i < -m; i++ {
				g.neg = append(g.neg, dataflowEntry{key: e.Key, row: e.Value})
			}
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []source.ValueChange
	for _, key := range keys {
		g := groups[key]
		if len(g.pos) == 1 && len(g.neg) == 1 {
			out = append(out, source.ValueChange{
				Type: source.ChangeUpdate, Key: key,
				Value: g.pos[0].row, PreviousValue: g.neg[0].row,
			})
			continue
		}
		for _, e := range g.neg {
			out = append(out, source.ValueChange{Type: source.ChangeDelete, Key: e.key, Value: e.row})
		}
		for _, e := range g.pos {
			out = append(out, source.ValueChange{Type: source.ChangeInsert, Key: e.key, Value: e.row})
		}
	}
	return out
}

type dataflowEntry struct {
	key string
	row immutable.Row
}

// deltaFromChanges renders one subscription's change batch into a graph
// delta: an update becomes a (-1 old, +1 new) pair in the same tick
// (§8 scenario 4), letting the join/filter/map operators see it as two
// ordinary retract/assert entries.
func deltaFromChanges(changes []source.ValueChange) *dataflow.Delta {
	delta := dataflow.NewDelta()
	for _, ch := range changes {
		switch ch.Type {
		case source.ChangeInsert:
			delta.Insert(dataflow.Entry{Key: ch.Key, Value: ch.Value}, 1)
		case source.ChangeDelete:
			delta.Insert(dataflow.Entry{Key: ch.Key, Value: ch.Value}, -1)
		case source.ChangeUpdate:
			delta.Insert(dataflow.Entry{Key: ch.Key, Value: ch.PreviousValue}, -1)
			delta.Insert(dataflow.Entry{Key: ch.Key, Value: ch.Value}, 1)
		}
	}
	return delta
}
