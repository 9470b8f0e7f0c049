package coordinator

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/ir"
	"github.com/simon-lentz/ivm/source"
	"github.com/simon-lentz/ivm/txscope"
)

// fakeFieldIndexRow is one entry of a [fakeFieldIndex]'s ordered rows.
type fakeFieldIndexRow struct {
	key string
	row immutable.Row
}

// fakeFieldIndex is a minimal [source.FieldIndex] test double backed by
// an append-ordered slice; Take walks it in insertion order, which is
// sufficient to exercise the coordinator's windowed-subscription wiring
// without a real range index.
type fakeFieldIndex struct {
	mu   sync.Mutex
	rows []fakeFieldIndexRow
}

func (fi *fakeFieldIndex) Supports(op source.IndexOp) bool { return op == source.IndexOpEqual }

func (fi *fakeFieldIndex) Lookup(op source.IndexOp, value any) iter.Seq2[string, immutable.Row] {
	return func(yield func(string, immutable.Row) bool) {}
}

func (fi *fakeFieldIndex) Take(n int, fromExclusive string, filter func(immutable.Row) bool) iter.Seq2[string, immutable.Row] {
	fi.mu.Lock()
	rows := append([]fakeFieldIndexRow(nil), fi.rows...)
	fi.mu.Unlock()
	return func(yield func(string, immutable.Row) bool) {
		started := fromExclusive == ""
		count := 0
		for _, r := range rows {
			if !started {
				if r.key == fromExclusive {
					started = true
				}
				continue
			}
			if !filter(r.row) {
				continue
			}
			if count >= n {
				return
			}
			count++
			if !yield(r.key, r.row) {
				return
			}
		}
	}
}

func (fi *fakeFieldIndex) addRow(key string, row immutable.Row) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	fi.rows = append(fi.rows, fakeFieldIndexRow{key: key, row: row})
}

// fakeCollection is a minimal in-memory [source.Collection] test double:
// mutations made through its insert/update/delete helpers fan out
// synchronously to every subscriber, mirroring how a real sync-engine
// transactor would call back into the coordinator.
type fakeCollection struct {
	mu              sync.Mutex
	id              string
	rows            map[string]immutable.Row
	status          source.Status
	changeSubs      map[int]source.ChangeFunc
	nextChangeSubID int
	statusSubs      map[int]func(source.Change)
	nextStatusSubID int

	// idx/idxField, when set, back a single field's [source.FieldIndex]
	// (§4.4 "Order-by-by-index"); loadSubsetFunc, when set, overrides the
	// default synchronous-no-op LoadSubset.
	idx            *fakeFieldIndex
	idxField       string
	loadSubsetFunc func(context.Context, source.LoadSubsetOptions) (bool, <-chan error)
}

func newFakeCollection(id string) *fakeCollection {
	return &fakeCollection{
		id:         id,
		rows:       map[string]immutable.Row{},
		status:     source.StatusReady,
		changeSubs: map[int]source.ChangeFunc{},
		statusSubs: map[int]func(source.Change){},
	}
}

func (f *fakeCollection) ID() string { return f.id }

func (f *fakeCollection) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeCollection) IsReady() bool { return f.Status() == source.StatusReady }

func (f *fakeCollection) Status() source.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeCollection) Get(key string) (immutable.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[key]
	return r, ok
}

func (f *fakeCollection) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

func (f *fakeCollection) GetKeyFromItem(value immutable.Row) string { return value.Key().String() }

func (f *fakeCollection) SubscribeChanges(cb source.ChangeFunc, opts source.SubscribeOptions) source.Unsubscribe {
	f.mu.Lock()
	id := f.nextChangeSubID
	f.nextChangeSubID++
	f.changeSubs[id] = cb
	var initial []source.ValueChange
	if opts.IncludeInitialState {
		for k, r := range f.rows {
			initial = append(initial, source.ValueChange{Type: source.ChangeInsert, Key: k, Value: r})
		}
	}
	f.mu.Unlock()

	if initial != nil {
		cb(context.Background(), initial)
	}
	return func() {
		f.mu.Lock()
		delete(f.changeSubs, id)
		f.mu.Unlock()
	}
}

func (f *fakeCollection) CurrentStateAsChanges(where ir.Expr) ([]source.ValueChange, bool) {
	return nil, false
}

func (f *fakeCollection) LoadSubset(ctx context.Context, opts source.LoadSubsetOptions) (bool, <-chan error) {
	f.mu.Lock()
	fn := f.loadSubsetFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, opts)
	}
	return true, nil
}

func (f *fakeCollection) Index(field string) (source.FieldIndex, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx != nil && f.idxField == field {
		return f.idx, true
	}
	return nil, false
}

func (f *fakeCollection) OnStatusChange(cb func(source.Change)) source.Unsubscribe {
	f.mu.Lock()
	id := f.nextStatusSubID
	f.nextStatusSubID++
	f.statusSubs[id] = cb
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.statusSubs, id)
		f.mu.Unlock()
	}
}

func (f *fakeCollection) snapshotChangeSubs() []source.ChangeFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := make([]source.ChangeFunc, 0, len(f.changeSubs))
	for _, cb := range f.changeSubs {
		subs = append(subs, cb)
	}
	return subs
}

func (f *fakeCollection) insert(ctx context.Context, key string, row immutable.Row) {
	f.mu.Lock()
	f.rows[key] = row
	f.mu.Unlock()
	for _, cb := range f.snapshotChangeSubs() {
		cb(ctx, []source.ValueChange{{Type: source.ChangeInsert, Key: key, Value: row}})
	}
}

func (f *fakeCollection) update(ctx context.Context, key string, row immutable.Row) {
	f.mu.Lock()
	prev := f.rows[key]
	f.rows[key] = row
	f.mu.Unlock()
	for _, cb := range f.snapshotChangeSubs() {
		cb(ctx, []source.ValueChange{{Type: source.ChangeUpdate, Key: key, Value: row, PreviousValue: prev}})
	}
}

func (f *fakeCollection) delete(ctx context.Context, key string) {
	f.mu.Lock()
	prev := f.rows[key]
	delete(f.rows, key)
	f.mu.Unlock()
	for _, cb := range f.snapshotChangeSubs() {
		cb(ctx, []source.ValueChange{{Type: source.ChangeDelete, Key: key, Value: prev}})
	}
}

func (f *fakeCollection) setStatus(ctx context.Context, to source.Status) {
	f.mu.Lock()
	from := f.status
	f.status = to
	subs := make([]func(source.Change), 0, len(f.statusSubs))
	for _, cb := range f.statusSubs {
		subs = append(subs, cb)
	}
	f.mu.Unlock()
	change := source.Change{Status: to, PreviousStatus: from}
	for _, cb := range subs {
		cb(change)
	}
}

func userQuery() *ir.Query {
	return &ir.Query{
		From: ir.CollectionRef{Alias: "u", CollectionID: "users"},
		Select: []ir.SelectItem{
			{Expr: ir.Ref{Alias: "u", Field: "name"}, As: "name"},
		},
	}
}

func TestCoordinatorReachesReadyWithNoData(t *testing.T) {
	users := newFakeCollection("users")
	coord, result := New(userQuery(), map[string]source.Collection{"users": users})
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))
	require.Equal(t, source.StatusReady, coord.Status())
	require.Equal(t, int64(1), coord.RunCount())
}

func TestCoordinatorPublishesInitialStateAsInserts(t *testing.T) {
	users := newFakeCollection("users")
	users.rows["1"] = immutable.WrapRow(map[string]any{"name": "Alice"}, []any{"1"})

	coord, result := New(userQuery(), map[string]source.Collection{"users": users})
	require.True(t, result.OK())

	var got []source.ValueChange
	coord.SubscribeChanges(func(changes []source.ValueChange) {
		got = append(got, changes...)
	})
	require.NoError(t, coord.Start(context.Background()))

	require.Equal(t, source.StatusReady, coord.Status())
	require.Len(t, got, 1)
	require.Equal(t, source.ChangeInsert, got[0].Type)
	name, ok := got[0].Value.Fields().Get("name")
	require.True(t, ok)
	require.Equal(t, "Alice", name.Unwrap())
}

func TestCoordinatorReconstructsUpdateFromDeleteInsertPair(t *testing.T) {
	users := newFakeCollection("users")
	coord, result := New(userQuery(), map[string]source.Collection{"users": users})
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))

	var got []source.ValueChange
	coord.SubscribeChanges(func(changes []source.ValueChange) {
		got = changes
	})

	users.insert(context.Background(), "1", immutable.WrapRow(map[string]any{"name": "Alice"}, []any{"1"}))
	require.Len(t, got, 1)
	require.Equal(t, source.ChangeInsert, got[0].Type)

	users.update(context.Background(), "1", immutable.WrapRow(map[string]any{"name": "Alicia"}, []any{"1"}))
	require.Len(t, got, 1, "an update must render as exactly one ValueChange, never a delete+insert pair")
	require.Equal(t, source.ChangeUpdate, got[0].Type)
	newName, _ := got[0].Value.Fields().Get("name")
	oldName, _ := got[0].PreviousValue.Fields().Get("name")
	require.Equal(t, "Alicia", newName.Unwrap())
	require.Equal(t, "Alice", oldName.Unwrap())

	users.delete(context.Background(), "1")
	require.Len(t, got, 1)
	require.Equal(t, source.ChangeDelete, got[0].Type)
}

func TestCoordinatorCoalescesMultiCollectionTransactionIntoOneRun(t *testing.T) {
	users := newFakeCollection("users")
	orders := newFakeCollection("orders")

	query := &ir.Query{
		From: ir.CollectionRef{Alias: "u", CollectionID: "users"},
		Joins: []ir.Join{
			{
				Kind:   ir.JoinInner,
				Source: ir.CollectionRef{Alias: "o", CollectionID: "orders"},
				On: ir.Func{Name: "=", Args: []ir.Expr{
					ir.Ref{Alias: "u", Field: "id"},
					ir.Ref{Alias: "o", Field: "userID"},
				}},
			},
		},
	}

	coord, result := New(query, map[string]source.Collection{"users": users, "orders": orders})
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))
	require.Equal(t, int64(1), coord.RunCount(), "both sources reaching ready with no data must still run exactly once")

	baseline := coord.RunCount()

	ctx := context.Background()
	txID := txscope.NewContextID()
	ctx = txscope.WithContextID(ctx, txID)

	userRow := immutable.WrapRow(map[string]any{"id": "1", "name": "Alice"}, []any{"1"})
	orderRow := immutable.WrapRow(map[string]any{"userID": "1", "item": "widget"}, []any{"10"})

	users.insert(ctx, "1", userRow)
	orders.insert(ctx, "10", orderRow)

	require.Equal(t, baseline, coord.RunCount(), "depositing under a shared transaction context must not run until flushed")

	require.NoError(t, coord.Flush(ctx, txID))
	require.Equal(t, baseline+1, coord.RunCount(), "one flush of an N-collection transaction must run the graph exactly once")
}

func TestCoordinatorFailsWhenSourceEntersError(t *testing.T) {
	users := newFakeCollection("users")
	coord, result := New(userQuery(), map[string]source.Collection{"users": users})
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))
	require.Equal(t, source.StatusReady, coord.Status())

	var lastChange source.Change
	coord.OnStatusChange(func(ch source.Change) { lastChange = ch })

	users.setStatus(context.Background(), source.StatusError)

	require.Equal(t, source.StatusError, coord.Status())
	require.Equal(t, source.StatusError, lastChange.Status)
	require.NotNil(t, coord.LastIssue())
}

func TestCoordinatorCleanupUnsubscribesAndTransitions(t *testing.T) {
	users := newFakeCollection("users")
	coord, result := New(userQuery(), map[string]source.Collection{"users": users})
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))

	coord.Cleanup()
	require.Equal(t, source.StatusCleanedUp, coord.Status())
	require.Empty(t, users.changeSubs)
	require.Empty(t, users.statusSubs)
}

func TestCoordinatorRejectsUnsuppliedCollection(t *testing.T) {
	coord, result := New(userQuery(), map[string]source.Collection{})
	require.True(t, result.OK())
	err := coord.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, source.StatusError, coord.Status())
}

func TestCoordinatorGCSweepCleansUpAfterLastUnsubscribe(t *testing.T) {
	users := newFakeCollection("users")
	coord, result := New(userQuery(), map[string]source.Collection{"users": users},
		WithGCTime(10*time.Millisecond))
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))

	unsub := coord.SubscribeChanges(func([]source.ValueChange) {})
	unsub()

	require.Eventually(t, func() bool {
		return coord.Status() == source.StatusCleanedUp
	}, time.Second, time.Millisecond, "gcTime sweep should clean up an idle live query")
}

func TestCoordinatorGCSweepSkippedWhileSubscriberPresent(t *testing.T) {
	users := newFakeCollection("users")
	coord, result := New(userQuery(), map[string]source.Collection{"users": users},
		WithGCTime(10*time.Millisecond))
	require.True(t, result.OK())
	require.NoError(t, coord.Start(context.Background()))

	coord.SubscribeChanges(func([]source.ValueChange) {})
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, source.StatusReady, coord.Status())
}

// orderedUserQuery compiles to an [compile.OrderByPlan]-qualifying query
// (§4.4 "Order-by-by-index"): a single direct-ref ascending order term
// paired with a limit, over a single leaf alias.
func orderedUserQuery(limit, offset int) *ir.Query {
	l, o := limit, offset
	return &ir.Query{
		From:    ir.CollectionRef{Alias: "u", CollectionID: "users"},
		OrderBy: []ir.OrderTerm{{Expr: ir.Ref{Field: "id"}}},
		Limit:   &l,
		Offset:  &o,
		Select: []ir.SelectItem{
			{Expr: ir.Ref{Field: "id"}, As: "id"},
			{Expr: ir.Ref{Field: "name"}, As: "name"},
		},
	}
}

func TestCoordinatorWindowedSubscriptionSeedsFromIndexAndRefillsShortfall(t *testing.T) {
	users := newFakeCollection("users")
	idx := &fakeFieldIndex{}
	idx.addRow("1", immutable.WrapRow(map[string]any{"id": int64(1), "name": "ann"}, []any{int64(1)}))
	idx.addRow("2", immutable.WrapRow(map[string]any{"id": int64(2), "name": "bob"}, []any{int64(2)}))
	users.idx = idx
	users.idxField = "id"

	loadCalled := make(chan struct{}, 1)
	users.loadSubsetFunc = func(_ context.Context, opts source.LoadSubsetOptions) (bool, <-chan error) {
		idx.addRow("3", immutable.WrapRow(map[string]any{"id": int64(3), "name": "cat"}, []any{int64(3)}))
		done := make(chan error, 1)
		done <- nil
		loadCalled <- struct{}{}
		return false, done
	}

	coord, result := New(orderedUserQuery(3, 0), map[string]source.Collection{"users": users})
	require.True(t, result.OK())
	require.NotNil(t, coord.pipeline.OrderBy)

	var mu sync.Mutex
	seen := map[string]bool{}
	coord.SubscribeChanges(func(changes []source.ValueChange) {
		mu.Lock()
		defer mu.Unlock()
		for _, ch := range changes {
			if ch.Type == source.ChangeInsert {
				seen[ch.Key] = true
			}
		}
	})

	require.NoError(t, coord.Start(context.Background()))

	// The initial window seeds synchronously from the field index (only
	// 2 rows existed), which falls short of the requested limit of 3 and
	// must trigger exactly one LoadSubset call to fill the gap.
	select {
	case <-loadCalled:
	case <-time.After(time.Second):
		t.Fatal("LoadSubset was never called for the windowed shortfall")
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond, "expected all 3 rows to arrive once the shortfall is filled")

	require.Eventually(t, func() bool {
		return coord.Status() == source.StatusReady
	}, time.Second, 5*time.Millisecond, "status should settle back to ready after the refill")
}
