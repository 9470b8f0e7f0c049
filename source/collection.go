package source

import (
	"context"
	"iter"

	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/ir"
)

// ChangeType tags one entry of a change batch (§6 "subscribeChanges").
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ValueChange is one row-level mutation a subscription delivers.
// PreviousValue is only meaningful when Type is [ChangeUpdate].
type ValueChange struct {
	Type          ChangeType
	Key           string
	Value         immutable.Row
	PreviousValue immutable.Row
}

// SubscribeOptions configures one call to [Collection.SubscribeChanges].
type SubscribeOptions struct {
	// IncludeInitialState, when true, delivers the collection's current
	// rows as a burst of insert changes before any live change.
	IncludeInitialState bool
	// WhereExpression, when non-nil, lets the source filter changes
	// server-side (or index-side) rather than forwarding every row for
	// the coordinator to filter after the fact.
	WhereExpression ir.Expr
}

// Unsubscribe releases a subscription registered by
// [Collection.SubscribeChanges] or [Collection.OnStatusChange]. Calling
// it more than once is a no-op.
type Unsubscribe func()

// ChangeFunc receives one batch of changes. A batch may be empty - that
// is a meaningful, valid call meaning "nothing changed, but the source
// is still alive" (used for the coordinator's synthetic empty commit,
// §4.6.4).
//
// ctx carries the emitting transaction's scheduling context id (see
// [github.com/simon-lentz/ivm/txscope.ContextIDFrom]), the mechanism §9
// calls "a value threaded through the source collections' transaction
// context": a source participating in a multi-collection transaction
// calls cb with the same ctx for every collection it touches, so the
// coordinator can batch their deltas into one scheduler flush. A source
// delivering a standalone, non-transactional change may pass
// context.Background(); the coordinator treats a ctx with no embedded
// context id as its own single-collection transaction.
type ChangeFunc func(ctx context.Context, changes []ValueChange)

// IndexOp names a comparison a [FieldIndex] may support.
type IndexOp string

const (
	IndexOpEqual        IndexOp = "eq"
	IndexOpLess         IndexOp = "lt"
	IndexOpLessEqual    IndexOp = "lte"
	IndexOpGreater      IndexOp = "gt"
	IndexOpGreaterEqual IndexOp = "gte"
)

// FieldIndex is a range- or hash-index a source collection maintains on
// one field, queryable by the compiler's lazy-key-loading and
// order-by-by-index wiring (§4.4, §4.6.3).
type FieldIndex interface {
	// Supports reports whether this index can answer a lookup for op.
	Supports(op IndexOp) bool
	// Lookup returns every (key, row) satisfying op against value.
	Lookup(op IndexOp, value any) iter.Seq2[string, immutable.Row]
	// Take returns up to n (key, row) pairs in index order strictly
	// after fromExclusive (empty string meaning "from the start"),
	// skipping any row for which filter returns false. Used by the
	// windowed order-by subscription to page through a range index
	// (§4.4 "Order-by-by-index").
	Take(n int, fromExclusive string, filter func(immutable.Row) bool) iter.Seq2[string, immutable.Row]
}

// LoadSubsetOptions parameterizes [Collection.LoadSubset] (§6).
type LoadSubsetOptions struct {
	Where        ir.Expr
	Limit        *int
	OrderBy      []ir.OrderTerm
	Subscription string
}

// Collection is the abstract Source Collection surface the engine
// consumes (§6). Implementations live entirely outside this module
// (persistence adapters, optimistic-mutation transactors); the engine
// only ever calls through this interface.
type Collection interface {
	ID() string
	Size() int
	IsReady() bool
	Status() Status

	Get(key string) (immutable.Row, bool)
	Has(key string) bool
	GetKeyFromItem(value immutable.Row) string

	// SubscribeChanges registers cb to receive change batches, optionally
	// preceded by the collection's current state (opts.IncludeInitialState)
	// and filtered by opts.WhereExpression. The returned Unsubscribe
	// detaches cb; the collection holds no other reference to the caller.
	SubscribeChanges(cb ChangeFunc, opts SubscribeOptions) Unsubscribe

	// CurrentStateAsChanges returns the collection's current rows (those
	// matching where, if non-nil) as a burst of insert changes, and true.
	// It returns (nil, false) to signal "no suitable index exists for this
	// where clause" - the caller falls back to an unfiltered subscription.
	CurrentStateAsChanges(where ir.Expr) ([]ValueChange, bool)

	// LoadSubset asks the source to materialize rows matching opts,
	// returning true if the data was already present (or no load is
	// needed) or a channel that closes (after at most one send, an error
	// or nil) once the async load completes. Cancellation is cooperative:
	// the caller may abandon the channel and the source may never send.
	LoadSubset(ctx context.Context, opts LoadSubsetOptions) (bool, <-chan error)

	// Index returns the index maintained for field, if any.
	Index(field string) (FieldIndex, bool)

	// OnStatusChange registers cb to receive this collection's
	// status:change events (§6).
	OnStatusChange(cb func(Change)) Unsubscribe
}
