package compile

import (
	"github.com/simon-lentz/ivm/dataflow"
	"github.com/simon-lentz/ivm/ir"
)

// Pipeline is a compiled query (§4.4 "Output"): the graph, per-alias input
// streams, the per-alias pushdown where-clauses, the alias -> collection-id
// map (including aliases introduced by subqueries), the join plan, any
// order-by index hint, and the terminal result stream.
type Pipeline struct {
	Graph *dataflow.Graph

	// Inputs maps every leaf (non-subquery) alias to the graph's input
	// node for that alias. The coordinator subscribes to the named
	// collection and deposits deltas via dataflow.Graph.Append(alias, ...).
	Inputs map[string]dataflow.NodeID

	// WhereClauses maps an alias to its query level's where expression when
	// that level (the top level or a subquery) binds exactly one alias, so
	// the expression may be pushed into the source collection's
	// subscription as a whereExpression (§4.4, §4.6.3). A where-clause at a
	// level with joins is never recorded here, even when it touches only
	// one alias's fields; it is evaluated downstream of the join only.
	WhereClauses map[string]ir.Expr

	// AliasCollection maps every alias (including ones nested inside
	// subqueries, keyed by the bare alias string, not a dotted path) to
	// the collection id it resolves to. Aliases bound to a subquery map
	// to "".
	AliasCollection map[string]string

	// Joins records, in query order, how each join was planned.
	Joins []JoinPlan

	// OrderBy is non-nil when the query qualifies for order-by-by-index
	// (§4.4 "Order-by-by-index"): a single-column, direct-ref order-by
	// paired with a limit.
	OrderBy *OrderByPlan

	// Result is the terminal node the coordinator wires to an output sink.
	Result dataflow.NodeID
}

// JoinPlan records the active/lazy classification for one join (§4.4
// "Join planning").
type JoinPlan struct {
	// ActiveAlias is the alias that must be iterated; LazyAlias is the
	// alias only probed by key. ActiveAlias == "" for a full join, where
	// both sides are active (no lazy optimization is possible).
	ActiveAlias string
	LazyAlias   string

	// LazyDisabled is true when lazy optimization was classified but then
	// suppressed: a self-join (lazy side is the same collection as the
	// active side) or a lazy side backed by a windowed subquery (limit or
	// offset), per §4.4's two disabling conditions.
	LazyDisabled       bool
	LazyDisabledReason string

	// JoinField is the field name on the lazy side that the active side's
	// tap probes keys against, used to wire lazy key loading (§4.4, §4.6.3).
	JoinField string

	// ActiveField is the unqualified field name within the active alias's
	// own row that holds the join-key value to probe JoinField with.
	// Empty when ActiveAlias is empty (full join, no active/lazy split).
	ActiveField string

	Kind ir.JoinKind
}

// OrderByPlan is the compiler's order-by-by-index hint (§4.4). It never
// changes how the dataflow graph is wired (the windowed operator runs
// either way); it is advisory information for the coordinator to attempt
// a range-indexed load before falling back to the full windowed stream.
type OrderByPlan struct {
	Alias      string
	Field      string
	Descending bool
	Offset     int
	Limit      int

	// Terms is the query's full ORDER BY clause, threaded through
	// verbatim to [github.com/simon-lentz/ivm/source.LoadSubsetOptions.OrderBy]
	// when the coordinator asks the source to materialize more of the
	// window (§4.5 "loadMoreIfNeeded").
	Terms []ir.OrderTerm

	// WindowSize is filled in by the compiled operator's
	// dataflow.OrderByOptions.SetSizeCallback the first time it ticks: a
	// getter for how many rows currently occupy [Offset, Offset+Limit)
	// (§4.5's on-demand-refill probe). Nil until the operator has run
	// once.
	WindowSize func() int
}
