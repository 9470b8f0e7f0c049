package compile

import (
	"fmt"
	"iter"
	"math"

	"github.com/simon-lentz/ivm/dataflow"
	"github.com/simon-lentz/ivm/diag"
	"github.com/simon-lentz/ivm/eval"
	"github.com/simon-lentz/ivm/ids"
	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/internal/collate"
	"github.com/simon-lentz/ivm/ir"
)

// compareValues orders two order-by values via [collate.ValueOrder],
// treating an incomparable pair (mismatched, non-numeric types) as equal
// rather than failing the whole sort.
func compareValues(a, b any) int {
	c, err := collate.ValueOrder(a, b)
	if err != nil {
		return 0
	}
	return c
}

// Compiler translates [ir.Query] values into compiled [Pipeline]s. A
// Compiler is safe for concurrent use; each Compile call builds a fresh
// [dataflow.Graph] and carries no state between calls.
type Compiler struct {
	cfg *config
	ev  *eval.Evaluator
}

// New returns a Compiler configured by opts.
func New(opts ...Option) *Compiler {
	cfg := applyOptions(opts)
	return &Compiler{
		cfg: cfg,
		ev:  eval.NewEvaluator(eval.WithLogger(cfg.logger)),
	}
}

// Compile translates query into a [Pipeline] (§4.4). On any structural or
// alias-resolution error the returned Pipeline is nil and the returned
// [diag.Result] describes every problem found; Compile does not stop at
// the first one.
func (c *Compiler) Compile(query *ir.Query) (*Pipeline, diag.Result) {
	col := diag.NewCollector(diag.NoLimit)
	if query == nil {
		col.Collect(diag.NewIssue(diag.Fatal, diag.EConfigMissingField, "compile: nil query").Build())
		return nil, col.Result()
	}

	validateStructure(query, col)
	if col.Result().HasErrors() {
		return nil, col.Result()
	}

	g := dataflow.New(dataflow.WithLogger(c.cfg.logger))
	p := &Pipeline{
		Graph:           g,
		Inputs:          map[string]dataflow.NodeID{},
		WhereClauses:    map[string]ir.Expr{},
		AliasCollection: map[string]string{},
	}
	bc := &buildCtx{
		compiler:         c,
		graph:            g,
		pipeline:         p,
		col:              col,
		subqueryCache:    ids.NewIdentityRegistry[*ir.Query, dataflow.NodeID](),
		subqueryWindowed: map[string]bool{},
	}

	result, ok := bc.compileQuery(query)
	if !ok {
		return nil, col.Result()
	}
	p.Result = result
	return p, col.Result()
}

// buildCtx threads the graph under construction, the pipeline's
// accumulating metadata, and the diagnostic collector through the
// recursive resolveFrom/compileQuery pair. A fresh buildCtx is used per
// nested query (see [buildCtx.resolveFrom]'s QueryRef case), but all
// share the same graph, pipeline, collector, and subquery cache so a
// subquery referenced from two places compiles its operator subtree once.
type buildCtx struct {
	compiler *Compiler
	graph    *dataflow.Graph
	pipeline *Pipeline
	col      *diag.Collector

	// boundAliases lists, in binding order, the aliases in scope for
	// where/join-condition expressions at this query level, while flatScope
	// is false.
	boundAliases []string

	// grouped is true once groupBy has wired its Reduce; select and
	// having are then already resolved (baked into the fold), so later
	// stages must not re-run them.
	grouped bool

	// flatScope is true once the row stream at this build level carries
	// flat, unqualified field names rather than alias-namespaced ones:
	// either because groupBy's fold produced them directly, or because
	// the (non-grouped) select projection already ran. distinct and
	// orderBy both run after select, so they always see flatScope true
	// for select-bearing queries; scopeFor reflects this so either stage
	// can still evaluate expressions that reference output columns.
	flatScope bool

	// subqueryCache and subqueryWindowed are shared across the whole
	// Compile call (not per-level), so identity caching and windowed
	// detection see every subquery reference regardless of nesting depth.
	subqueryCache    *ids.IdentityRegistry[*ir.Query, dataflow.NodeID]
	subqueryWindowed map[string]bool
}

// child returns a buildCtx for a nested subquery, sharing the parent's
// graph, pipeline, collector, and subquery bookkeeping but starting with
// an empty alias scope of its own.
func (ctx *buildCtx) child() *buildCtx {
	return &buildCtx{
		compiler:         ctx.compiler,
		graph:            ctx.graph,
		pipeline:         ctx.pipeline,
		col:              ctx.col,
		subqueryCache:    ctx.subqueryCache,
		subqueryWindowed: ctx.subqueryWindowed,
	}
}

func (ctx *buildCtx) isBound(alias string) bool {
	for _, a := range ctx.boundAliases {
		if a == alias {
			return true
		}
	}
	return false
}

// scopeFor builds the evaluation [eval.Scope] for row at this build
// level: alias-namespaced sub-rows while flatScope is false, a single
// unqualified binding once it is true.
func (ctx *buildCtx) scopeFor(row immutable.Row) eval.Scope {
	if ctx.flatScope {
		return eval.NewScope().WithRow("", row)
	}
	return scopeForRow(row, ctx.boundAliases)
}

// compileQuery wires one query level's from/joins/where/groupBy/having/
// select/distinct/orderBy clauses in order and returns the terminal
// NodeID for this level (§4.4).
func (ctx *buildCtx) compileQuery(query *ir.Query) (dataflow.NodeID, bool) {
	mainAlias, node, ok := ctx.resolveFrom(query.From)
	if !ok {
		return 0, false
	}
	ctx.boundAliases = append(ctx.boundAliases, mainAlias)

	for i := range query.Joins {
		var wireOK bool
		node, wireOK = ctx.wireJoin(query.Joins[i], node)
		if !wireOK {
			return 0, false
		}
	}

	if query.Where != nil {
		where := query.Where
		node = ctx.graph.Filter(node, func(_ string, row immutable.Row) bool {
			ok, _ := ctx.compiler.ev.EvalBool(where, ctx.scopeFor(row))
			return ok
		})
		if len(ctx.boundAliases) == 1 {
			ctx.pipeline.WhereClauses[ctx.boundAliases[0]] = where
		}
	}

	if len(query.GroupBy) > 0 {
		// wireGroupBy's fold already computes every select item (including
		// having's aggregates, via the hidden havingField) from the
		// group's full membership, so select and having are resolved here
		// rather than against a per-row scope downstream (§4.3 "reduce").
		node = ctx.wireGroupBy(query, node)
		ctx.boundAliases = nil
		ctx.grouped = true
		ctx.flatScope = true
	}

	if query.Having != nil {
		node = ctx.wireHavingFilter(node)
	}

	if len(query.Select) > 0 && !ctx.grouped {
		node = ctx.wireSelect(query, node)
		ctx.flatScope = true
	}

	if query.Distinct {
		node = ctx.wireDistinct(node)
	}

	if len(query.OrderBy) > 0 {
		node = ctx.wireOrderBy(query, node)
	}

	return node, true
}

// resolveFrom wires from's source into the graph and returns the alias it
// is bound under and the NodeID of its alias-namespaced stream (every
// consumer downstream of resolveFrom can assume the stream's fields are
// all prefixed "alias.", regardless of whether from is a leaf collection
// or a subquery).
func (ctx *buildCtx) resolveFrom(from ir.From) (alias string, node dataflow.NodeID, ok bool) {
	switch f := from.(type) {
	case ir.CollectionRef:
		id := ctx.graph.Input(f.Alias)
		ctx.pipeline.Inputs[f.Alias] = id
		ctx.pipeline.AliasCollection[f.Alias] = f.CollectionID
		return f.Alias, ctx.graph.Map(id, namespaceFields(f.Alias)), true

	case ir.QueryRef:
		if f.Query == nil {
			ctx.col.Collect(diag.NewIssue(diag.Error, diag.EAliasUnresolved,
				fmt.Sprintf("alias %q has a nil subquery", f.Alias)).WithAlias(f.Alias).Build())
			return "", 0, false
		}
		raw, cached := ctx.subqueryCache.Lookup(f.Query)
		if !cached {
			sub := ctx.child()
			var subOK bool
			raw, subOK = sub.compileQuery(f.Query)
			if !subOK {
				return "", 0, false
			}
			ctx.subqueryCache.Store(f.Query, raw)
		}
		ctx.pipeline.AliasCollection[f.Alias] = ""
		if f.Query.Limit != nil || f.Query.Offset != nil {
			ctx.subqueryWindowed[f.Alias] = true
		}
		return f.Alias, ctx.graph.Map(raw, namespaceFields(f.Alias)), true

	default:
		ctx.col.Collect(diag.NewIssue(diag.Error, diag.EUnsupportedType,
			fmt.Sprintf("unknown from-clause type %T", from)).Build())
		return "", 0, false
	}
}

// wireJoin resolves join's source, validates its On condition, registers
// the join operator, classifies its active/lazy sides (§4.4 "Join
// planning"), and records the resulting [JoinPlan].
func (ctx *buildCtx) wireJoin(join ir.Join, left dataflow.NodeID) (dataflow.NodeID, bool) {
	joinAlias, right, ok := ctx.resolveFrom(join.Source)
	if !ok {
		return 0, false
	}

	existing, joined, ok := ctx.validateJoinOn(join.On, joinAlias)
	if !ok {
		return 0, false
	}

	leftField := existing.Alias + "." + existing.Field
	rightField := joined.Alias + "." + joined.Field

	activeAlias, lazyAlias := classifyJoinSides(join.Kind, existing.Alias, joinAlias)
	plan := JoinPlan{ActiveAlias: activeAlias, LazyAlias: lazyAlias, JoinField: rightField, Kind: join.Kind}
	switch activeAlias {
	case existing.Alias:
		plan.ActiveField = existing.Field
	case joined.Alias:
		plan.ActiveField = joined.Field
		plan.JoinField = leftField
	}
	if lazyAlias != "" {
		switch {
		case ctx.sameCollection(activeAlias, lazyAlias):
			plan.LazyDisabled = true
			plan.LazyDisabledReason = "self-join: lazy side is the same collection as the active side"
		case ctx.subqueryWindowed[lazyAlias]:
			plan.LazyDisabled = true
			plan.LazyDisabledReason = "lazy side is a windowed subquery (limit or offset)"
		}
	}
	ctx.pipeline.Joins = append(ctx.pipeline.Joins, plan)

	node := ctx.graph.Join(left, right, join.Kind, keyFuncForField(leftField), keyFuncForField(rightField), mergeNamespaced())
	ctx.boundAliases = append(ctx.boundAliases, joinAlias)
	return node, true
}

func (ctx *buildCtx) sameCollection(a, b string) bool {
	ca, aok := ctx.pipeline.AliasCollection[a]
	cb, bok := ctx.pipeline.AliasCollection[b]
	return aok && bok && ca != "" && ca == cb
}

// classifyJoinSides picks the active (iterated) and lazy (key-probed)
// alias for a join (§4.4 "Join planning"): left-outer keeps the
// already-bound side active, right-outer keeps the newly joined side
// active, full requires both sides active (no lazy side), and inner
// defaults to the already-bound side active since relative cardinality is
// unknown at compile time.
func classifyJoinSides(kind ir.JoinKind, existingAlias, joinedAlias string) (active, lazy string) {
	switch kind {
	case ir.JoinRight:
		return joinedAlias, existingAlias
	case ir.JoinFull:
		return "", ""
	default: // ir.JoinLeft, ir.JoinInner
		return existingAlias, joinedAlias
	}
}

// validateJoinOn checks that on is an equality of two column references,
// one naming joinAlias and the other naming an already-bound alias
// (§4.4's join-condition error conditions), and returns (existingSide,
// joinedSide) in that order.
func (ctx *buildCtx) validateJoinOn(on ir.Expr, joinAlias string) (existing, joined ir.Ref, ok bool) {
	fn, isFunc := on.(ir.Func)
	if !isFunc || fn.Name != "=" || len(fn.Args) != 2 {
		ctx.col.Collect(diag.NewIssue(diag.Error, diag.EJoinNotEquatingAlias,
			"join condition must equate the two participating aliases").WithAlias(joinAlias).Build())
		return ir.Ref{}, ir.Ref{}, false
	}
	left, lok := fn.Args[0].(ir.Ref)
	right, rok := fn.Args[1].(ir.Ref)
	if !lok || !rok {
		ctx.col.Collect(diag.NewIssue(diag.Error, diag.EJoinNotEquatingAlias,
			"join condition must compare two column references").WithAlias(joinAlias).Build())
		return ir.Ref{}, ir.Ref{}, false
	}
	if left.Alias == right.Alias {
		ctx.col.Collect(diag.NewIssue(diag.Error, diag.ESelfJoinSameAlias,
			fmt.Sprintf("join condition references alias %q on both sides", left.Alias)).WithAlias(joinAlias).Build())
		return ir.Ref{}, ir.Ref{}, false
	}

	var joinSide, otherSide ir.Ref
	switch joinAlias {
	case left.Alias:
		joinSide, otherSide = left, right
	case right.Alias:
		joinSide, otherSide = right, left
	default:
		ctx.col.Collect(diag.NewIssue(diag.Error, diag.EJoinNotEquatingAlias,
			fmt.Sprintf("join condition does not reference the joined alias %q", joinAlias)).WithAlias(joinAlias).Build())
		return ir.Ref{}, ir.Ref{}, false
	}
	if !ctx.isBound(otherSide.Alias) {
		ctx.col.Collect(diag.NewIssue(diag.Error, diag.EAliasUnresolved,
			fmt.Sprintf("join condition references unresolved alias %q", otherSide.Alias)).WithAlias(joinAlias).Build())
		return ir.Ref{}, ir.Ref{}, false
	}
	return otherSide, joinSide, true
}

// wireSelect registers the projection that renders each [ir.SelectItem]
// into its output field name (§4.4 "select").
func (ctx *buildCtx) wireSelect(query *ir.Query, src dataflow.NodeID) dataflow.NodeID {
	items := query.Select
	return ctx.graph.Map(src, func(key string, row immutable.Row) (string, immutable.Row) {
		scope := ctx.scopeFor(row)
		fields := make(map[string]any, len(items))
		for i, item := range items {
			v, _ := ctx.compiler.ev.Eval(item.Expr, scope)
			fields[selectFieldName(resolveSelectItem(item), i)] = v
		}
		return key, immutable.WrapRow(fields, row.Key().Clone())
	})
}

// wireDistinct implements SQL DISTINCT by reusing [dataflow.Graph.Reduce]
// degenerately: the group key is the canonical content hash of the row's
// fields alone (its originating key is dropped, since two selected tuples
// with the same values but different source rows must collapse), and the
// fold is the identity, so Reduce's retract-stale/insert-fresh bookkeeping
// naturally consolidates repeated insertions of the same tuple to net +1
// and its last removal to net -1, with no special-cased operator needed.
func (ctx *buildCtx) wireDistinct(src dataflow.NodeID) dataflow.NodeID {
	return ctx.graph.Reduce(src,
		func(row immutable.Row) string { return immutable.WrapRow(row.Clone(), nil).CanonicalString() },
		func(_ string, group iter.Seq2[immutable.Row, int64]) immutable.Row {
			for row := range group {
				return immutable.WrapRow(row.Clone(), nil)
			}
			return immutable.Row{}
		},
	)
}

// wireOrderBy registers the windowed order-by operator (§4.5) and, when
// the query qualifies for order-by-by-index (a single direct-ref order
// term paired with a limit), records the advisory [OrderByPlan] hint. A
// query with no limit is given an effectively unbounded window so it
// still benefits from fractional-index assignment without truncating
// results.
func (ctx *buildCtx) wireOrderBy(query *ir.Query, src dataflow.NodeID) dataflow.NodeID {
	terms := query.OrderBy
	less := func(a, b any) bool {
		ra, rb := a.(immutable.Row), b.(immutable.Row)
		for _, term := range terms {
			va, _ := ctx.compiler.ev.Eval(term.Expr, ctx.scopeFor(ra))
			vb, _ := ctx.compiler.ev.Eval(term.Expr, ctx.scopeFor(rb))
			c := compareValues(va, vb)
			if term.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	}

	opts := dataflow.OrderByOptions{Less: less}
	if query.Offset != nil {
		opts.Offset = *query.Offset
	}
	if query.Limit != nil {
		opts.Limit = *query.Limit
	} else {
		opts.Limit = math.MaxInt32
	}

	var plan *OrderByPlan
	if query.Limit != nil && len(terms) == 1 {
		if ref, isRef := terms[0].Expr.(ir.Ref); isRef {
			alias := ref.Alias
			if alias == "" && len(ctx.boundAliases) == 1 {
				alias = ctx.boundAliases[0]
			}
			plan = &OrderByPlan{
				Alias: alias, Field: ref.Field, Descending: terms[0].Descending,
				Offset: opts.Offset, Limit: opts.Limit, Terms: terms,
			}
			// The coordinator reads plan.WindowSize after Start to decide
			// whether the windowed subscription needs a LoadSubset refill
			// (§4.5); the operator calls this back on its first tick.
			opts.SetSizeCallback = func(getSize func() int) { plan.WindowSize = getSize }
		}
	}

	node := ctx.graph.OrderByWithFractionalIndex(src, func(row immutable.Row) any { return row }, opts)

	if plan != nil {
		ctx.pipeline.OrderBy = plan
	}
	return node
}
