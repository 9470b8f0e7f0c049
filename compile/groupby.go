package compile

import (
	"fmt"
	"iter"

	"github.com/simon-lentz/ivm/dataflow"
	"github.com/simon-lentz/ivm/eval"
	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/ir"
)

// havingField is the hidden field [wireGroupBy] stashes a group's having
// result under, so the having filter wired immediately afterward can test
// it without re-deriving the group's aggregates outside the fold (where
// [eval.Fold] has no group to operate over).
const havingField = "$having"

// wireGroupBy registers the reduce operator for query's groupBy clause
// (§4.3 "reduce", §4.4). The fold recomputes the group's key columns from
// an arbitrary representative member, every Select-list [ir.Aggregate]
// from the group's full (value, multiplicity) membership via [eval.Fold],
// and, when the query has a having clause, that clause's result with its
// own aggregates substituted the same way (having's aggregates need not
// appear in the select list).
//
// Select items are restricted to a bare [ir.Ref] (the group's
// representative value for that column) or a bare [ir.Aggregate]; nested
// combinations such as a Func wrapping an Aggregate are not supported
// (open question, resolved narrow per the grounding ledger).
func (ctx *buildCtx) wireGroupBy(query *ir.Query, src dataflow.NodeID) dataflow.NodeID {
	aliases := append([]string(nil), ctx.boundAliases...)
	ev := ctx.compiler.ev

	keyOf := func(row immutable.Row) string {
		scope := scopeForRow(row, aliases)
		parts := make([]any, len(query.GroupBy))
		for i, g := range query.GroupBy {
			v, _ := ev.Eval(g, scope)
			parts[i] = v
		}
		return immutable.WrapKey(parts).String()
	}

	fold := func(key string, group iter.Seq2[immutable.Row, int64]) immutable.Row {
		var representative immutable.Row
		haveRepresentative := false
		for r := range group {
			representative = r
			haveRepresentative = true
			break
		}
		scopes := groupScopes(group, aliases)

		fields := make(map[string]any)
		if haveRepresentative {
			repScope := scopeForRow(representative, aliases)
			for _, g := range query.GroupBy {
				if ref, ok := g.(ir.Ref); ok {
					v, _ := ev.Eval(ref, repScope)
					fields[ref.Field] = v
				}
			}

			for i, item := range query.Select {
				name := selectFieldName(resolveSelectItem(item), i)
				if agg, isAgg := item.Expr.(ir.Aggregate); isAgg {
					v, _ := eval.Fold(ev, agg.Kind, agg.Arg, "", scopes)
					fields[name] = v
					continue
				}
				v, _ := ev.Eval(item.Expr, repScope)
				fields[name] = v
			}

			if query.Having != nil {
				substituted, err := substituteAggregates(query.Having, ev, scopes)
				if err == nil {
					result, err := ev.Eval(substituted, repScope)
					if err == nil {
						fields[havingField] = result
					}
				}
			}
		}

		return immutable.WrapRow(fields, []any{key})
	}

	return ctx.graph.Reduce(src, keyOf, fold)
}

// wireHavingFilter applies the having boolean [wireGroupBy] computed per
// group, then strips the hidden field so it never reaches the query's
// output rows.
func (ctx *buildCtx) wireHavingFilter(src dataflow.NodeID) dataflow.NodeID {
	filtered := ctx.graph.Filter(src, func(_ string, row immutable.Row) bool {
		v, ok := row.Fields().Get(havingField)
		if !ok {
			return false
		}
		b, _ := v.Bool()
		return b
	})
	return ctx.graph.Map(filtered, func(key string, row immutable.Row) (string, immutable.Row) {
		fields := row.Clone()
		delete(fields, havingField)
		return key, immutable.WrapRowClone(fields, row.Key().Clone())
	})
}

// groupScopes adapts a group's (row, multiplicity) iteration into the
// (Scope, multiplicity) shape [eval.Fold] expects.
func groupScopes(group iter.Seq2[immutable.Row, int64], aliases []string) iter.Seq2[eval.Scope, int64] {
	return func(yield func(eval.Scope, int64) bool) {
		for r, m := range group {
			if !yield(scopeForRow(r, aliases), m) {
				return
			}
		}
	}
}

// substituteAggregates replaces every [ir.Aggregate] node in expr with an
// [ir.Val] holding its folded result over group, so the resulting
// expression tree can be evaluated with the ordinary [eval.Evaluator]
// against a single representative scope.
func substituteAggregates(expr ir.Expr, ev *eval.Evaluator, scopes iter.Seq2[eval.Scope, int64]) (ir.Expr, error) {
	switch e := expr.(type) {
	case ir.Aggregate:
		v, err := eval.Fold(ev, e.Kind, e.Arg, "", scopes)
		if err != nil {
			return nil, err
		}
		return ir.Val{Value: v}, nil
	case ir.Func:
		args := make([]ir.Expr, len(e.Args))
		for i, a := range e.Args {
			sub, err := substituteAggregates(a, ev, scopes)
			if err != nil {
				return nil, err
			}
			args[i] = sub
		}
		return ir.Func{Name: e.Name, Args: args}, nil
	case ir.Ref, ir.Val:
		return e, nil
	default:
		return nil, fmt.Errorf("compile: unknown expression type %T in having clause", expr)
	}
}

// resolveSelectItem resolves the naming inputs [selectFieldName] needs
// from a raw [ir.SelectItem].
func resolveSelectItem(item ir.SelectItem) selectItem {
	ref, isRef := item.Expr.(ir.Ref)
	out := selectItem{as: item.As}
	if isRef {
		out.refField = ref.Field
	}
	return out
}
