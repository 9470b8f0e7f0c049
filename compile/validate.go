package compile

import (
	"fmt"

	"github.com/simon-lentz/ivm/diag"
	"github.com/simon-lentz/ivm/ir"
)

// validateStructure checks the clause-combination rules that don't need
// alias resolution (§4.4 "Error conditions"): distinct without select,
// having without groupBy, limit/offset without orderBy. It also walks
// every expression tree in the query for unknown expression types and
// aggregate misuse.
func validateStructure(query *ir.Query, col *diag.Collector) {
	if query.Distinct && len(query.Select) == 0 {
		col.Collect(diag.NewIssue(diag.Error, diag.EDistinctWithoutSelect,
			"distinct requires an explicit select list").Build())
	}
	if query.Having != nil && len(query.GroupBy) == 0 {
		col.Collect(diag.NewIssue(diag.Error, diag.EHavingWithoutGroupBy,
			"having clause requires groupBy").Build())
	}
	if (query.Limit != nil || query.Offset != nil) && len(query.OrderBy) == 0 {
		col.Collect(diag.NewIssue(diag.Error, diag.ELimitWithoutOrderBy,
			"limit/offset requires orderBy").Build())
	}

	grouped := len(query.GroupBy) > 0
	validateExpr(query.Where, false, col)
	for _, g := range query.GroupBy {
		validateExpr(g, false, col)
	}
	validateExpr(query.Having, grouped, col)
	for _, term := range query.OrderBy {
		validateExpr(term.Expr, grouped, col)
	}
	for _, item := range query.Select {
		validateExpr(item.Expr, grouped, col)
	}
	for _, join := range query.Joins {
		validateExpr(join.On, false, col)
		validateFrom(join.Source, col)
	}
	validateFrom(query.From, col)
}

func validateFrom(from ir.From, col *diag.Collector) {
	switch f := from.(type) {
	case ir.CollectionRef:
		if f.CollectionID == "" {
			col.Collect(diag.NewIssue(diag.Error, diag.EAliasUnresolved,
				fmt.Sprintf("alias %q has no backing collection id", f.Alias)).
				WithAlias(f.Alias).Build())
		}
	case ir.QueryRef:
		if f.Query != nil {
			validateStructure(f.Query, col)
		}
	default:
		col.Collect(diag.NewIssue(diag.Error, diag.EUnsupportedType,
			fmt.Sprintf("unknown from-clause type %T", from)).Build())
	}
}

// validateExpr recursively checks expression for unknown node types and,
// when allowAggregate is false, rejects any [ir.Aggregate] found (§4.4:
// "aggregate used outside groupBy").
func validateExpr(expression ir.Expr, allowAggregate bool, col *diag.Collector) {
	if expression == nil {
		return
	}
	switch e := expression.(type) {
	case ir.Ref:
		if e.Field == "" {
			col.Collect(diag.NewIssue(diag.Error, diag.EEmptyReferencePath,
				"reference has an empty field path").WithAlias(e.Alias).Build())
		}
	case ir.Val:
		// literals need no further validation
	case ir.Func:
		for _, a := range e.Args {
			validateExpr(a, allowAggregate, col)
		}
	case ir.Aggregate:
		if !allowAggregate {
			col.Collect(diag.NewIssue(diag.Error, diag.EAggregateOutsideGroup,
				fmt.Sprintf("aggregate %s used outside groupBy", e.Kind)).Build())
			return
		}
		validateExpr(e.Arg, false, col)
	default:
		col.Collect(diag.NewIssue(diag.Error, diag.EUnknownExpression,
			fmt.Sprintf("unknown expression type %T", expression)).Build())
	}
}
