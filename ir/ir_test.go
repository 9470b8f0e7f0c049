package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExprVariantsImplementExpr(t *testing.T) {
	var exprs = []Expr{
		Ref{Field: "id"},
		Val{Value: 1},
		Func{Name: "=", Args: []Expr{Ref{Field: "id"}, Val{Value: 1}}},
		Aggregate{Kind: AggregateCount},
	}
	assert.Len(t, exprs, 4)
}

func TestFromVariantsImplementFrom(t *testing.T) {
	sub := &Query{From: CollectionRef{Alias: "u", CollectionID: "users"}}
	var froms = []From{
		CollectionRef{Alias: "u", CollectionID: "users"},
		QueryRef{Alias: "sub", Query: sub},
	}
	assert.Len(t, froms, 2)
}

func TestQueryRefIdentitySharesSubqueryPointer(t *testing.T) {
	sub := &Query{From: CollectionRef{Alias: "u", CollectionID: "users"}}
	a := QueryRef{Alias: "a", Query: sub}
	b := QueryRef{Alias: "b", Query: sub}
	assert.Same(t, a.Query, b.Query)
}
