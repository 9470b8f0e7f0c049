package ir

// Expr is the sealed union of expression node kinds (§9): ref, val, func,
// aggregate. A type switch over the concrete type is the only supported
// form of dispatch.
type Expr interface {
	expr()
}

// Ref references a row field, optionally qualified by the alias the field
// comes from (required once a query joins more than one collection).
type Ref struct {
	Alias string // "" for an unqualified reference
	Field string
}

func (Ref) expr() {}

// Val is a literal value. Comparisons against a Val use [internal/collate]'s
// total order.
type Val struct {
	Value any
}

func (Val) expr() {}

// Func is a named function application: comparison operators ("=", "<",
// ">="...), boolean connectives ("and", "or", "not"), and scalar
// functions. Args are evaluated left to right.
type Func struct {
	Name string
	Args []Expr
}

func (Func) expr() {}

// AggregateKind names a supported groupBy aggregate fold (§4.4).
type AggregateKind string

const (
	AggregateCount AggregateKind = "count"
	AggregateSum   AggregateKind = "sum"
	AggregateAvg   AggregateKind = "avg"
	AggregateMin   AggregateKind = "min"
	AggregateMax   AggregateKind = "max"
)

// Aggregate folds Arg over every row in a group. Arg is nil for
// AggregateCount when counting rows rather than a specific field.
type Aggregate struct {
	Kind AggregateKind
	Arg  Expr
}

func (Aggregate) expr() {}
