package eval

import "github.com/simon-lentz/ivm/immutable"

// Scope binds alias names to the row currently in view, so a [ir.Ref] with
// a non-empty Alias can resolve which joined row it refers to. Scope is
// immutable; [Scope.WithRow] returns a new Scope with the extra binding,
// so the same base scope can be safely extended for several rows
// concurrently (e.g. once per row while evaluating a filter).
type Scope struct {
	rows map[string]immutable.Row

	// defaultAlias is looked up when a Ref has an empty Alias, i.e. an
	// unqualified field reference in a single-source query.
	defaultAlias string
}

// NewScope returns an empty Scope.
func NewScope() Scope {
	return Scope{}
}

// WithRow returns a new Scope with row bound to alias. If this is the
// first binding, alias also becomes the scope's default alias for
// unqualified references.
func (s Scope) WithRow(alias string, row immutable.Row) Scope {
	rows := make(map[string]immutable.Row, len(s.rows)+1)
	for k, v := range s.rows {
		rows[k] = v
	}
	rows[alias] = row

	defaultAlias := s.defaultAlias
	if defaultAlias == "" {
		defaultAlias = alias
	}
	return Scope{rows: rows, defaultAlias: defaultAlias}
}

// Lookup resolves a field reference. An empty alias resolves against the
// scope's default alias.
func (s Scope) Lookup(alias, field string) (any, bool) {
	if alias == "" {
		alias = s.defaultAlias
	}
	row, ok := s.rows[alias]
	if !ok {
		return nil, false
	}
	v, ok := row.Fields().Get(field)
	if !ok {
		return nil, false
	}
	return v.Unwrap(), true
}

// Row returns the row bound to alias, if any.
func (s Scope) Row(alias string) (immutable.Row, bool) {
	r, ok := s.rows[alias]
	return r, ok
}
