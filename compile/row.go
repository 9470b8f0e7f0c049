package compile

import (
	"strconv"
	"strings"

	"github.com/simon-lentz/ivm/dataflow"
	"github.com/simon-lentz/ivm/eval"
	"github.com/simon-lentz/ivm/immutable"
)

// namespaceFields prefixes every field name with "alias." so that rows
// from distinct aliases can be merged into one flat row without name
// collisions after a join, and so every stage downstream of the first map
// can treat a single-source query and a joined query identically (§4.3
// "Join wiring detail": "each side is keyed... the original record key is
// carried as payload").
func namespaceFields(alias string) dataflow.MapFunc {
	prefix := alias + "."
	return func(key string, row immutable.Row) (string, immutable.Row) {
		fields := make(map[string]any, row.Fields().Len())
		for name, v := range row.Fields().Range() {
			fields[prefix+name] = v.Unwrap()
		}
		return key, immutable.WrapRow(fields, row.Key().Clone())
	}
}

// rowForAlias extracts the sub-row previously namespaced under alias by
// [namespaceFields], stripping the prefix. Returns false if row carries no
// fields under that alias (e.g. the missing side of an outer join).
func rowForAlias(row immutable.Row, alias string) (immutable.Row, bool) {
	prefix := alias + "."
	fields := make(map[string]any)
	found := false
	for name, v := range row.Fields().Range() {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			fields[rest] = v.Unwrap()
			found = true
		}
	}
	if !found {
		return immutable.Row{}, false
	}
	return immutable.WrapRow(fields, row.Key().Clone()), true
}

// scopeForRow builds an [eval.Scope] binding every alias in aliases to its
// namespaced sub-row within row, for evaluating expressions that may
// reference any of them.
func scopeForRow(row immutable.Row, aliases []string) eval.Scope {
	scope := eval.NewScope()
	for _, alias := range aliases {
		if sub, ok := rowForAlias(row, alias); ok {
			scope = scope.WithRow(alias, sub)
		}
	}
	return scope
}

// keyFuncForField builds a [dataflow.KeyFunc] that extracts field from an
// already-namespaced row and renders it as a canonical string via
// [immutable.WrapKey], reusing the engine's one canonical-key-string
// scheme instead of a bespoke stringification.
func keyFuncForField(namespacedField string) dataflow.KeyFunc {
	return func(row immutable.Row) string {
		v, ok := row.Fields().Get(namespacedField)
		if !ok {
			return immutable.WrapKey(nil).String()
		}
		return immutable.WrapKey([]any{v.Unwrap()}).String()
	}
}

// mergeNamespaced builds a [dataflow.MergeFunc] that unions two already-
// namespaced rows into one composite row and assembles the composite key
// "[left_key,right_key]" (§4.3 "Join wiring detail").
func mergeNamespaced() dataflow.MergeFunc {
	return func(left immutable.Row, leftPresent bool, right immutable.Row, rightPresent bool) (string, immutable.Row) {
		fields := make(map[string]any)
		leftKey, rightKey := "", ""
		if leftPresent {
			for name, v := range left.Fields().Range() {
				fields[name] = v.Unwrap()
			}
			leftKey = left.Key().String()
		}
		if rightPresent {
			for name, v := range right.Fields().Range() {
				fields[name] = v.Unwrap()
			}
			rightKey = right.Key().String()
		}
		compositeKey := immutable.WrapKey([]any{leftKey, rightKey}).String()
		return compositeKey, immutable.WrapRow(fields, []any{leftKey, rightKey})
	}
}

// selectFieldName resolves the output field name for a select item: its
// explicit alias, or the bare field name of a direct column reference, or
// a positional fallback for computed expressions with no rename (§4.4
// "select": "\"\" keeps the source field name").
func selectFieldName(item selectItem, index int) string {
	if item.as != "" {
		return item.as
	}
	if item.refField != "" {
		return item.refField
	}
	return "_" + strconv.Itoa(index)
}

// selectItem is the resolved form of an [ir.SelectItem]: its rename (if
// any) and, when the underlying expression is a bare [ir.Ref], the field
// name to fall back to when no rename was given.
type selectItem struct {
	as       string
	refField string
}
