package immutable

// Row is an immutable, content-addressable record: the payload type carried
// by every MultiSet element (§3). Two rows are Equal when their keys and
// fields are structurally equal, regardless of origin, which is what lets the multiset
// layer consolidate identical rows by summing multiplicities instead of
// treating them as distinct entries.
type Row struct {
	fields Properties
	key    Key
}

// WrapRow wraps a field map with ownership transfer semantics (see [Wrap]).
// key identifies the row for grouping and join matching; it is typically
// the primary key columns, a composite of join columns, or the row's
// position when no key is declared.
func WrapRow(fields map[string]any, key []any) Row {
	return Row{fields: WrapProperties(fields), key: WrapKey(key)}
}

// WrapRowClone wraps a deep clone of fields and key (see [WrapClone]).
func WrapRowClone(fields map[string]any, key []any) Row {
	return Row{fields: WrapPropertiesClone(fields), key: WrapKeyClone(key)}
}

// Fields returns the row's field values.
func (r Row) Fields() Properties {
	return r.fields
}

// Key returns the row's grouping/join key.
func (r Row) Key() Key {
	return r.key
}

// Equal reports whether two rows have identical keys and field values. Field
// comparison is order-independent; values are compared via their canonical
// JSON-ish key string, which is stable across the map's unordered iteration.
func (r Row) Equal(other Row) bool {
	if r.key.String() != other.key.String() {
		return false
	}
	if r.fields.Len() != other.fields.Len() {
		return false
	}
	for name, v := range r.fields.Range() {
		ov, ok := other.fields.Get(name)
		if !ok {
			return false
		}
		if !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b Value) bool {
	return computeKeyString([]Value{a}) == computeKeyString([]Value{b})
}

// Clone returns a mutable copy of the row's field values.
func (r Row) Clone() map[string]any {
	return r.fields.Clone()
}

// CanonicalString returns a deterministic string that is equal for two
// rows exactly when [Row.Equal] reports them equal. Used as the dataflow
// layer's multiset content-hash function (§3: "equality is user-supplied
// via a content hash function"), since it lets consolidate group by value
// without holding every Row in memory twice.
func (r Row) CanonicalString() string {
	values := make([]Value, 0, r.fields.Len()+1)
	values = append(values, Value{val: r.key.String()})
	for name := range r.fields.SortedKeys() {
		v, _ := r.fields.Get(name)
		values = append(values, Value{val: name}, v)
	}
	return computeKeyString(values)
}
