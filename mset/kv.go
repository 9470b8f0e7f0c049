package mset

import "fmt"

// KV pairs a row key with its row value; every dataflow stream carries
// MultiSet[KV[K, V]] (§4.3: edges are difference streams carrying
// MultiSet[T] where T is typically a keyed row).
type KV[K comparable, V any] struct {
	Key   K
	Value V
}

// HashKV builds a HashFunc for KV[K, V] from a HashFunc over V alone; two
// KV entries hash equal only when both their key and their value hash
// equal, which is what lets Consolidate tell an update (same key, new
// value) apart from a duplicate insert (same key, same value).
func HashKV[K comparable, V any](valueHash HashFunc[V]) HashFunc[KV[K, V]] {
	return func(kv KV[K, V]) string {
		return fmt.Sprintf("%v|%s", kv.Key, valueHash(kv.Value))
	}
}
