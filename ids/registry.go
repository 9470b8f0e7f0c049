package ids

import "sync"

// IdentityRegistry memoizes a value T keyed by the pointer identity of a
// key object K, used by the compiler's subquery cache (§4.4): repeated
// references to the same subquery IR node must produce one compiled
// operator subtree, not one per reference.
//
// The registry is append-only and safe for concurrent use, mirroring the
// teacher's schema.Registry (O(1) lookup, no removal). There is no actual
// weak-reference behavior (Go has none to offer short of a finalizer
// dance not worth the complexity here); the registry instead is scoped to
// the lifetime of one compiled pipeline and discarded with it, which gives
// the same effective lifetime the design note's "weak cache" wants.
type IdentityRegistry[K comparable, T any] struct {
	mu      sync.RWMutex
	entries map[K]T
}

// NewIdentityRegistry creates an empty registry.
func NewIdentityRegistry[K comparable, T any]() *IdentityRegistry[K, T] {
	return &IdentityRegistry[K, T]{entries: make(map[K]T)}
}

// Lookup returns the cached value for key and true, or the zero value and
// false if key has not been registered.
func (r *IdentityRegistry[K, T]) Lookup(key K) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// GetOrCompute returns the cached value for key if present; otherwise it
// calls compute, stores the result, and returns it. compute is invoked at
// most once per key even under concurrent callers racing on the same key
// for the first time (the second caller observes the first caller's
// stored result rather than recomputing).
func (r *IdentityRegistry[K, T]) GetOrCompute(key K, compute func() T) T {
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[key]; ok {
		return v
	}
	v = compute()
	r.entries[key] = v
	return v
}

// Store records value for key unconditionally, overwriting any existing
// entry. Used instead of [IdentityRegistry.GetOrCompute] when the compute
// step can fail and a failure must not be cached (the compiler's subquery
// cache never stores a subquery that failed to compile, so a later
// reference gets a fresh attempt and its own diagnostics).
func (r *IdentityRegistry[K, T]) Store(key K, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = value
}

// Len reports the number of cached entries.
func (r *IdentityRegistry[K, T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
