// Package source declares the abstract Source Collection surface the
// engine consumes (§6 "Outward - Source Collection surface"). Everything
// here is an interface or a value type describing a contract; this
// package owns no state and performs no I/O. Persistence, optimistic
// mutation, and sync transactors are external collaborators (§1
// Non-goals) that live on the other side of [Collection].
package source
