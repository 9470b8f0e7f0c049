// Package ivm implements a client-side incremental view maintenance
// engine: a reactive, in-memory database that keeps SQL-like live queries
// over one or more source collections up to date by propagating only the
// changes a mutation produces, rather than re-evaluating a query from
// scratch.
//
// # Architecture Overview
//
// The module is organized into layers with strict dependency ordering:
//
//	Foundation tier (no dependencies outside this tier; index builds on mset):
//	  - diag: Structured diagnostics with stable error codes
//	  - immutable: Read-only row/value wrappers for safe data sharing
//	  - ids: Operator/stream identifiers, alias paths, window spans
//	  - mset: Signed-multiplicity multiset, the dataflow's change currency
//	  - index: Hybrid keyed index used by the join and reduce operators
//
//	Query tier:
//	  - ir: Query intermediate representation (Ref/Val/Func/Aggregate, ...)
//	  - eval: Expression evaluation over rows (where/select/having/fold)
//	  - fracindex: Fractional lexicographic keys for ordered live windows
//	  - compile: IR -> dataflow graph compiler, join planning
//
//	Execution tier:
//	  - dataflow: Operator graph (map/filter/join/reduce/orderBy/output)
//	  - txscope: Transaction-scoped job scheduler (run coalescing)
//	  - source: The external collaborator boundary (Collection interface)
//	  - coordinator: Live-query lifecycle, subscriptions, lazy key loading
//	  - config: Engine-wide tunables loaded from an optional JSONC file
//
// # Entry Points
//
// Compiling a query:
//
//	import "github.com/simon-lentz/ivm/compile"
//
//	pipeline, result := compile.New().Compile(query)
//	if !result.OK() {
//	    // compilation diagnostics
//	}
//
// Running it as a live query:
//
//	import "github.com/simon-lentz/ivm/coordinator"
//
//	coord, result := coordinator.New(query, collections)
//	if !result.OK() {
//	    // compilation diagnostics
//	}
//	unsub := coord.SubscribeChanges(func(changes []source.ValueChange) {
//	    // insert/update/delete changes as the live query updates
//	})
//	if err := coord.Start(ctx); err != nil {
//	    // a referenced collection was not supplied, or Start was already called
//	}
//
// # Subpackages
//
// See the individual package documentation for detailed usage:
//
//   - [github.com/simon-lentz/ivm/diag]: Structured diagnostics
//   - [github.com/simon-lentz/ivm/immutable]: Read-only row/value wrappers
//   - [github.com/simon-lentz/ivm/ids]: Identifiers, alias paths, windows
//   - [github.com/simon-lentz/ivm/mset]: Signed-multiplicity multiset
//   - [github.com/simon-lentz/ivm/index]: Hybrid keyed index
//   - [github.com/simon-lentz/ivm/ir]: Query intermediate representation
//   - [github.com/simon-lentz/ivm/eval]: Expression evaluator
//   - [github.com/simon-lentz/ivm/fracindex]: Fractional lexicographic keys
//   - [github.com/simon-lentz/ivm/compile]: Query compiler
//   - [github.com/simon-lentz/ivm/dataflow]: Operator graph
//   - [github.com/simon-lentz/ivm/txscope]: Transaction-scoped scheduler
//   - [github.com/simon-lentz/ivm/source]: External collaborator boundary
//   - [github.com/simon-lentz/ivm/coordinator]: Live-query coordinator
//   - [github.com/simon-lentz/ivm/config]: Engine-wide tunables
package ivm
