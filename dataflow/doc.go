// Package dataflow builds and runs the operator graph that does the
// actual incremental work (§4.3, §4.4): a DAG of operators, each
// consuming the deltas its upstreams emitted this tick and emitting its
// own, scheduled by a single topologically-ordered pass (the graph
// never needs multiple passes per tick because nodes are built in
// dependency order and each reads its upstream's output for the
// current tick before the upstream advances to the next).
//
// Rows flowing through the graph are monomorphized to
// mset.KV[string, immutable.Row]: the key is always a string (a primary
// key, a composite join key, or a caller-assigned position); keys are
// used as given, without Unicode normalization. This trades the fully generic
// K/V operators of [github.com/simon-lentz/ivm/mset] and
// [github.com/simon-lentz/ivm/index] for a concrete graph wiring layer,
// which is what the query compiler actually needs to build.
package dataflow
