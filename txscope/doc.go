// Package txscope implements the transaction-scoped scheduler (§4.7): a
// per-context queue of run jobs and load-more callbacks that lets an
// N-collection transaction coalesce into exactly one graph run instead of
// one run per mutated collection.
//
// A [Tx] carries an opaque context id, generated with
// [github.com/google/uuid], which source collections thread through their
// own transaction context (mirroring [github.com/simon-lentz/ivm/internal/trace.WithRequestID],
// which carries the same id into log lines emitted while a flush is in
// progress). Subscriptions append jobs to a Tx without running anything;
// [Scheduler.Flush] drains the queue to a fixed point on commit or
// rollback.
package txscope
