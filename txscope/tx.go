package txscope

import "context"

// Tx is one transaction's scheduling handle (§4.7). Subscriptions
// participating in the same source-level transaction share a Tx (or,
// equivalently, thread its [Tx.ID] through their own transaction
// context) so their deltas land in the same scheduler queue and flush
// together as one graph run.
//
// Tx is not safe for concurrent field access beyond what [Scheduler]
// itself serializes; Truncate/Truncated are expected to be called from
// the single-threaded coordinator/subscription path described in §5.
type Tx struct {
	id        ContextID
	scheduler *Scheduler
	truncated bool
}

// ID returns the opaque context id subscriptions thread through their
// own transaction context.
func (tx *Tx) ID() ContextID {
	return tx.id
}

// Truncate marks the transaction as carrying a "must-refetch"-like
// truncation signal (§9 open question 2): on flush, every job this Tx's
// participants enqueue via [Scheduler.EnqueueTruncate] runs before any
// job enqueued via the ordinary [Scheduler.Enqueue].
func (tx *Tx) Truncate() {
	tx.truncated = true
}

// Truncated reports whether [Tx.Truncate] was called. Source collections
// consult this before deciding whether to enqueue their pending deltas
// as an ordinary job or, first, a truncate job.
func (tx *Tx) Truncated() bool {
	return tx.truncated
}

// Enqueue deposits a run job for this transaction without running it.
func (tx *Tx) Enqueue(job Job) {
	tx.scheduler.Enqueue(tx.id, job)
}

// EnqueueTruncate deposits a job that runs before every ordinary job
// queued for this transaction, for use when [Tx.Truncated] is true.
func (tx *Tx) EnqueueTruncate(job Job) {
	tx.scheduler.EnqueueTruncate(tx.id, job)
}

// EnqueueLoadMore deposits a load-more callback for this transaction.
func (tx *Tx) EnqueueLoadMore(cb LoadMore) {
	tx.scheduler.EnqueueLoadMore(tx.id, cb)
}

// HasPendingJobs reports whether this transaction has any queued work.
func (tx *Tx) HasPendingJobs() bool {
	return tx.scheduler.HasPendingJobs(tx.id)
}

// Commit flushes every job and load-more callback this transaction
// accumulated, to a fixed point (§4.7).
func (tx *Tx) Commit(ctx context.Context) error {
	return tx.scheduler.Flush(ctx, tx.id)
}

// Rollback flushes this transaction exactly like [Tx.Commit]. The
// scheduler draws no distinction between a commit and a rollback: a
// rollback's compensating (inverse) deltas are the source collection's
// responsibility to enqueue, as ordinary jobs, before Rollback is called
// (§4.7); once enqueued, running them to completion is all "leaving no
// scheduled work for this context" requires.
func (tx *Tx) Rollback(ctx context.Context) error {
	return tx.scheduler.Flush(ctx, tx.id)
}
