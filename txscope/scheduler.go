package txscope

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/simon-lentz/ivm/internal/trace"
)

// ContextID identifies one transaction's scheduling context (§4.7). It is
// opaque to the scheduler; callers never parse it.
type ContextID string

// NewContextID generates a fresh, unused context id.
func NewContextID() ContextID {
	return ContextID(uuid.NewString())
}

// Job is queued work tied to one transaction context: typically "route
// this delta into a graph input and run the graph". A job is expected to
// be idempotent in the sense the design notes require: calling it twice
// with no pending input is a no-op, but the scheduler itself never calls
// a job more than once.
type Job func(ctx context.Context) error

// LoadMore is a callback a job may schedule while it runs, to be invoked
// once the current batch of jobs has finished (§4.7: "load-more callback
// queue"). A typical load-more callback asks a lazy or windowed
// subscription to fetch another page of keys now that the active side of
// a join has settled.
type LoadMore func(ctx context.Context) error

// Scheduler coalesces the run jobs and load-more callbacks deposited
// during a transaction into one flush (§4.7). The zero value is not
// ready to use; construct with [New].
//
// Scheduler is safe for concurrent use: Enqueue/EnqueueTruncate/
// EnqueueLoadMore/HasPendingJobs/Flush all take an internal mutex,
// matching the single-threaded-cooperative model (§5) where callers may
// still originate from different goroutines (e.g. async loadSubset
// completions) even though no two of them ever touch the graph at once.
type Scheduler struct {
	cfg *config

	mu           sync.Mutex
	jobs         map[ContextID][]Job
	truncateJobs map[ContextID][]Job
	loadMore     map[ContextID][]LoadMore
}

// New returns an empty Scheduler.
func New(opts ...Option) *Scheduler {
	return &Scheduler{
		cfg:          applyOptions(opts),
		jobs:         make(map[ContextID][]Job),
		truncateJobs: make(map[ContextID][]Job),
		loadMore:     make(map[ContextID][]LoadMore),
	}
}

// Begin opens a new transaction context.
func (s *Scheduler) Begin() *Tx {
	return &Tx{id: NewContextID(), scheduler: s}
}

// Enqueue deposits a run job for id without running anything.
func (s *Scheduler) Enqueue(id ContextID, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = append(s.jobs[id], job)
}

// EnqueueTruncate deposits a job that must run before every ordinary job
// queued for id, used when the transaction carries the truncate flag
// (§9 open question 2, §D): a participating subscription's
// "delete all previously synced keys" job is enqueued this way so it
// always precedes whatever inserts/updates the same transaction also
// queued, regardless of call order.
func (s *Scheduler) EnqueueTruncate(id ContextID, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.truncateJobs[id] = append(s.truncateJobs[id], job)
}

// EnqueueLoadMore deposits a load-more callback for id, run once the
// current batch of jobs for id has completed.
func (s *Scheduler) EnqueueLoadMore(id ContextID, cb LoadMore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadMore[id] = append(s.loadMore[id], cb)
}

// HasPendingJobs reports whether id has any queued work: truncate jobs,
// ordinary jobs, or load-more callbacks. Exposed for tests per §4.7.
func (s *Scheduler) HasPendingJobs(id ContextID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.truncateJobs[id]) > 0 || len(s.jobs[id]) > 0 || len(s.loadMore[id]) > 0
}

// takeJobs drains and returns id's currently queued truncate and
// ordinary jobs, leaving both queues empty for id.
func (s *Scheduler) takeJobs(id ContextID) (truncate []Job, jobs []Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	truncate = s.truncateJobs[id]
	jobs = s.jobs[id]
	delete(s.truncateJobs, id)
	delete(s.jobs, id)
	return truncate, jobs
}

// takeLoadMore drains and returns id's currently queued load-more
// callbacks, leaving the queue empty for id.
func (s *Scheduler) takeLoadMore(id ContextID) []LoadMore {
	s.mu.Lock()
	defer s.mu.Unlock()
	loadMore := s.loadMore[id]
	delete(s.loadMore, id)
	return loadMore
}

// Flush runs every job queued for id to a fixed point (§4.7): the
// truncate jobs (if any, always first and only on the first iteration),
// then the ordinary jobs queued so far, then any load-more callbacks the
// jobs just run produced, repeating until a pass finds nothing left to
// run. Flush is idempotent - calling it again with no pending work
// returns nil immediately - and it leaves no scheduled work for id
// whether the caller is committing or rolling back; the scheduler itself
// is blind to the distinction, since a rollback's compensating deltas
// arrive as ordinary jobs the source collection enqueued beforehand.
func (s *Scheduler) Flush(ctx context.Context, id ContextID) error {
	op := trace.Begin(ctx, s.cfg.logger, "ivm.txscope.flush", slog.String("context_id", string(id)))
	var err error
	defer func() { op.End(err) }()

	first := true
	for {
		truncate, jobs := s.takeJobs(id)
		batch := jobs
		if first && len(truncate) > 0 {
			batch = append(append([]Job(nil), truncate...), jobs...)
		}
		first = false

		if len(batch) == 0 {
			s.mu.Lock()
			pendingLoadMore := len(s.loadMore[id]) > 0
			s.mu.Unlock()
			if !pendingLoadMore {
				return nil
			}
		}
		if s.cfg.batchLimit > 0 && len(batch) > s.cfg.batchLimit {
			trace.Warn(ctx, s.cfg.logger, "ivm.txscope.batch_limit_exceeded",
				slog.String("context_id", string(id)), slog.Int("batch_size", len(batch)),
				slog.Int("limit", s.cfg.batchLimit))
		}
		for _, job := range batch {
			if err = job(ctx); err != nil {
				return err
			}
		}
		for _, cb := range s.takeLoadMore(id) {
			if err = cb(ctx); err != nil {
				return err
			}
		}
	}
}
