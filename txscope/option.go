package txscope

import "log/slog"

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	batchLimit int
}

// WithLogger enables debug logging for flush sequencing. Pass nil (the
// default) to disable.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithBatchLimit sets the job-count threshold above which [Scheduler.Flush]
// logs a warning for one iteration's batch (config's schedulerBatchLimit).
// It is advisory only: Flush always runs every queued job regardless,
// since correctness never allows dropping work. 0 (the default) disables
// the check.
func WithBatchLimit(n int) Option {
	return func(c *config) {
		c.batchLimit = n
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
