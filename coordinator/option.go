package coordinator

import (
	"log/slog"
	"time"

	ivmconfig "github.com/simon-lentz/ivm/config"
)

// Option configures a Coordinator.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	gcTime     time.Duration
	batchLimit int
}

// WithLogger enables debug logging for subscription routing, graph runs,
// and status transitions. Pass nil (the default) to disable.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithGCTime sets the idle duration after which an unsubscribed live
// query becomes eligible for cleanup (§6 "gcTime", default 5000ms).
func WithGCTime(d time.Duration) Option {
	return func(c *config) { c.gcTime = d }
}

// WithEngineConfig applies a loaded [ivmconfig.Config]'s gcTimeMillis and
// schedulerBatchLimit tunables in one call, so a deployment's single
// JSONC file configures both the coordinator and its scheduler.
func WithEngineConfig(cfg ivmconfig.Config) Option {
	return func(c *config) {
		c.gcTime = cfg.GCTime()
		c.batchLimit = cfg.SchedulerBatchLimit
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{gcTime: ivmconfig.DefaultGCTimeMillis * time.Millisecond}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
