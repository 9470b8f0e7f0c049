package dataflow

import "log/slog"

// GraphOption configures graph construction behavior.
type GraphOption func(*graphConfig)

type graphConfig struct {
	logger *slog.Logger
}

// WithLogger enables debug logging for graph runs. Pass nil to disable
// logging (the default).
func WithLogger(logger *slog.Logger) GraphOption {
	return func(cfg *graphConfig) {
		cfg.logger = logger
	}
}
