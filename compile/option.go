package compile

import "log/slog"

// Option configures a [Compiler].
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger passed through to the compiled graph and its
// operators.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
