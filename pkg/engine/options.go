package engine

import (
	"log/slog"
	"os"
)

type config struct {
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// Option configures an Engine at construction time.
type Option func(*config)

// WithLogger installs a custom slog.Logger for protocol-violation
// diagnostics. The default logs warnings and above to stderr.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}
