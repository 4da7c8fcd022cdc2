package engine

import (
	"log/slog"
	"time"
)

// engineOptions holds every Option's effect, filled in by New before the
// engine does anything else.
type engineOptions struct {
	logger         *slog.Logger
	reloadDebounce time.Duration
	transitionMS   float64
}

// Option configures an Engine at construction time.
type Option func(*engineOptions)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithReloadDebounce overrides reload.DefaultDebounce.
func WithReloadDebounce(d time.Duration) Option {
	return func(o *engineOptions) { o.reloadDebounce = d }
}

// WithTransitionMillis overrides the crossfade length (default 10ms, one
// hundredth of a second).
func WithTransitionMillis(ms float64) Option {
	return func(o *engineOptions) { o.transitionMS = ms }
}
