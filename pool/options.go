package pool

import (
	"io"
	"log/slog"
)

// DefaultMaxOrderLimit bounds the largest block order any Pool will ever
// support, independent of how many frames it is given. It plays the role
// of the implementation constant MAX_ORDER.
const DefaultMaxOrderLimit int32 = 11

type config struct {
	logger        *slog.Logger
	maxOrderLimit int32
}

func defaultConfig() config {
	return config{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxOrderLimit: DefaultMaxOrderLimit,
	}
}

// Option configures a Pool at construction time.
type Option func(*config)

// WithLogger routes the pool's diagnostic and programmer-error logging
// through l instead of discarding it. Each Alloc, each coalesce step and
// each external-frame attach is logged at Debug; invariant violations and
// extract's unsplit fallback are logged at Error. Retain never logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxOrderLimit overrides DefaultMaxOrderLimit. The pool's effective
// max_order is still capped by ⌈log2(nr_pages)⌉.
func WithMaxOrderLimit(n int32) Option {
	return func(c *config) { c.maxOrderLimit = n }
}
