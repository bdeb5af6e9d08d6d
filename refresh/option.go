package refresh

import (
	"time"

	"github.com/viant/cookiejwt"
)

// Option mutates Coordinator.
type Option func(*Coordinator)

// WithAuthFailure sets the hook invoked once per failed renewal cycle.
func WithAuthFailure(fn func()) Option {
	return func(c *Coordinator) {
		c.onAuthFailure = fn
	}
}

// WithRenewTimeout bounds the renewal call; expiry counts as a renewal failure.
func WithRenewTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.renewTimeout = timeout
		}
	}
}

// WithMaxPending caps the number of requests parked behind one renewal.
func WithMaxPending(size int) Option {
	return func(c *Coordinator) {
		c.pending = NewQueue(size)
	}
}

// WithLogger sets the coordinator logger.
func WithLogger(logger cookiejwt.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}
