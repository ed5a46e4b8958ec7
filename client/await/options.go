package await

import "time"

// Defaults for the polling policy.
const (
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
	DefaultMaxElapsed      = 2 * time.Minute
	DefaultMultiplier      = 2.0
)

type config struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
	multiplier      float64
}

// Option tunes the polling policy.
type Option func(*config)

// WithInitialInterval sets the wait before the second attempt.
func WithInitialInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// WithMaxInterval caps the wait between attempts.
func WithMaxInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxInterval = d
		}
	}
}

// WithMaxElapsed bounds the total time spent polling.
func WithMaxElapsed(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxElapsed = d
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		initialInterval: DefaultInitialInterval,
		maxInterval:     DefaultMaxInterval,
		maxElapsed:      DefaultMaxElapsed,
		multiplier:      DefaultMultiplier,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}
