package utils

import "time"

// Backoff describes a capped exponential retry schedule.
type Backoff struct {
	MaxRetries int
	Delay      time.Duration
	MaxDelay   time.Duration
}

// Next returns the wait before retry number attempt (0 based).
func (b Backoff) Next(attempt int) time.Duration {
	d := b.Delay << attempt
	if d <= 0 || (b.MaxDelay > 0 && d > b.MaxDelay) {
		return b.MaxDelay
	}
	return d
}

// Cap bounds d by MaxDelay when one is set.
func (b Backoff) Cap(d time.Duration) time.Duration {
	if b.MaxDelay > 0 && d > b.MaxDelay {
		return b.MaxDelay
	}
	return d
}
