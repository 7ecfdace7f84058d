// Package ratelimit implements a sliding window limiter for sensitive
// operations. The window is observed per attempt: an attempt is admitted when
// strictly fewer than the maximum number of prior attempts fall inside the
// window ending now, and the admitted attempt is recorded in the same
// critical section.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the sliding window length.
	DefaultWindow = 10 * time.Second
	// DefaultMaxAttempts is the number of attempts admitted per window.
	DefaultMaxAttempts = 3
)

// Limiter tracks attempts per key over a sliding window. Safe for concurrent
// use.
type Limiter struct {
	window      time.Duration
	maxAttempts int
	now         func() time.Time

	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewLimiter returns a Limiter admitting at most maxAttempts attempts per key
// within window. Non-positive arguments fall back to the defaults.
func NewLimiter(window time.Duration, maxAttempts int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Limiter{
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
		attempts:    map[string][]time.Time{},
	}
}

// Allow reports whether an attempt for key is admitted now. Admitted attempts
// are recorded; denied attempts are not, so a denied caller does not extend
// its own lockout.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= l.maxAttempts {
		l.attempts[key] = recent
		return false
	}

	l.attempts[key] = append(recent, now)
	return true
}

// Reset forgets all recorded attempts for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Remaining reports how many attempts key could still make right now.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	count := 0
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			count++
		}
	}
	if count >= l.maxAttempts {
		return 0
	}
	return l.maxAttempts - count
}
