package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock steps time manually for deterministic window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(millis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(millis)
}

func newTestLimiter(clock *fakeClock) *Limiter {
	limiter := NewLimiter(10*time.Second, 3)
	limiter.now = clock.Now
	return limiter
}

func TestLimiterAllow(t *testing.T) {
	t.Run("admits up to the maximum inside the window", func(t *testing.T) {
		clock := newFakeClock()
		limiter := newTestLimiter(clock)

		for i := int64(0); i < 3; i++ {
			clock.Set(i)
			assert.True(t, limiter.Allow("op"), "attempt at t=%dms", i)
		}

		clock.Set(3)
		assert.False(t, limiter.Allow("op"))
	})

	t.Run("admits again once the window slides past old attempts", func(t *testing.T) {
		clock := newFakeClock()
		limiter := newTestLimiter(clock)

		for i := int64(0); i < 3; i++ {
			clock.Set(i)
			assert.True(t, limiter.Allow("op"))
		}

		clock.Set(10000)
		assert.False(t, limiter.Allow("op"), "attempt at t=0 is still inside the window ending at t=10000")

		clock.Set(10001)
		assert.True(t, limiter.Allow("op"))
	})

	t.Run("denied attempts do not extend the lockout", func(t *testing.T) {
		clock := newFakeClock()
		limiter := newTestLimiter(clock)

		for i := int64(0); i < 3; i++ {
			clock.Set(i)
			assert.True(t, limiter.Allow("op"))
		}

		// Repeated denials must not push the recovery point forward.
		for i := int64(100); i < 9000; i += 1000 {
			clock.Set(i)
			assert.False(t, limiter.Allow("op"))
		}

		clock.Set(10001)
		assert.True(t, limiter.Allow("op"))
	})

	t.Run("keys are limited independently", func(t *testing.T) {
		clock := newFakeClock()
		limiter := newTestLimiter(clock)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("view_logs"))
		}
		assert.False(t, limiter.Allow("view_logs"))
		assert.True(t, limiter.Allow("clear_data"))
	})

	t.Run("reset clears the window for a key", func(t *testing.T) {
		clock := newFakeClock()
		limiter := newTestLimiter(clock)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("op"))
		}
		assert.False(t, limiter.Allow("op"))

		limiter.Reset("op")
		assert.True(t, limiter.Allow("op"))
	})

	t.Run("concurrent attempts never exceed the maximum", func(t *testing.T) {
		limiter := NewLimiter(10*time.Second, 3)

		var wg sync.WaitGroup
		var mu sync.Mutex
		admitted := 0
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("op") {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, admitted)
	})
}

func TestLimiterRemaining(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(clock)

	assert.Equal(t, 3, limiter.Remaining("op"))

	limiter.Allow("op")
	limiter.Allow("op")
	assert.Equal(t, 1, limiter.Remaining("op"))

	limiter.Allow("op")
	assert.Equal(t, 0, limiter.Remaining("op"))

	clock.Set(10001)
	assert.Equal(t, 3, limiter.Remaining("op"))
}

func TestLimiterDefaults(t *testing.T) {
	limiter := NewLimiter(0, 0)
	assert.Equal(t, DefaultWindow, limiter.window)
	assert.Equal(t, DefaultMaxAttempts, limiter.maxAttempts)
}
