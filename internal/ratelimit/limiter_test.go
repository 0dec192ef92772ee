package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances manually so window expiry is deterministic.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestLimiter(max int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return newLimiter(max, window, clock.now), clock
}

func TestAllowWithinWindow(t *testing.T) {
	l, clock := newTestLimiter(3, 10*time.Second)
	const user = int64(42)

	assert.True(t, l.Allow(user))
	assert.True(t, l.Allow(user))
	assert.True(t, l.Allow(user))
	assert.False(t, l.Allow(user), "4th request within the window must be throttled")

	// still throttled halfway through
	clock.advance(5 * time.Second)
	assert.False(t, l.Allow(user))

	// allowed again once the window has elapsed
	clock.advance(6 * time.Second)
	assert.True(t, l.Allow(user))
}

func TestIdentitiesIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 10*time.Second)

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2), "another identity has its own window")
}

func TestRetryAfter(t *testing.T) {
	l, clock := newTestLimiter(2, 10*time.Second)
	const user = int64(7)

	assert.Zero(t, l.RetryAfter(user))

	assert.True(t, l.Allow(user))
	clock.advance(2 * time.Second)
	assert.True(t, l.Allow(user))
	assert.False(t, l.Allow(user))

	// oldest acquisition was 2s ago, window is 10s
	assert.Equal(t, 8*time.Second, l.RetryAfter(user))

	clock.advance(8 * time.Second)
	assert.Zero(t, l.RetryAfter(user))
	assert.True(t, l.Allow(user))
}

func TestSweepReleasesStaleIdentities(t *testing.T) {
	l, clock := newTestLimiter(3, 10*time.Second)

	for id := int64(1); id <= 5; id++ {
		assert.True(t, l.Allow(id))
	}
	assert.Equal(t, 5, l.tracked())

	clock.advance(11 * time.Second)
	l.sweep()
	assert.Zero(t, l.tracked(), "idle identities must be evicted")
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(3, time.Second)
	l.Stop()
	l.Stop()
}
