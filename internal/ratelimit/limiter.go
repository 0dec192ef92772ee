// Package ratelimit implements a per-identity sliding-window throttle.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows at most max acquisitions per identity within the trailing
// window. Windows live in memory only; losing them on restart just resets
// throttling state.
type Limiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[int64][]time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a Limiter and starts a background sweep that releases windows
// for identities inactive beyond the window span. Call Stop when done.
func New(max int, window time.Duration) *Limiter {
	l := newLimiter(max, window, time.Now)
	go l.sweepLoop()
	return l
}

func newLimiter(max int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		now:     now,
		windows: make(map[int64][]time.Time),
		stopCh:  make(chan struct{}),
	}
}

// Allow reports whether identity may make a request now, recording the
// acquisition when it may. It never blocks; a throttled caller should retry
// after RetryAfter.
func (l *Limiter) Allow(identity int64) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w := evict(l.windows[identity], cutoff)
	if len(w) >= l.max {
		l.windows[identity] = w
		return false
	}
	l.windows[identity] = append(w, now)
	return true
}

// RetryAfter returns how long identity should wait before the oldest
// acquisition falls out of the window. Zero means a request would be allowed
// immediately.
func (l *Limiter) RetryAfter(identity int64) time.Duration {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w := evict(l.windows[identity], cutoff)
	l.windows[identity] = w
	if len(w) < l.max {
		return 0
	}
	return w[0].Add(l.window).Sub(now)
}

// Stop terminates the background sweep.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// tracked returns the number of identities currently holding a window.
func (l *Limiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) sweepLoop() {
	interval := l.window
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

// sweep drops identities whose newest acquisition is older than the window,
// so the map cannot grow without bound across distinct identities.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for identity, w := range l.windows {
		if len(w) == 0 || w[len(w)-1].Before(cutoff) {
			delete(l.windows, identity)
		}
	}
}

// evict drops timestamps at or before cutoff. Timestamps are appended in
// order, so the slice stays sorted.
func evict(w []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(w) && !w[i].After(cutoff) {
		i++
	}
	return w[i:]
}
