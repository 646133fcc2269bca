package gutenberg

import (
	"context"
	"sync"
	"time"
)

// limiter enforces a minimum spacing between consecutive requests. The last
// request time belongs to one Client, so separate clients never share timing
// state.
type limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

func newLimiter(interval time.Duration, now func() time.Time, sleep func(context.Context, time.Duration) error) *limiter {
	return &limiter{interval: interval, now: now, sleep: sleep}
}

// wait blocks until interval has elapsed since the previous call returned.
func (l *limiter) wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.last.IsZero() && l.interval > 0 {
		if elapsed := l.now().Sub(l.last); elapsed < l.interval {
			if err := l.sleep(ctx, l.interval-elapsed); err != nil {
				return err
			}
		}
	}
	l.last = l.now()
	return nil
}
