// Package countdown implements the level attempt and test timers: a
// counter decremented on every tick that expires exactly once at zero.
package countdown

import (
	"context"
	"sync"
	"time"
)

// Second is the production tick interval.
const Second = time.Second

// Countdown counts down from a number of ticks. It is safe for concurrent use.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	fired     bool
	stopped   bool

	ticks   chan int
	expired chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// Start begins counting down seconds ticks of length tick. Cancelling ctx
// stops the countdown without expiring it. A countdown that starts at zero or
// below expires immediately.
func Start(ctx context.Context, seconds int, tick time.Duration) *Countdown {
	c := &Countdown{
		remaining: max(seconds, 0),
		ticks:     make(chan int, 1),
		expired:   make(chan struct{}),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.run(ctx, tick)
	return c
}

func (c *Countdown) run(ctx context.Context, tick time.Duration) {
	defer close(c.done)
	if c.Remaining() == 0 {
		c.fire()
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-c.stop:
			return
		case <-t.C:
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.remaining--
			left := c.remaining
			c.mu.Unlock()

			select {
			case c.ticks <- left:
			default:
			}
			if left <= 0 {
				c.fire()
				return
			}
		}
	}
}

func (c *Countdown) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.fired {
		return
	}
	c.fired = true
	close(c.expired)
}

// Remaining returns the ticks left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Ticks delivers the remaining count after each tick. Updates are dropped
// while the previous one is unread.
func (c *Countdown) Ticks() <-chan int {
	return c.ticks
}

// Expired is closed when the countdown reaches zero. It is never closed for a
// countdown stopped before that.
func (c *Countdown) Expired() <-chan struct{} {
	return c.expired
}

// Done is closed once the ticker goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Stop halts the countdown. It reports whether the countdown was stopped
// before expiring. Calling Stop more than once is safe.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired {
		return false
	}
	if !c.stopped {
		c.stopped = true
		close(c.stop)
	}
	return true
}
