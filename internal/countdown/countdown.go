// Package countdown runs the fixed 3-2-1 countdown shown before every capture.
package countdown

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultInterval is the time between two countdown ticks
	DefaultInterval = 600 * time.Millisecond
	// From is the first value shown
	From = 3
)

var (
	// ErrReplaced is returned by a run that was superseded by a newer one
	ErrReplaced = errors.New("countdown replaced by a newer run")
	// ErrStopped is returned by a run cancelled through Stop
	ErrStopped = errors.New("countdown stopped")
)

// Countdown owns at most one active run. Starting a new run cancels the
// previous one, so overlapping timers can never corrupt the visible count.
//
// OnTick and OnComplete are invoked with the internal lock held and must not
// call back into the Countdown.
type Countdown struct {
	interval   time.Duration
	onTick     func(remaining int)
	onComplete func()

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

// New creates a countdown. A zero interval uses DefaultInterval; nil callbacks are ignored.
func New(interval time.Duration, onTick func(remaining int), onComplete func()) *Countdown {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	if onComplete == nil {
		onComplete = func() {}
	}
	return &Countdown{
		interval:   interval,
		onTick:     onTick,
		onComplete: onComplete,
	}
}

// Run ticks 3, 2, 1 at each interval and returns nil once the count reaches
// zero. It returns ErrReplaced if another Run starts meanwhile, ErrStopped
// after Stop, or the context's error.
func (c *Countdown) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancelCause(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel(ErrReplaced)
	}
	c.seq++
	id := c.seq
	c.cancel = cancel
	c.mu.Unlock()
	defer c.release(id, cancel)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	count := From
	if !c.emit(runCtx, id, func() { c.onTick(count) }) {
		return context.Cause(runCtx)
	}

	for {
		select {
		case <-runCtx.Done():
			return context.Cause(runCtx)
		case <-ticker.C:
			count--
			if count > 0 {
				remaining := count
				if !c.emit(runCtx, id, func() { c.onTick(remaining) }) {
					return context.Cause(runCtx)
				}
				continue
			}
			if !c.emit(runCtx, id, c.onComplete) {
				return context.Cause(runCtx)
			}
			return nil
		}
	}
}

// Stop cancels the active run, if any.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel(ErrStopped)
		c.cancel = nil
	}
}

// Active reports whether a run is in progress.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// emit runs fn only if run id is still the current, uncancelled run.
func (c *Countdown) emit(ctx context.Context, id uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.seq || ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

func (c *Countdown) release(id uint64, cancel context.CancelCauseFunc) {
	c.mu.Lock()
	if id == c.seq {
		c.cancel = nil
	}
	c.mu.Unlock()
	cancel(nil)
}
