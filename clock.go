package purfectscroll

import (
	"time"

	"pkt.systems/pslog"
)

// TickFunc receives one FrameTick per frame
type TickFunc func(FrameTick)

// Clock turns one-shot frame callbacks into a cancellable repeating tick.
// Stop is idempotent and no tick is delivered after it returns.
type Clock interface {
	Start(fn TickFunc) error
	Stop()
	Running() bool
}

// deltaTracker measures the time between ticks and applies the delta cap.
// The first tick after a reset has a zero delta.
type deltaTracker struct {
	max     time.Duration
	last    time.Duration
	hasLast bool
}

func (t *deltaTracker) reset() {
	t.hasLast = false
}

func (t *deltaTracker) next(ts time.Duration) time.Duration {
	var delta time.Duration
	if t.hasLast {
		delta = ts - t.last
		if delta < 0 {
			delta = 0
		}
		if delta > t.max {
			delta = t.max
		}
	}
	t.last = ts
	t.hasLast = true
	return delta
}

// DisplayClock ticks on display frames from a FrameSource.
//
// A refused frame request is retried once. When the retry is refused too,
// Start returns a *ClockError, or, if the clock was already running, the
// unavailable callback receives it and the clock stops.
type DisplayClock struct {
	frames FrameSource
	log    pslog.Logger

	fn      TickFunc
	cancel  func()
	running bool
	gen     uint64
	delta   deltaTracker

	onUnavailable func(error)
}

// NewDisplayClock creates a clock driven by frames
func NewDisplayClock(frames FrameSource, maxDelta time.Duration, logger pslog.Logger) *DisplayClock {
	return &DisplayClock{
		frames: frames,
		log:    loggerOrDefault(logger),
		delta:  deltaTracker{max: maxDelta},
	}
}

// SetUnavailableCallback sets the function called when a running clock
// can no longer schedule frames
func (c *DisplayClock) SetUnavailableCallback(fn func(error)) {
	c.onUnavailable = fn
}

// Start begins ticking. Starting a running clock only replaces the callback.
func (c *DisplayClock) Start(fn TickFunc) error {
	c.fn = fn
	if c.running {
		return nil
	}
	c.running = true
	c.gen++
	c.delta.reset()
	if err := c.schedule(c.gen); err != nil {
		c.running = false
		c.fn = nil
		return err
	}
	return nil
}

// Stop cancels the pending frame
func (c *DisplayClock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.fn = nil
}

// Running reports whether ticks are being delivered
func (c *DisplayClock) Running() bool {
	return c.running
}

func (c *DisplayClock) schedule(gen uint64) error {
	cb := func(ts time.Duration) { c.frame(gen, ts) }
	cancel, err := c.frames.RequestFrame(cb)
	if err != nil {
		c.log.Debug("frame request refused, retrying", "err", err)
		cancel, err = c.frames.RequestFrame(cb)
	}
	if err != nil {
		return &ClockError{Refusals: 2, cause: err}
	}
	c.cancel = cancel
	return nil
}

func (c *DisplayClock) frame(gen uint64, ts time.Duration) {
	if !c.running || gen != c.gen {
		return
	}
	c.cancel = nil
	c.fn(FrameTick{Timestamp: ts, Delta: c.delta.next(ts)})

	// fn may have stopped or restarted the clock
	if !c.running || gen != c.gen {
		return
	}
	if err := c.schedule(gen); err != nil {
		c.running = false
		c.fn = nil
		c.log.Debug("frame clock unavailable", "err", err)
		if c.onUnavailable != nil {
			c.onUnavailable(err)
		}
	}
}

// PollingClock ticks on a fixed interval using Loop timers. It is the
// fallback when the display frame source is unavailable.
type PollingClock struct {
	loop     Loop
	interval time.Duration

	fn      TickFunc
	cancel  func()
	running bool
	gen     uint64
	origin  time.Time
	delta   deltaTracker
}

// NewPollingClock creates a clock ticking every interval on loop
func NewPollingClock(loop Loop, interval, maxDelta time.Duration) *PollingClock {
	return &PollingClock{
		loop:     loop,
		interval: interval,
		delta:    deltaTracker{max: maxDelta},
	}
}

// Start begins ticking; it never fails
func (c *PollingClock) Start(fn TickFunc) error {
	c.fn = fn
	if c.running {
		return nil
	}
	c.running = true
	c.gen++
	c.origin = c.loop.Now()
	c.delta.reset()
	c.schedule(c.gen)
	return nil
}

// Stop cancels the pending timer
func (c *PollingClock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.fn = nil
}

// Running reports whether ticks are being delivered
func (c *PollingClock) Running() bool {
	return c.running
}

func (c *PollingClock) schedule(gen uint64) {
	c.cancel = c.loop.AfterFunc(c.interval, func() {
		if !c.running || gen != c.gen {
			return
		}
		c.cancel = nil
		ts := c.loop.Now().Sub(c.origin)
		c.fn(FrameTick{Timestamp: ts, Delta: c.delta.next(ts)})
		if c.running && gen == c.gen {
			c.schedule(gen)
		}
	})
}
