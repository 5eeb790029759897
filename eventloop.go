package purfectscroll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// EventLoop is a Loop backed by a single goroutine, for hosts without a
// toolkit main loop (terminal, headless). The queue is unbounded, so Post
// never blocks, including from the loop goroutine itself.
type EventLoop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewEventLoop creates a loop; call Run to start executing posted functions
func NewEventLoop() *EventLoop {
	return &EventLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run executes posted functions until ctx is cancelled or Close is called
func (l *EventLoop) Run(ctx context.Context) error {
	for {
		for _, fn := range l.takeAll() {
			select {
			case <-l.done:
				return nil
			default:
			}
			fn()
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

func (l *EventLoop) takeAll() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

// Close stops Run. Functions posted afterwards are dropped.
func (l *EventLoop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}

// Post queues fn for the loop goroutine
func (l *EventLoop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc runs fn on the loop after d
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

// Now returns the wall clock
func (l *EventLoop) Now() time.Time {
	return time.Now()
}

// TimerFrames is a FrameSource that paces frames with loop timers at a
// fixed rate, aligned to a common origin so frames are evenly spaced.
type TimerFrames struct {
	loop     Loop
	interval time.Duration
	origin   time.Time
}

// NewTimerFrames creates a frame source ticking every interval on loop
func NewTimerFrames(loop Loop, interval time.Duration) *TimerFrames {
	if interval <= 0 {
		interval = referenceFrame
	}
	return &TimerFrames{loop: loop, interval: interval, origin: loop.Now()}
}

// RequestFrame schedules fn at the next frame boundary
func (f *TimerFrames) RequestFrame(fn func(timestamp time.Duration)) (func(), error) {
	elapsed := f.loop.Now().Sub(f.origin)
	next := (elapsed/f.interval + 1) * f.interval
	return f.loop.AfterFunc(next-elapsed, func() {
		fn(f.loop.Now().Sub(f.origin))
	}), nil
}
