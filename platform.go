package purfectscroll

import (
	"context"
	"time"
)

// Container is the scrollable view being driven. Offsets and heights are in
// pixels; implementations clamp SetScrollOffset to their own bounds.
type Container interface {
	ScrollOffset() float64
	SetScrollOffset(offset float64)
	ViewportHeight() float64
	ContentHeight() float64
}

// ScrollChangeCounter is implemented by containers that count every offset
// change, whatever its origin. The detector uses it to tell whether anything
// wrote to the container after the driver did.
type ScrollChangeCounter interface {
	ScrollChanges() uint64
}

// FrameSource schedules a one-shot callback for the next display frame.
// The timestamp passed to fn is monotonic within one source.
// An error means the platform refused to schedule the frame.
type FrameSource interface {
	RequestFrame(fn func(timestamp time.Duration)) (cancel func(), err error)
}

// Loop is the UI thread. Every function it runs executes on that thread,
// one at a time. Post may be called from any goroutine; AfterFunc and the
// cancel functions it returns are only called from the loop itself.
type Loop interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) (cancel func())
	Now() time.Time
}

// WakeLocker requests the platform's screen wake lock.
//
// Request must not block. done is called exactly once, from any goroutine,
// with either a release function or an error. Implementations return an error
// wrapping ErrWakeLockUnsupported when the capability is categorically absent.
// Cancelling ctx means the result is no longer wanted.
type WakeLocker interface {
	Supported() bool
	Request(ctx context.Context, done func(release func() error, err error))
}

// WatchedWakeLocker is a WakeLocker whose granted lock can end without being
// released, such as an inhibitor process that dies. RequestWatched behaves
// like Request; lost is called at most once, from any goroutine, when a
// granted lock ends before its release function is called.
type WatchedWakeLocker interface {
	WakeLocker
	RequestWatched(ctx context.Context, done func(release func() error, err error), lost func(err error))
}
