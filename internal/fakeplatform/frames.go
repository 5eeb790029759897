package fakeplatform

import (
	"errors"
	"time"
)

// ErrFrameRefused is returned by a Frames source told to refuse requests
var ErrFrameRefused = errors.New("fakeplatform: frame request refused")

// Frames delivers display frames on Loop timers at a fixed interval,
// aligned to Epoch
type Frames struct {
	loop     *Loop
	Interval time.Duration

	Refuse    int  // refuse this many upcoming requests
	RefuseAll bool // refuse every request

	Requests  int
	Delivered int
	stamps    []time.Duration
}

// NewFrames creates a 16ms frame source on loop
func NewFrames(loop *Loop) *Frames {
	return &Frames{loop: loop, Interval: 16 * time.Millisecond}
}

// RequestFrame schedules fn for the next frame boundary
func (f *Frames) RequestFrame(fn func(timestamp time.Duration)) (func(), error) {
	f.Requests++
	if f.RefuseAll {
		return nil, ErrFrameRefused
	}
	if f.Refuse > 0 {
		f.Refuse--
		return nil, ErrFrameRefused
	}
	elapsed := f.loop.Elapsed()
	next := (elapsed/f.Interval + 1) * f.Interval
	return f.loop.AfterFunc(next-elapsed, func() {
		f.Delivered++
		f.stamps = append(f.stamps, next)
		fn(next)
	}), nil
}

// Timestamps returns the timestamps of all delivered frames
func (f *Frames) Timestamps() []time.Duration {
	out := make([]time.Duration, len(f.stamps))
	copy(out, f.stamps)
	return out
}
