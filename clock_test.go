package purfectscroll

import (
	"errors"
	"testing"
	"time"

	"github.com/phroun/purfectscroll/internal/fakeplatform"
)

func TestDisplayClockClampsDelta(t *testing.T) {
	frames := &scriptedFrames{}
	clock := NewDisplayClock(frames, 50*time.Millisecond, quietLogger())
	var deltas []time.Duration
	if err := clock.Start(func(ft FrameTick) { deltas = append(deltas, ft.Delta) }); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, ts := range []time.Duration{0, 16 * time.Millisecond, 216 * time.Millisecond, 232 * time.Millisecond} {
		if !frames.fire(ts) {
			t.Fatalf("no frame pending at %v", ts)
		}
	}
	want := []time.Duration{0, 16 * time.Millisecond, 50 * time.Millisecond, 16 * time.Millisecond}
	if len(deltas) != len(want) {
		t.Fatalf("expected %d ticks, got %d", len(want), len(deltas))
	}
	for i := range want {
		if deltas[i] != want[i] {
			t.Fatalf("tick %d: expected delta %v, got %v", i, want[i], deltas[i])
		}
	}
}

func TestDisplayClockStopIsFinal(t *testing.T) {
	frames := &scriptedFrames{}
	clock := NewDisplayClock(frames, 50*time.Millisecond, quietLogger())
	ticks := 0
	if err := clock.Start(func(FrameTick) { ticks++ }); err != nil {
		t.Fatalf("start: %v", err)
	}
	stale := frames.pending
	clock.Stop()
	clock.Stop()
	if clock.Running() {
		t.Fatalf("expected clock stopped")
	}
	stale(16 * time.Millisecond)
	if ticks != 0 {
		t.Fatalf("expected no tick after stop, got %d", ticks)
	}
}

func TestDisplayClockStopInsideTick(t *testing.T) {
	frames := &scriptedFrames{}
	clock := NewDisplayClock(frames, 50*time.Millisecond, quietLogger())
	ticks := 0
	_ = clock.Start(func(FrameTick) {
		ticks++
		clock.Stop()
	})
	frames.fire(0)
	if frames.fire(16 * time.Millisecond) {
		t.Fatalf("expected no frame requested after stop inside tick")
	}
	if ticks != 1 {
		t.Fatalf("expected one tick, got %d", ticks)
	}
}

func TestDisplayClockRetriesRefusedFrameOnce(t *testing.T) {
	loop := fakeplatform.NewLoop()
	frames := fakeplatform.NewFrames(loop)
	frames.Refuse = 1
	clock := NewDisplayClock(frames, 50*time.Millisecond, quietLogger())
	if err := clock.Start(func(FrameTick) {}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if frames.Requests != 2 {
		t.Fatalf("expected 2 requests, got %d", frames.Requests)
	}
}

func TestDisplayClockUnavailable(t *testing.T) {
	loop := fakeplatform.NewLoop()
	frames := fakeplatform.NewFrames(loop)
	frames.Refuse = 2
	clock := NewDisplayClock(frames, 50*time.Millisecond, quietLogger())
	err := clock.Start(func(FrameTick) {})
	if !errors.Is(err, ErrClockUnavailable) {
		t.Fatalf("expected ErrClockUnavailable, got %v", err)
	}
	var clockErr *ClockError
	if !errors.As(err, &clockErr) || !errors.Is(clockErr.Cause(), fakeplatform.ErrFrameRefused) {
		t.Fatalf("expected platform cause behind ClockError, got %v", err)
	}
	if errors.Is(err, fakeplatform.ErrFrameRefused) {
		t.Fatalf("platform error must not unwrap through ClockError")
	}
	if clock.Running() {
		t.Fatalf("expected clock not running")
	}
}

func TestDisplayClockReportsLossWhileRunning(t *testing.T) {
	frames := &scriptedFrames{}
	clock := NewDisplayClock(frames, 50*time.Millisecond, quietLogger())
	var lost error
	clock.SetUnavailableCallback(func(err error) { lost = err })
	_ = clock.Start(func(FrameTick) {})
	frames.refuse = true
	frames.fire(0)
	if !errors.Is(lost, ErrClockUnavailable) {
		t.Fatalf("expected unavailable callback, got %v", lost)
	}
	if clock.Running() {
		t.Fatalf("expected clock stopped after loss")
	}
}

func TestPollingClockTicks(t *testing.T) {
	loop := fakeplatform.NewLoop()
	clock := NewPollingClock(loop, 20*time.Millisecond, 50*time.Millisecond)
	var ticks []FrameTick
	_ = clock.Start(func(ft FrameTick) { ticks = append(ticks, ft) })
	loop.Advance(100 * time.Millisecond)
	if len(ticks) != 5 {
		t.Fatalf("expected 5 ticks, got %d", len(ticks))
	}
	if ticks[0].Delta != 0 || ticks[1].Delta != 20*time.Millisecond {
		t.Fatalf("unexpected deltas %v %v", ticks[0].Delta, ticks[1].Delta)
	}
	clock.Stop()
	loop.Advance(100 * time.Millisecond)
	if len(ticks) != 5 {
		t.Fatalf("expected no ticks after stop, got %d", len(ticks))
	}
	if loop.Pending() != 0 {
		t.Fatalf("expected no timers left, got %d", loop.Pending())
	}
}

func TestFrameIntervalHoldsThirtyFPS(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(2 * time.Second)
	stamps := h.frames.Timestamps()
	if len(stamps) < 2 {
		t.Fatalf("expected frames, got %d", len(stamps))
	}
	avg := (stamps[len(stamps)-1] - stamps[0]) / time.Duration(len(stamps)-1)
	if avg > 33*time.Millisecond {
		t.Fatalf("expected average frame interval <= 33ms, got %v", avg)
	}
}

func TestDriverDegradesToPolling(t *testing.T) {
	h := newHarness(t, func(h *harness) { h.frames.RefuseAll = true })
	h.start(100)
	if !h.ctl.Degraded() {
		t.Fatalf("expected degraded clock")
	}
	h.loop.Advance(time.Second)
	h.expectStatus(StatusScrolling)
	if pos := h.session().Position; pos < 90 || pos > 101 {
		t.Fatalf("expected ~100px after 1s of polling, got %.2f", pos)
	}
}

func TestDriverDegradesMidSession(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(200 * time.Millisecond)
	before := h.session().Position
	h.frames.RefuseAll = true
	h.loop.Advance(500 * time.Millisecond)
	if !h.ctl.Degraded() {
		t.Fatalf("expected degraded clock")
	}
	h.expectStatus(StatusScrolling)
	if after := h.session().Position; after <= before+30 {
		t.Fatalf("expected scrolling to continue on polling, %.2f -> %.2f", before, after)
	}
}
