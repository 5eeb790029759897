package purfectscroll

import (
	"testing"
	"time"

	"github.com/phroun/purfectscroll/internal/fakeplatform"
)

func TestReflowPreservesRatio(t *testing.T) {
	h := newHarness(t, func(h *harness) { h.container = fakeplatform.NewContainer(600, 2600) })
	h.container.Offset = 1000

	h.ctl.Reflow(func() { h.container.Resize(4600) })

	ratio := h.container.Offset / (4600 - 600)
	if ratio < 0.475 || ratio > 0.525 {
		t.Fatalf("expected ratio within 5%% of 0.5, got %.3f", ratio)
	}
	if h.container.Offset != 2000 {
		t.Fatalf("expected offset 2000, got %.2f", h.container.Offset)
	}
}

func TestReflowShrinkingContent(t *testing.T) {
	h := newHarness(t, func(h *harness) { h.container = fakeplatform.NewContainer(600, 4600) })
	h.container.Offset = 3000

	h.ctl.BeginReflow()
	h.container.Resize(1600)
	h.ctl.EndReflow()

	if h.container.Offset != 750 {
		t.Fatalf("expected offset 750 (ratio 0.75 of 1000), got %.2f", h.container.Offset)
	}
}

func TestReflowFromFittingContent(t *testing.T) {
	h := newHarness(t, func(h *harness) { h.container = fakeplatform.NewContainer(600, 400) })
	h.ctl.Reflow(func() { h.container.Resize(2600) })
	if h.container.Offset != 0 {
		t.Fatalf("expected ratio 0 when nothing was scrollable, got %.2f", h.container.Offset)
	}
}

func TestReflowWhileScrolling(t *testing.T) {
	h := newHarness(t, func(h *harness) { h.container = fakeplatform.NewContainer(600, 2600) })
	h.container.Offset = 1000
	h.start(60)
	h.loop.Advance(500 * time.Millisecond)
	before := h.session().Ratio()

	h.ctl.Reflow(func() { h.container.Resize(4600) })
	s := h.session()
	if diff := s.Ratio() - before; diff > 0.001 || diff < -0.001 {
		t.Fatalf("expected ratio %.4f kept, got %.4f", before, s.Ratio())
	}
	if s.ContentHeight != 4600 {
		t.Fatalf("expected session to see the new content height, got %.0f", s.ContentHeight)
	}

	h.loop.Advance(500 * time.Millisecond)
	h.expectStatus(StatusScrolling)
	if h.ctl.detector.Detections() != 0 {
		t.Fatalf("reflow write was taken for a manual scroll")
	}
}

func TestReflowWhilePaused(t *testing.T) {
	h := newHarness(t, func(h *harness) { h.container = fakeplatform.NewContainer(600, 2600) })
	h.start(200)
	h.loop.Advance(500 * time.Millisecond)
	h.ctl.Pause()
	h.loop.Advance(time.Second)
	h.expectPaused(PauseUserRequested)
	ratio := h.container.Offset / 2000

	h.ctl.Reflow(func() { h.container.Resize(5600) })
	if got := h.container.Offset / 5000; got-ratio > 0.001 || ratio-got > 0.001 {
		t.Fatalf("expected ratio %.4f kept while paused, got %.4f", ratio, got)
	}
	h.expectPaused(PauseUserRequested)
}

func TestSplitReflowIgnoresClampedOffset(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(time.Second)
	before := h.session().Ratio()

	h.ctl.BeginReflow()
	h.container.Resize(650) // the toolkit clamps the offset to 50
	h.ctl.HandleScrollEvent()
	h.loop.Advance(frame)
	h.expectStatus(StatusScrolling)
	if h.container.Offset != 50 {
		t.Fatalf("driver wrote during the reflow, offset %.2f", h.container.Offset)
	}

	h.ctl.EndReflow()
	h.expectStatus(StatusScrolling)
	if got := h.container.Offset / 50; got-before > 0.001 || before-got > 0.001 {
		t.Fatalf("expected ratio %.4f reapplied, got %.4f", before, got)
	}
	h.loop.Advance(frame)
	h.expectStatus(StatusScrolling)
	if h.ctl.detector.Detections() != 0 {
		t.Fatalf("clamped offset was taken for a manual scroll")
	}
}
