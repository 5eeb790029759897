package purfectscroll

import (
	"errors"
	"testing"
	"time"

	"github.com/phroun/purfectscroll/internal/fakeplatform"
)

func TestManualScrollPausesWithinOneTick(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(200 * time.Millisecond)

	h.container.UserScroll(1234)
	h.loop.Advance(frame)

	h.expectPaused(PauseManualScroll)
	if pos := h.session().Position; pos != 1234 {
		t.Fatalf("expected freeze at the observed offset 1234, got %.2f", pos)
	}
	note, ok := h.notes.shown[NoticeManualScroll]
	if !ok || !note.Dismissible || note.Action == "" {
		t.Fatalf("expected a dismissible notice with a resume action, got %+v", note)
	}
	if !errors.Is(note.Err, ErrManualScrollDetected) {
		t.Fatalf("expected notice to carry ErrManualScrollDetected")
	}
	if h.locker.Held() != 0 {
		t.Fatalf("expected wake lock released on manual pause")
	}

	// no deceleration ramp
	last := h.transitions[len(h.transitions)-1]
	if last.From != StatusScrolling || last.To != StatusPaused {
		t.Fatalf("expected scrolling->paused directly, got %v->%v", last.From, last.To)
	}

	h.loop.Advance(time.Second)
	if h.container.Offset != 1234 {
		t.Fatalf("driver kept writing after a manual pause")
	}
}

func TestManualScrollEventPausesImmediately(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(100 * time.Millisecond)
	h.container.UserScroll(500)
	h.ctl.HandleScrollEvent()
	h.expectPaused(PauseManualScroll)
}

func TestManualPauseNeedsExplicitResume(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(200 * time.Millisecond)
	h.container.UserScroll(1234)
	h.loop.Advance(frame)
	h.expectPaused(PauseManualScroll)

	// visibility never resumes a manual pause
	h.vis.SetHidden(true)
	h.vis.SetHidden(false)
	h.loop.Advance(100 * time.Millisecond)
	h.expectPaused(PauseManualScroll)

	// the user keeps reading by hand
	h.container.UserScroll(1500)

	if err := h.ctl.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	h.loop.Advance(500 * time.Millisecond)
	h.expectStatus(StatusScrolling)
	if pos := h.session().Position; pos <= 1500 {
		t.Fatalf("expected to continue from 1500, got %.2f", pos)
	}
	if _, ok := h.notes.shown[NoticeManualScroll]; ok {
		t.Fatalf("expected notice dismissed on resume")
	}
	h.expectWakeLock(WakeLockActive)
}

func TestTabHiddenReleasesAndShowReacquires(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(300 * time.Millisecond)
	h.expectWakeLock(WakeLockActive)
	pos := h.session().Position

	h.vis.SetHidden(true)
	h.expectPaused(PauseTabHidden)
	h.expectWakeLock(WakeLockReleased)
	if h.locker.Held() != 0 {
		t.Fatalf("expected lock released on hide")
	}
	if h.session().Position != pos {
		t.Fatalf("hide must freeze in place")
	}

	h.loop.Advance(5 * time.Second)
	requests, _ := h.locker.Counts()
	shownAt := h.loop.Elapsed()
	h.vis.SetHidden(false)
	if n, _ := h.locker.Counts(); n != requests+1 {
		t.Fatalf("expected the lock re-requested on the show event, got %d requests", n-requests)
	}
	h.loop.Drain()
	h.expectWakeLock(WakeLockActive)
	if h.loop.Elapsed()-shownAt > 500*time.Millisecond {
		t.Fatalf("reacquire took longer than 500ms")
	}
	h.expectStatus(StatusScrolling)
	h.loop.Advance(200 * time.Millisecond)
	if h.session().Position <= pos {
		t.Fatalf("expected scrolling to continue after show")
	}
}

func TestSlowReacquireIsLogged(t *testing.T) {
	capture := &logCapture{}
	h := newHarness(t, func(h *harness) { h.logger = capture.logger() })
	h.start(100)
	h.loop.Advance(100 * time.Millisecond)
	h.vis.SetHidden(true)
	h.locker.Hold = true
	h.vis.SetHidden(false)
	h.loop.Advance(600 * time.Millisecond)
	h.expectWakeLock(WakeLockAcquiring)
	entry := capture.entryWith(t, "deadline")
	if entry["component"] != "wakelock" {
		t.Fatalf("expected wakelock component field, got %+v", entry)
	}

	h.locker.Resolve()
	h.loop.Drain()
	h.expectWakeLock(WakeLockActive)
}

func TestUserPauseSurvivesVisibility(t *testing.T) {
	h := newHarness(t)
	h.start(200)
	h.loop.Advance(300 * time.Millisecond)
	h.ctl.Pause()
	h.loop.Advance(2 * frame)
	h.expectStatus(StatusDecelerating)

	h.vis.SetHidden(true)
	h.expectPaused(PauseUserRequested)
	requests, _ := h.locker.Counts()
	h.vis.SetHidden(false)
	h.loop.Advance(time.Second)

	h.expectPaused(PauseUserRequested)
	h.expectWakeLock(WakeLockReleased)
	if n, _ := h.locker.Counts(); n != requests {
		t.Fatalf("show must not re-request the lock for a user pause")
	}
}

func TestUserPauseWhileHiddenStaysPaused(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(300 * time.Millisecond)
	h.vis.SetHidden(true)
	h.expectPaused(PauseTabHidden)

	h.ctl.Pause()
	h.expectPaused(PauseUserRequested)
	last := h.transitions[len(h.transitions)-1]
	if last.From != StatusPaused || last.To != StatusPaused || last.Reason != PauseUserRequested {
		t.Fatalf("expected paused->paused for the user, got %+v", last)
	}

	requests, _ := h.locker.Counts()
	h.vis.SetHidden(false)
	h.loop.Advance(time.Second)
	h.expectPaused(PauseUserRequested)
	h.expectWakeLock(WakeLockReleased)
	if n, _ := h.locker.Counts(); n != requests {
		t.Fatalf("show must not re-request the lock after a user pause")
	}

	if err := h.ctl.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	h.loop.Drain()
	h.expectStatus(StatusScrolling)
	h.expectWakeLock(WakeLockActive)
}

func TestShowWithFailedResumeKeepsLockReleased(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(300 * time.Millisecond)
	h.vis.SetHidden(true)
	h.expectPaused(PauseTabHidden)

	// the script shrank to fit while the view was hidden
	h.container.Content = 600
	h.vis.SetHidden(false)
	h.loop.Advance(100 * time.Millisecond)

	h.expectPaused(PauseTabHidden)
	if got := h.ctl.WakeLock().Status; got == WakeLockActive {
		t.Fatalf("wake lock held while the driver is paused")
	}
	if h.locker.Held() != 0 {
		t.Fatalf("expected no lock held, got %d", h.locker.Held())
	}
}

func TestStartWhileHidden(t *testing.T) {
	h := newHarness(t)
	h.vis.SetHidden(true)
	h.start(100)
	h.expectPaused(PauseTabHidden)
	h.expectWakeLock(WakeLockReleased)

	h.vis.SetHidden(false)
	h.loop.Drain()
	h.expectStatus(StatusScrolling)
	h.expectWakeLock(WakeLockActive)
}

func TestManualScrollLogCarriesSession(t *testing.T) {
	capture := &logCapture{}
	h := newHarness(t, func(h *harness) { h.logger = capture.logger() })
	h.start(100)
	h.loop.Advance(100 * time.Millisecond)
	h.container.UserScroll(800)
	h.loop.Advance(frame)

	entry := capture.entryWith(t, "observed")
	if entry["session"] != h.session().ID {
		t.Fatalf("expected session field %q, got %+v", h.session().ID, entry)
	}
}

func TestStartWhileScrollingChangesSpeed(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	id := h.session().ID
	h.loop.Advance(100 * time.Millisecond)
	h.start(250)
	s := h.session()
	if s.ID != id || s.TargetSpeed != 250 {
		t.Fatalf("expected the same session retargeted to 250, got %+v", s)
	}
	if h.ctl.Speed() != 250 {
		t.Fatalf("expected controller speed 250, got %.0f", h.ctl.Speed())
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	h := newHarness(t)
	h.start(100)
	h.loop.Advance(100 * time.Millisecond)
	h.ctl.Close()
	h.ctl.Close()

	h.expectStatus(StatusStopped)
	if h.locker.Held() != 0 {
		t.Fatalf("expected lock released on close")
	}
	if h.loop.Pending() != 0 {
		t.Fatalf("expected no timers after close, got %d", h.loop.Pending())
	}
	h.vis.SetHidden(true)
	h.vis.SetHidden(false)
	if n, _ := h.locker.Counts(); n != 1 {
		t.Fatalf("closed controller still follows visibility")
	}
	if err := h.ctl.StartScrolling(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewValidates(t *testing.T) {
	loop := fakeplatform.NewLoop()
	container := fakeplatform.NewContainer(600, 6000)
	if _, err := New(nil, Platform{Loop: loop}, Config{}); err == nil {
		t.Fatalf("expected error without a container")
	}
	if _, err := New(container, Platform{}, Config{}); err == nil {
		t.Fatalf("expected error without a loop")
	}
	if _, err := New(container, Platform{Loop: loop}, Config{Damping: 2}); err == nil {
		t.Fatalf("expected damping out of range rejected")
	}
	ctl, err := New(container, Platform{Loop: loop}, Config{})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if !ctl.Degraded() {
		t.Fatalf("expected polling without a frame source")
	}
	if ctl.WakeLock().Status != WakeLockUnsupported {
		t.Fatalf("expected unsupported without a wake locker")
	}
}
