// Package purfectscroll drives continuous, speed-controlled scrolling of a
// long text view, as used by a teleprompter display.
//
// A Controller ties together the scroll driver and its frame clock, the
// manual-scroll detector, the resize coordinator, the screen wake lock
// manager, and visibility handling. The platform is injected through small
// interfaces (Container, FrameSource, Loop, WakeLocker) so the same core
// runs under GTK, Qt, a terminal, or tests.
//
// Everything runs on the UI thread described by the Loop. Controller
// methods must be called from it.
package purfectscroll

import (
	"errors"

	"pkt.systems/pslog"
)

// Platform bundles the injected platform primitives
type Platform struct {
	Frames     FrameSource // nil: tick on a polling timer
	Loop       Loop        // required
	WakeLock   WakeLocker  // nil: wake lock unsupported
	Visibility *Visibility // nil: a private always-visible state
	Notifier   Notifier    // nil: notices are dropped
	Logger     pslog.Logger
}

// Controller is the public face of the scroll subsystem
type Controller struct {
	cfg      Config
	log      pslog.Logger
	notifier Notifier

	detector   *Detector
	driver     *Driver
	resize     *ResizeCoordinator
	wake       *WakeLockManager
	visibility *Visibility
	coord      *VisibilityCoordinator

	unsubWake func()
	speed     float64
	closed    bool
}

// New creates a controller for container
func New(container Container, p Platform, cfg Config) (*Controller, error) {
	if container == nil {
		return nil, errors.New("purfectscroll: container is required")
	}
	if p.Loop == nil {
		return nil, errors.New("purfectscroll: loop is required")
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := loggerOrDefault(p.Logger)
	if p.Visibility == nil {
		p.Visibility = NewVisibility()
	}
	if p.Notifier == nil {
		p.Notifier = discardNotifier{}
	}

	c := &Controller{
		cfg:        cfg,
		log:        log,
		notifier:   p.Notifier,
		visibility: p.Visibility,
		speed:      cfg.Speed,
	}
	c.detector = NewDetector(container, cfg.MinVisiblePixelTolerance)
	c.driver = NewDriver(container, c.detector, p.Frames, p.Loop, cfg, log)
	c.resize = NewResizeCoordinator(container, c.driver, log)
	c.wake = NewWakeLockManager(p.WakeLock, p.Loop, cfg, log.With("component", "wakelock"))

	// The wake lock manager sees visibility first so a show re-requests the
	// lock before the coordinator resumes the driver.
	c.unsubWake = p.Visibility.Subscribe(c.wake.HandleVisibility)
	c.coord = NewVisibilityCoordinator(p.Visibility, c.driver, log)
	c.coord.OnResumeFailed(func(error) { c.wake.Abandon() })

	c.driver.OnTransition(c.wake.HandleTransition)
	c.driver.OnTransition(c.handleTransition)
	c.wake.OnChange(c.handleWakeLock)
	return c, nil
}

// StartScrolling starts at the configured speed
func (c *Controller) StartScrolling() error {
	return c.StartScrollingAt(c.speed)
}

// StartScrollingAt starts, or resumes, scrolling at speed.
//
// It returns ErrContentFits when there is nothing to scroll, and a
// *WakeLockError when the wake lock gate refuses this attempt; calling
// again proceeds (unsupported) or retries the lock (after failures).
func (c *Controller) StartScrollingAt(speed float64) error {
	if c.closed {
		return ErrClosed
	}
	if c.driver.Fits() {
		return ErrContentFits
	}
	if err := c.wake.AllowStart(); err != nil {
		if errors.Is(err, ErrWakeLockUnsupported) {
			c.notifier.Show(wakeLockUnsupportedNotice())
		}
		return err
	}
	c.speed = speed
	if c.wake.Handle().Status == WakeLockUnsupported {
		c.notifier.Show(wakeLockUnsupportedNotice())
	}
	if err := c.driver.Start(speed); err != nil {
		return err
	}
	if c.visibility.Hidden() {
		c.driver.Pause(PauseTabHidden)
	}
	return nil
}

// StopScrolling stops immediately; it is idempotent
func (c *Controller) StopScrolling() {
	c.driver.Stop()
	c.notifier.Dismiss(NoticeManualScroll)
}

// SetSpeed changes the speed smoothly and becomes the default for the
// next start
func (c *Controller) SetSpeed(speed float64) {
	c.speed = speed
	c.driver.SetSpeed(speed)
}

// Speed returns the requested speed
func (c *Controller) Speed() float64 {
	return c.speed
}

// Pause decelerates to a stop
func (c *Controller) Pause() {
	c.driver.Pause(PauseUserRequested)
}

// Resume resumes a paused session, including one paused by a manual scroll
func (c *Controller) Resume() error {
	if c.closed {
		return ErrClosed
	}
	if err := c.driver.Resume(); err != nil {
		return err
	}
	if c.visibility.Hidden() {
		c.driver.Pause(PauseTabHidden)
	}
	return nil
}

// OnScrollProgress registers a throttled progress callback
func (c *Controller) OnScrollProgress(fn func(position, ratio float64)) {
	c.driver.OnProgress(fn)
}

// OnScrollComplete registers a callback for reaching the end of content
func (c *Controller) OnScrollComplete(fn func()) {
	c.driver.OnComplete(fn)
}

// OnTransition registers a driver state change callback
func (c *Controller) OnTransition(fn func(Transition)) {
	c.driver.OnTransition(fn)
}

// OnWakeLockChange registers a wake lock state callback
func (c *Controller) OnWakeLockChange(fn func(WakeLockHandle)) {
	c.wake.OnChange(fn)
}

// Status returns the driver status
func (c *Controller) Status() Status {
	return c.driver.Status()
}

// Session returns a snapshot of the current session
func (c *Controller) Session() (ScrollSession, bool) {
	return c.driver.Session()
}

// WakeLock returns the wake lock state
func (c *Controller) WakeLock() WakeLockHandle {
	return c.wake.Handle()
}

// RetryWakeLock is the explicit retry after the wake lock failed
func (c *Controller) RetryWakeLock() error {
	c.notifier.Dismiss(NoticeWakeLockFailed)
	return c.wake.Retry()
}

// HandleScrollEvent is called by adapters when the container reports a
// scroll. Writes made by the driver itself are ignored.
func (c *Controller) HandleScrollEvent() {
	c.driver.CheckInterference()
}

// Reflow runs apply, which changes the layout, and keeps the scroll ratio
func (c *Controller) Reflow(apply func()) {
	c.resize.Reflow(apply)
}

// BeginReflow captures the scroll ratio before an asynchronous layout change
func (c *Controller) BeginReflow() {
	c.resize.Begin()
}

// EndReflow reapplies the ratio captured by BeginReflow
func (c *Controller) EndReflow() {
	c.resize.End()
}

// Visibility returns the visibility state the controller follows
func (c *Controller) Visibility() *Visibility {
	return c.visibility
}

// Degraded reports whether frames come from the polling fallback
func (c *Controller) Degraded() bool {
	return c.driver.Degraded()
}

// Close stops scrolling, releases the wake lock, and unsubscribes
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.driver.Stop()
	c.coord.Close()
	if c.unsubWake != nil {
		c.unsubWake()
		c.unsubWake = nil
	}
	c.wake.Close()
}

func (c *Controller) handleTransition(t Transition) {
	switch {
	case t.To == StatusPaused && t.Reason == PauseManualScroll:
		c.notifier.Show(manualScrollNotice())
	case t.To == StatusScrolling:
		c.notifier.Dismiss(NoticeManualScroll)
	}
}

func (c *Controller) handleWakeLock(h WakeLockHandle) {
	switch h.Status {
	case WakeLockFailed:
		c.notifier.Show(wakeLockFailedNotice(h.LastError))
	case WakeLockActive:
		c.notifier.Dismiss(NoticeWakeLockFailed)
	}
}
