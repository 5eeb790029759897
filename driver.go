package purfectscroll

import (
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"
)

// Driver owns the scroll session and integrates speed into position on
// every frame tick. All methods run on the UI thread.
type Driver struct {
	container Container
	detector  *Detector
	loop      Loop
	cfg       Config
	log       pslog.Logger
	slog      pslog.Logger // session-scoped

	display  *DisplayClock // nil without a frame source
	polling  *PollingClock
	clock    Clock
	degraded bool

	session      *ScrollSession
	decelReason  PauseReason
	lastTick     time.Duration
	lastProgress time.Duration
	progressed   bool
	reflowing    bool // layout in flux; no checks or writes

	progressFns   []func(position, ratio float64)
	completeFns   []func()
	transitionFns []func(Transition)
}

// NewDriver creates a driver writing through detector. With a nil frames
// source it ticks on the polling clock from the start.
func NewDriver(container Container, detector *Detector, frames FrameSource, loop Loop, cfg Config, logger pslog.Logger) *Driver {
	cfg = cfg.WithDefaults()
	log := loggerOrDefault(logger)
	d := &Driver{
		container: container,
		detector:  detector,
		loop:      loop,
		cfg:       cfg,
		log:       log,
		slog:      log,
		polling:   NewPollingClock(loop, cfg.PollInterval, cfg.MaxFrameDelta),
	}
	if frames != nil {
		d.display = NewDisplayClock(frames, cfg.MaxFrameDelta, log)
		d.display.SetUnavailableCallback(d.displayLost)
	} else {
		d.degraded = true
	}
	return d
}

// OnProgress registers a progress callback
func (d *Driver) OnProgress(fn func(position, ratio float64)) {
	d.progressFns = append(d.progressFns, fn)
}

// OnComplete registers a callback for reaching the end of content
func (d *Driver) OnComplete(fn func()) {
	d.completeFns = append(d.completeFns, fn)
}

// OnTransition registers a state change callback
func (d *Driver) OnTransition(fn func(Transition)) {
	d.transitionFns = append(d.transitionFns, fn)
}

// Status returns the session status, StatusIdle before the first start
func (d *Driver) Status() Status {
	if d.session == nil {
		return StatusIdle
	}
	return d.session.Status
}

// Session returns a copy of the current session
func (d *Driver) Session() (ScrollSession, bool) {
	if d.session == nil {
		return ScrollSession{}, false
	}
	return *d.session, true
}

// Degraded reports whether the driver ticks on the polling clock
func (d *Driver) Degraded() bool {
	return d.degraded
}

// Fits reports whether the content fits in the viewport
func (d *Driver) Fits() bool {
	viewport, content := d.measure()
	return content <= viewport
}

// Start begins a session at initialSpeed. The speed applies immediately;
// later changes go through SetSpeed and are damped.
//
// On a moving session Start only changes the target speed. On a paused
// session it resumes, whatever the pause reason.
func (d *Driver) Start(initialSpeed float64) error {
	if d.Fits() {
		return ErrContentFits
	}
	s := d.session
	if s != nil && s.Status.Moving() {
		d.SetSpeed(initialSpeed)
		return nil
	}
	if s != nil && s.Status == StatusPaused {
		s.TargetSpeed = initialSpeed
		return d.Resume()
	}

	from := StatusIdle
	if s != nil {
		from = s.Status
	}
	viewport, content := d.measure()
	max := maxOffset(content, viewport)
	position := clamp(d.container.ScrollOffset(), 0, max)
	s = &ScrollSession{
		ID:              uuid.NewString(),
		Status:          StatusScrolling,
		Speed:           initialSpeed,
		TargetSpeed:     initialSpeed,
		Position:        position,
		ContainerHeight: viewport,
		ContentHeight:   content,
		StartedAt:       d.loop.Now(),
	}
	d.session = s
	d.slog = withSession(d.log, s.ID)

	// Replaying a finished script starts over from the top
	if initialSpeed > 0 && position >= max {
		s.Position = 0
		d.detector.Write(0)
	} else {
		d.detector.Sync()
	}
	d.startClock()
	d.slog.Debug("scroll session started", "speed", initialSpeed, "position", s.Position)
	d.emit(from, StatusScrolling, PauseNone)
	return nil
}

// SetSpeed changes the target speed. The integrated speed follows through
// the damping filter over the next frames.
func (d *Driver) SetSpeed(speed float64) {
	if d.session == nil {
		return
	}
	d.session.TargetSpeed = speed
}

// Pause pauses a moving session.
//
// PauseManualScroll freezes at the container's current offset and
// PauseTabHidden freezes in place, both immediately. Any other reason
// decelerates first and pauses once the speed has decayed. A user pause
// on a session paused by hiding takes over the reason, so showing the
// view no longer resumes it.
func (d *Driver) Pause(reason PauseReason) {
	s := d.session
	if s == nil {
		return
	}
	if s.Status == StatusPaused && s.PausedReason == PauseTabHidden && reason == PauseUserRequested {
		d.slog.Debug("user pause while hidden")
		d.setStatus(StatusPaused, PauseUserRequested)
		return
	}
	if !s.Status.Moving() {
		return
	}
	switch reason {
	case PauseManualScroll:
		d.pauseNow(PauseManualScroll, d.container.ScrollOffset())
	case PauseTabHidden:
		// a user pause already ramping down keeps its reason
		if s.Status == StatusDecelerating && d.decelReason == PauseUserRequested {
			reason = PauseUserRequested
		}
		d.pauseNow(reason, s.Position)
	default:
		if s.Status == StatusDecelerating {
			return
		}
		d.decelReason = PauseUserRequested
		d.setStatus(StatusDecelerating, PauseUserRequested)
	}
}

// Resume continues a paused or decelerating session. It is the explicit
// resume, so it also lifts a manual-scroll pause; position is taken from
// the container, which the user may have moved while paused.
func (d *Driver) Resume() error {
	s := d.session
	if s == nil {
		return ErrNotStarted
	}
	switch s.Status {
	case StatusDecelerating:
		d.setStatus(StatusScrolling, PauseNone)
		return nil
	case StatusScrolling:
		return nil
	case StatusPaused:
	default:
		return ErrNotStarted
	}
	if d.Fits() {
		return ErrContentFits
	}
	s.ContainerHeight, s.ContentHeight = d.measure()
	s.Position = clamp(d.container.ScrollOffset(), 0, s.MaxPosition())
	s.Speed = 0
	d.detector.Sync()
	d.startClock()
	d.slog.Debug("scroll session resumed", "reason", s.PausedReason, "position", s.Position)
	d.setStatus(StatusScrolling, PauseNone)
	return nil
}

// resumeFrom resumes only a session paused for reason. It reports whether
// the session was paused for reason and why the resume failed, if it did.
func (d *Driver) resumeFrom(reason PauseReason) (bool, error) {
	s := d.session
	if s == nil || s.Status != StatusPaused || s.PausedReason != reason {
		return false, nil
	}
	return true, d.Resume()
}

// Stop ends the session immediately. Stopping twice is a no-op.
func (d *Driver) Stop() {
	s := d.session
	if s == nil || s.Status == StatusStopped {
		return
	}
	wasMoving := s.Status.Moving()
	d.stopClock()
	s.Speed = 0
	if wasMoving {
		d.progress(d.lastTick, true)
	}
	d.slog.Debug("scroll session stopped", "position", s.Position)
	d.setStatus(StatusStopped, PauseNone)
}

// CheckInterference runs the detector outside the tick, for toolkits that
// report scroll events. It returns true if the session was paused.
func (d *Driver) CheckInterference() bool {
	s := d.session
	if s == nil || !s.Status.Moving() || d.reflowing {
		return false
	}
	observed, moved := d.detector.Check()
	if !moved {
		return false
	}
	d.manualScroll(observed)
	return true
}

// position is the authoritative scroll position: the session's while it
// moves, the container's otherwise
func (d *Driver) position() float64 {
	if s := d.session; s != nil && s.Status.Moving() {
		return s.Position
	}
	return d.container.ScrollOffset()
}

// holdForReflow stops interference checks and writes until relocate. The
// toolkit clamps the offset on its own while the layout changes.
func (d *Driver) holdForReflow() {
	d.reflowing = true
	d.detector.Disarm()
}

// relocate moves to position without the write counting as interference
func (d *Driver) relocate(position float64) {
	d.reflowing = false
	viewport, content := d.measure()
	position = clamp(position, 0, maxOffset(content, viewport))
	if s := d.session; s != nil {
		s.Position = position
		s.ContainerHeight = viewport
		s.ContentHeight = content
	}
	d.detector.Write(position)
}

func (d *Driver) measure() (viewport, content float64) {
	return d.container.ViewportHeight(), d.container.ContentHeight()
}

func (d *Driver) setStatus(to Status, reason PauseReason) {
	s := d.session
	from := s.Status
	s.Status = to
	switch to {
	case StatusPaused:
		s.PausedReason = reason
	case StatusScrolling, StatusStopped:
		s.PausedReason = PauseNone
	}
	d.emit(from, to, reason)
}

func (d *Driver) emit(from, to Status, reason PauseReason) {
	t := Transition{SessionID: d.session.ID, From: from, To: to, Reason: reason}
	d.slog.Debug("scroll transition", "from", from, "to", to, "reason", reason)
	for _, fn := range d.transitionFns {
		fn(t)
	}
}
