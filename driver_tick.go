package purfectscroll

import (
	"math"
	"time"
)

func (d *Driver) tick(ft FrameTick) {
	s := d.session
	if s == nil || !s.Status.Moving() {
		return
	}
	d.lastTick = ft.Timestamp
	if d.reflowing {
		return
	}

	if observed, moved := d.detector.Check(); moved {
		d.manualScroll(observed)
		return
	}

	s.ContainerHeight, s.ContentHeight = d.measure()
	max := s.MaxPosition()
	frames := float64(ft.Delta) / float64(referenceFrame)
	switch s.Status {
	case StatusScrolling:
		s.Speed = dampToward(s.Speed, s.TargetSpeed, d.cfg.Damping, frames)
	case StatusDecelerating:
		s.Speed *= math.Pow(d.cfg.DecayFactor, frames)
	}
	s.Position = clamp(s.Position+s.Speed*ft.Delta.Seconds(), 0, max)
	d.detector.Write(s.Position)

	switch {
	case s.Speed > 0 && s.Position >= max:
		d.complete()
	case s.Status == StatusDecelerating && math.Abs(s.Speed) < d.cfg.StopEpsilon:
		d.pauseNow(d.decelReason, s.Position)
	default:
		d.progress(ft.Timestamp, false)
	}
}

// dampToward moves speed toward target by the damping coefficient scaled
// to the number of reference frames elapsed, so the response does not
// depend on the frame rate.
func dampToward(speed, target, damping, frames float64) float64 {
	if frames <= 0 {
		return speed
	}
	alpha := 1 - math.Pow(1-damping, frames)
	return speed + (target-speed)*alpha
}

func (d *Driver) manualScroll(observed float64) {
	d.slog.Info("manual scroll detected", "observed", observed, "expected", d.session.Position)
	d.pauseNow(PauseManualScroll, observed)
}

func (d *Driver) pauseNow(reason PauseReason, position float64) {
	s := d.session
	d.stopClock()
	s.Speed = 0
	s.Position = clamp(position, 0, s.MaxPosition())
	if reason == PauseManualScroll {
		d.detector.Disarm()
	}
	d.progress(d.lastTick, true)
	d.setStatus(StatusPaused, reason)
}

func (d *Driver) complete() {
	s := d.session
	d.stopClock()
	d.progress(d.lastTick, true)
	s.Speed = 0
	d.slog.Info("scroll session complete", "position", s.Position)
	d.setStatus(StatusStopped, PauseNone)
	for _, fn := range d.completeFns {
		fn()
	}
}

// progress notifies listeners at most once per ProgressInterval of tick
// time. Terminal notifications bypass the throttle.
func (d *Driver) progress(ts time.Duration, terminal bool) {
	if !terminal && d.progressed && ts-d.lastProgress < d.cfg.ProgressInterval {
		return
	}
	d.progressed = true
	d.lastProgress = ts
	s := d.session
	ratio := s.Ratio()
	for _, fn := range d.progressFns {
		fn(s.Position, ratio)
	}
}

func (d *Driver) startClock() {
	d.progressed = false
	if !d.degraded {
		err := d.display.Start(d.tick)
		if err == nil {
			d.clock = d.display
			return
		}
		d.degrade(err)
	}
	d.clock = d.polling
	d.polling.Start(d.tick)
}

func (d *Driver) stopClock() {
	if d.clock != nil {
		d.clock.Stop()
	}
}

func (d *Driver) degrade(err error) {
	if !d.degraded {
		d.log.Warn("frame clock unavailable, falling back to polling",
			"err", err, "interval", d.cfg.PollInterval)
	}
	d.degraded = true
}

// displayLost is called by the display clock when it fails mid-session
func (d *Driver) displayLost(err error) {
	d.degrade(err)
	if s := d.session; s != nil && s.Status.Moving() {
		d.clock = d.polling
		d.progressed = false
		d.polling.Start(d.tick)
	}
}
