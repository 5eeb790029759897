package purfectscroll

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a scroll session
type Status int

const (
	StatusIdle         Status = iota // No session has been started yet
	StatusScrolling                  // Integrating speed into position every frame
	StatusDecelerating               // Ramping speed down before pausing
	StatusPaused                     // Frozen; frame clock unsubscribed
	StatusStopped                    // Ended by stop or by reaching the end of content
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusScrolling:
		return "scrolling"
	case StatusDecelerating:
		return "decelerating"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Moving reports whether the driver consumes frame ticks in this state.
func (s Status) Moving() bool {
	return s == StatusScrolling || s == StatusDecelerating
}

// PauseReason records why a session is paused
type PauseReason int

const (
	PauseNone          PauseReason = iota
	PauseManualScroll              // A human moved the container
	PauseTabHidden                 // The view stopped being visible
	PauseUserRequested             // pause() from the caller
)

func (r PauseReason) String() string {
	switch r {
	case PauseNone:
		return "none"
	case PauseManualScroll:
		return "manual-scroll"
	case PauseTabHidden:
		return "tab-hidden"
	case PauseUserRequested:
		return "user-requested"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ScrollSession is a snapshot of the driver's session state.
// Speeds are signed pixels per second; positions and heights are pixels.
type ScrollSession struct {
	ID              string
	Status          Status
	Speed           float64 // Current integrated speed
	TargetSpeed     float64 // Speed the damping filter converges to
	Position        float64
	ContainerHeight float64
	ContentHeight   float64
	PausedReason    PauseReason
	StartedAt       time.Time
}

// MaxPosition returns the largest valid position for the session's geometry.
func (s ScrollSession) MaxPosition() float64 {
	return maxOffset(s.ContentHeight, s.ContainerHeight)
}

// Ratio returns the position as a fraction of the scrollable distance.
func (s ScrollSession) Ratio() float64 {
	return scrollRatio(s.Position, s.ContentHeight, s.ContainerHeight)
}

// FrameTick is delivered once per frame clock callback
type FrameTick struct {
	Timestamp time.Duration // Frame time in the clock's own time base
	Delta     time.Duration // Time since the previous tick, clamped
}

// Transition describes a driver state change
type Transition struct {
	SessionID string
	From      Status
	To        Status
	Reason    PauseReason // Set when To is StatusPaused or StatusDecelerating
}

func maxOffset(content, viewport float64) float64 {
	if content <= viewport {
		return 0
	}
	return content - viewport
}

func scrollRatio(position, content, viewport float64) float64 {
	max := maxOffset(content, viewport)
	if max <= 0 {
		return 0
	}
	return clamp(position/max, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
