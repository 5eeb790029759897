package purfectscroll

import (
	"errors"
	"fmt"
)

var (
	// ErrContentFits is returned by start when there is nothing to scroll.
	// It is a condition for the UI (disable playback controls), not a failure.
	ErrContentFits = errors.New("purfectscroll: content fits in viewport")

	// ErrClockUnavailable means the platform refused to schedule frames.
	// The driver degrades to a polling tick when it sees it.
	ErrClockUnavailable = errors.New("purfectscroll: frame clock unavailable")

	ErrWakeLockUnsupported       = errors.New("purfectscroll: wake lock unsupported")
	ErrWakeLockAcquisitionFailed = errors.New("purfectscroll: wake lock acquisition failed")

	// ErrManualScrollDetected is reported with the manual-scroll notice
	ErrManualScrollDetected = errors.New("purfectscroll: manual scroll detected")

	ErrNotStarted = errors.New("purfectscroll: no scroll session")
	ErrClosed     = errors.New("purfectscroll: controller closed")
)

// ClockError wraps a platform frame-scheduling failure. errors.Is matches it
// against ErrClockUnavailable; the platform error is only available through
// Cause, for logging.
type ClockError struct {
	Refusals int
	cause    error
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("%v after %d refused frame requests", ErrClockUnavailable, e.Refusals)
}

func (e *ClockError) Unwrap() error { return ErrClockUnavailable }

// Cause returns the platform error reported by the frame source
func (e *ClockError) Cause() error { return e.cause }

// WakeLockError is the typed status surfaced for wake lock problems.
// Kind is ErrWakeLockUnsupported or ErrWakeLockAcquisitionFailed.
type WakeLockError struct {
	Kind    error
	Attempt int
	cause   error
}

func (e *WakeLockError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("%v (attempt %d)", e.Kind, e.Attempt)
	}
	return e.Kind.Error()
}

func (e *WakeLockError) Unwrap() error { return e.Kind }

// Cause returns the platform error, if any, for logging
func (e *WakeLockError) Cause() error { return e.cause }
