package purfectscroll

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/pslog"
)

// WakeLockStatus is the state of the screen wake lock
type WakeLockStatus int

const (
	WakeLockReleased    WakeLockStatus = iota
	WakeLockAcquiring                  // Request in flight or waiting for a retry
	WakeLockActive                     // Held
	WakeLockUnsupported                // No capability on this platform; never retried
	WakeLockFailed                     // Retries exhausted; waits for an explicit retry
)

func (s WakeLockStatus) String() string {
	switch s {
	case WakeLockReleased:
		return "released"
	case WakeLockAcquiring:
		return "acquiring"
	case WakeLockActive:
		return "active"
	case WakeLockUnsupported:
		return "unsupported"
	case WakeLockFailed:
		return "error"
	default:
		return fmt.Sprintf("wakelock(%d)", int(s))
	}
}

// WakeLockHandle is a read-only snapshot of the wake lock state
type WakeLockHandle struct {
	Status     WakeLockStatus
	RetryCount int
	LastError  error // *WakeLockError, nil after a success
}

// WakeLockManager acquires the wake lock while the driver scrolls and
// releases it otherwise.
//
// Requests are asynchronous. Their results are posted to the loop and
// applied there; a generation counter captured per request discards any
// result that arrives after the request was superseded or released, and
// a stale successful lock is released on arrival.
type WakeLockManager struct {
	locker WakeLocker
	loop   Loop
	cfg    Config
	log    pslog.Logger

	status     WakeLockStatus
	retryCount int
	lastErr    error
	gen        uint64
	release    func() error

	cancelRequest  context.CancelFunc
	cancelRetry    func()
	cancelDeadline func()

	wantLock       bool // the driver intends to scroll
	hidden         bool
	heldBeforeHide bool

	unsupportedAcked bool
	errorAcked       bool

	changeFns []func(WakeLockHandle)
}

// NewWakeLockManager creates a manager. A nil or unsupported locker puts
// the manager in WakeLockUnsupported for good.
func NewWakeLockManager(locker WakeLocker, loop Loop, cfg Config, logger pslog.Logger) *WakeLockManager {
	m := &WakeLockManager{
		locker: locker,
		loop:   loop,
		cfg:    cfg.WithDefaults(),
		log:    loggerOrDefault(logger),
	}
	if locker == nil || !locker.Supported() {
		m.status = WakeLockUnsupported
		m.lastErr = &WakeLockError{Kind: ErrWakeLockUnsupported}
	}
	return m
}

// Handle returns the current state
func (m *WakeLockManager) Handle() WakeLockHandle {
	return WakeLockHandle{Status: m.status, RetryCount: m.retryCount, LastError: m.lastErr}
}

// OnChange registers a callback for state changes
func (m *WakeLockManager) OnChange(fn func(WakeLockHandle)) {
	m.changeFns = append(m.changeFns, fn)
}

// AllowStart gates an explicit start.
//
// Unsupported: the first start is refused so the UI can warn; later starts
// proceed without a lock. Error: the first start after the failure is
// refused; the next one counts as the explicit retry and resets the
// manager.
func (m *WakeLockManager) AllowStart() error {
	switch m.status {
	case WakeLockUnsupported:
		if !m.unsupportedAcked {
			m.unsupportedAcked = true
			m.log.Warn("wake lock unsupported, screen may dim during playback")
			return &WakeLockError{Kind: ErrWakeLockUnsupported}
		}
	case WakeLockFailed:
		if !m.errorAcked {
			m.errorAcked = true
			return &WakeLockError{Kind: ErrWakeLockAcquisitionFailed, Attempt: m.retryCount}
		}
		return m.Retry()
	}
	return nil
}

// Retry is the explicit user retry after an Error
func (m *WakeLockManager) Retry() error {
	if m.status == WakeLockUnsupported {
		return &WakeLockError{Kind: ErrWakeLockUnsupported}
	}
	m.reset()
	if m.wantLock && !m.hidden {
		m.request()
	}
	return nil
}

func (m *WakeLockManager) reset() {
	m.releaseNow()
	m.retryCount = 0
	m.errorAcked = false
	m.lastErr = nil
	m.setStatus(WakeLockReleased)
}

// HandleTransition follows the driver's state
func (m *WakeLockManager) HandleTransition(t Transition) {
	switch t.To {
	case StatusScrolling:
		m.wantLock = true
		m.acquire()
	case StatusDecelerating:
	case StatusPaused:
		// hiding keeps the intent to scroll; a user pause drops it
		m.wantLock = t.Reason == PauseTabHidden
		m.releaseNow()
	default:
		m.wantLock = false
		m.releaseNow()
	}
}

// HandleVisibility releases on hide and re-requests on show if the lock
// was held (or being acquired) when the view was hidden.
func (m *WakeLockManager) HandleVisibility(hidden bool) {
	if hidden {
		m.hidden = true
		m.heldBeforeHide = m.status == WakeLockActive || m.status == WakeLockAcquiring
		m.releaseNow()
		return
	}
	m.hidden = false
	if !m.heldBeforeHide || !m.wantLock {
		return
	}
	m.heldBeforeHide = false
	if m.status != WakeLockReleased {
		return
	}
	m.retryCount = 0
	m.request()
	m.cancelDeadline = m.loop.AfterFunc(m.cfg.ReacquireDeadline, func() {
		m.cancelDeadline = nil
		if m.status == WakeLockAcquiring {
			m.log.Warn("wake lock not reacquired in time", "deadline", m.cfg.ReacquireDeadline)
		}
	})
}

// Abandon releases the lock and drops the intent to hold it until the
// driver scrolls again
func (m *WakeLockManager) Abandon() {
	m.wantLock = false
	m.releaseNow()
}

// Close releases the lock for good
func (m *WakeLockManager) Close() {
	m.Abandon()
}

func (m *WakeLockManager) acquire() {
	if m.status != WakeLockReleased || m.hidden {
		return
	}
	m.request()
}

func (m *WakeLockManager) request() {
	m.stopRetry()
	m.gen++
	gen := m.gen
	attempt := m.retryCount + 1
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRequest = cancel
	m.setStatus(WakeLockAcquiring)
	m.log.Debug("requesting wake lock", "attempt", attempt)
	done := func(release func() error, err error) {
		m.loop.Post(func() { m.resolve(gen, attempt, release, err) })
	}
	if watched, ok := m.locker.(WatchedWakeLocker); ok {
		watched.RequestWatched(ctx, done, func(err error) {
			m.loop.Post(func() { m.lost(gen, err) })
		})
		return
	}
	m.locker.Request(ctx, done)
}

func (m *WakeLockManager) resolve(gen uint64, attempt int, release func() error, err error) {
	if gen != m.gen {
		if err == nil && release != nil {
			m.log.Debug("releasing stale wake lock", "attempt", attempt)
			m.releaseQuietly(release)
		}
		return
	}
	if m.cancelRequest != nil {
		m.cancelRequest()
		m.cancelRequest = nil
	}

	if err == nil {
		m.release = release
		m.retryCount = 0
		m.lastErr = nil
		m.stopDeadline()
		m.log.Info("wake lock acquired", "attempt", attempt)
		m.setStatus(WakeLockActive)
		return
	}

	if errors.Is(err, ErrWakeLockUnsupported) {
		m.stopDeadline()
		m.lastErr = &WakeLockError{Kind: ErrWakeLockUnsupported, cause: err}
		m.log.Warn("wake lock unsupported", "err", err)
		m.setStatus(WakeLockUnsupported)
		return
	}

	m.fail(gen, attempt, err)
}

// lost handles a held lock that ended without being released. It counts as
// a failed attempt and goes through the retry schedule.
func (m *WakeLockManager) lost(gen uint64, err error) {
	if gen != m.gen || m.status != WakeLockActive {
		return
	}
	if m.release != nil {
		release := m.release
		m.release = nil
		m.releaseQuietly(release)
	}
	m.log.Warn("wake lock lost", "err", err)
	m.status = WakeLockAcquiring
	m.fail(gen, m.retryCount+1, err)
}

func (m *WakeLockManager) fail(gen uint64, attempt int, err error) {
	m.retryCount++
	m.lastErr = &WakeLockError{Kind: ErrWakeLockAcquisitionFailed, Attempt: attempt, cause: err}
	if m.retryCount >= m.cfg.MaxRetries {
		m.stopDeadline()
		m.log.Warn("wake lock acquisition failed, giving up",
			"attempts", m.retryCount, "err", err)
		m.setStatus(WakeLockFailed)
		return
	}
	delay := m.cfg.retryDelay(m.retryCount)
	m.log.Warn("wake lock acquisition failed, retrying",
		"attempt", attempt, "max_retries", m.cfg.MaxRetries, "delay", delay, "err", err)
	m.cancelRetry = m.loop.AfterFunc(delay, func() {
		m.cancelRetry = nil
		if gen == m.gen && m.wantLock && !m.hidden {
			m.request()
		}
	})
	m.notify()
}

// releaseNow invalidates in-flight work and releases a held lock.
// Calling it again releases nothing further.
func (m *WakeLockManager) releaseNow() {
	m.gen++
	m.stopRetry()
	m.stopDeadline()
	if m.cancelRequest != nil {
		m.cancelRequest()
		m.cancelRequest = nil
	}
	if m.release != nil {
		release := m.release
		m.release = nil
		m.releaseQuietly(release)
		m.log.Debug("wake lock released")
	}
	if m.status == WakeLockActive || m.status == WakeLockAcquiring {
		m.setStatus(WakeLockReleased)
	}
}

func (m *WakeLockManager) releaseQuietly(release func() error) {
	if err := release(); err != nil {
		m.log.Warn("wake lock release failed", "err", err)
	}
}

func (m *WakeLockManager) stopRetry() {
	if m.cancelRetry != nil {
		m.cancelRetry()
		m.cancelRetry = nil
	}
}

func (m *WakeLockManager) stopDeadline() {
	if m.cancelDeadline != nil {
		m.cancelDeadline()
		m.cancelDeadline = nil
	}
}

func (m *WakeLockManager) setStatus(status WakeLockStatus) {
	if m.status == status {
		return
	}
	m.status = status
	m.notify()
}

func (m *WakeLockManager) notify() {
	h := m.Handle()
	for _, fn := range m.changeFns {
		fn(h)
	}
}
