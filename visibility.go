package purfectscroll

import (
	"sync"

	"pkt.systems/pslog"
)

// Visibility holds whether the view is hidden and notifies subscribers
// when that changes. SetHidden is called on the UI thread; Hidden may be
// read from anywhere.
type Visibility struct {
	mu     sync.Mutex
	hidden bool
	nextID int
	subs   []visibilitySub
}

type visibilitySub struct {
	id int
	fn func(hidden bool)
}

// NewVisibility creates a visible state
func NewVisibility() *Visibility {
	return &Visibility{}
}

// Hidden reports whether the view is hidden
func (v *Visibility) Hidden() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidden
}

// SetHidden records a visibility change. Subscribers are called in
// subscription order, only when the value actually changes.
func (v *Visibility) SetHidden(hidden bool) {
	v.mu.Lock()
	if v.hidden == hidden {
		v.mu.Unlock()
		return
	}
	v.hidden = hidden
	subs := make([]visibilitySub, len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, sub := range subs {
		sub.fn(hidden)
	}
}

// Subscribe registers fn and returns a function removing it
func (v *Visibility) Subscribe(fn func(hidden bool)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, visibilitySub{id: id, fn: fn})
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, sub := range v.subs {
			if sub.id == id {
				v.subs = append(v.subs[:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

// VisibilityCoordinator pauses the driver when the view is hidden and
// resumes it when shown, but only if hiding was the reason for the pause.
type VisibilityCoordinator struct {
	driver  *Driver
	log     pslog.Logger
	unsub   func()
	failFns []func(error)
}

// NewVisibilityCoordinator subscribes to v on behalf of driver
func NewVisibilityCoordinator(v *Visibility, driver *Driver, logger pslog.Logger) *VisibilityCoordinator {
	c := &VisibilityCoordinator{driver: driver, log: loggerOrDefault(logger)}
	c.unsub = v.Subscribe(c.handle)
	return c
}

func (c *VisibilityCoordinator) handle(hidden bool) {
	if hidden {
		if c.driver.Status().Moving() {
			c.log.Debug("view hidden, pausing")
			c.driver.Pause(PauseTabHidden)
		}
		return
	}
	paused, err := c.driver.resumeFrom(PauseTabHidden)
	switch {
	case !paused:
	case err != nil:
		c.log.Info("view shown, resume refused", "err", err)
		for _, fn := range c.failFns {
			fn(err)
		}
	default:
		c.log.Debug("view shown, resumed")
	}
}

// OnResumeFailed registers a callback for a show that could not resume,
// such as when the content shrank to fit while hidden
func (c *VisibilityCoordinator) OnResumeFailed(fn func(error)) {
	c.failFns = append(c.failFns, fn)
}

// Close unsubscribes; calling it twice is safe
func (c *VisibilityCoordinator) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}
