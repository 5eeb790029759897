package purfectscrollgtk

import (
	"time"

	"github.com/gotk3/gotk3/glib"
)

// Loop is a purfectscroll.Loop on the GLib main loop
type Loop struct{}

// Post runs fn on the main loop; it is safe from any goroutine
func (Loop) Post(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}

// AfterFunc runs fn on the main loop after d
func (Loop) AfterFunc(d time.Duration, fn func()) func() {
	ms := uint(d / time.Millisecond)
	var fired, cancelled bool
	id := glib.TimeoutAdd(ms, func() bool {
		fired = true
		if !cancelled {
			fn()
		}
		return false
	})
	return func() {
		if fired || cancelled {
			return
		}
		cancelled = true
		glib.SourceRemove(id)
	}
}

// Now returns the wall clock
func (Loop) Now() time.Time {
	return time.Now()
}
