package purfectscrollqt

import (
	"time"

	"github.com/mappu/miqt/qt"
	"github.com/mappu/miqt/qt/mainthread"
)

// Loop is a purfectscroll.Loop on the Qt event loop
type Loop struct{}

// Post runs fn on the Qt main thread; it is safe from any goroutine
func (Loop) Post(fn func()) {
	mainthread.Start(fn)
}

// AfterFunc runs fn on the main thread after d. It must be called from
// the main thread.
func (Loop) AfterFunc(d time.Duration, fn func()) func() {
	var fired, cancelled bool
	timer := qt.NewQTimer()
	timer.SetSingleShot(true)
	timer.OnTimeout(func() {
		fired = true
		timer.DeleteLater()
		if !cancelled {
			fn()
		}
	})
	timer.Start(int(d / time.Millisecond))
	return func() {
		if fired || cancelled {
			return
		}
		cancelled = true
		timer.Stop()
		timer.DeleteLater()
	}
}

// Now returns the wall clock
func (Loop) Now() time.Time {
	return time.Now()
}
