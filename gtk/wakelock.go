package purfectscrollgtk

import (
	"context"
	"fmt"

	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/purfectscroll"
)

// ApplicationInhibitor holds the wake lock through gtk_application_inhibit.
// It must be used from the GTK main thread.
type ApplicationInhibitor struct {
	App    *gtk.Application
	Window *gtk.Window
	Reason string
}

// Supported reports whether an application and window are set
func (a *ApplicationInhibitor) Supported() bool {
	return a.App != nil && a.Window != nil
}

// Request inhibits idling. A zero cookie means the session refused, which
// is reported as unsupported so a fallback inhibitor can take over.
func (a *ApplicationInhibitor) Request(ctx context.Context, done func(release func() error, err error)) {
	if !a.Supported() {
		done(nil, purfectscroll.ErrWakeLockUnsupported)
		return
	}
	reason := a.Reason
	if reason == "" {
		reason = "Teleprompter scrolling"
	}
	cookie := a.App.Inhibit(a.Window, gtk.APPLICATION_INHIBIT_IDLE, reason)
	if cookie == 0 {
		done(nil, fmt.Errorf("gtk inhibit refused: %w", purfectscroll.ErrWakeLockUnsupported))
		return
	}
	released := false
	done(func() error {
		if !released {
			released = true
			a.App.Uninhibit(cookie)
		}
		return nil
	}, nil)
}
