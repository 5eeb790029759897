package fakeplatform

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrDenied is the failure a WakeLocker reports when told to fail
	ErrDenied = errors.New("fakeplatform: wake lock denied")
	// ErrLost is passed to lost callbacks by Lose
	ErrLost = errors.New("fakeplatform: wake lock lost")
)

// WakeLocker records requests and releases. Results are delivered
// synchronously unless Hold is set, in which case they wait for Resolve.
type WakeLocker struct {
	mu sync.Mutex

	Unsupported bool
	Fail        int   // fail this many upcoming requests
	FailAll     bool  // fail every request
	Err         error // overrides ErrDenied
	Hold        bool

	Requests int
	Releases int
	held     int
	pending  []pendingRequest
	grants   []*grant
}

type pendingRequest struct {
	ctx  context.Context
	done func(release func() error, err error)
	lost func(err error)
}

// grant is a lock handed out and not yet released
type grant struct {
	lost func(err error)
	dead bool
}

// Supported reports !Unsupported
func (w *WakeLocker) Supported() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.Unsupported
}

// Request records the request and resolves it unless Hold is set
func (w *WakeLocker) Request(ctx context.Context, done func(release func() error, err error)) {
	w.RequestWatched(ctx, done, nil)
}

// RequestWatched is Request, remembering lost for Lose
func (w *WakeLocker) RequestWatched(ctx context.Context, done func(release func() error, err error), lost func(err error)) {
	w.mu.Lock()
	w.Requests++
	if w.Hold {
		w.pending = append(w.pending, pendingRequest{ctx: ctx, done: done, lost: lost})
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	w.resolve(done, lost)
}

// Resolve completes held requests, including cancelled ones
func (w *WakeLocker) Resolve() int {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, p := range pending {
		w.resolve(p.done, p.lost)
	}
	return len(pending)
}

// Lose ends every held lock as if the platform took it away, calling the
// lost callbacks of watched requests. It returns the number of locks lost.
func (w *WakeLocker) Lose() int {
	w.mu.Lock()
	grants := w.grants
	w.grants = nil
	for _, g := range grants {
		g.dead = true
		w.held--
	}
	w.mu.Unlock()
	for _, g := range grants {
		if g.lost != nil {
			g.lost(ErrLost)
		}
	}
	return len(grants)
}

// Cancelled returns how many held requests had their context cancelled
func (w *WakeLocker) Cancelled() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, p := range w.pending {
		if p.ctx.Err() != nil {
			n++
		}
	}
	return n
}

func (w *WakeLocker) resolve(done func(release func() error, err error), lost func(err error)) {
	w.mu.Lock()
	fail := w.FailAll || w.Fail > 0
	if w.Fail > 0 {
		w.Fail--
	}
	err := w.Err
	if err == nil {
		err = ErrDenied
	}
	g := &grant{lost: lost}
	if !fail {
		w.held++
		w.grants = append(w.grants, g)
	}
	w.mu.Unlock()

	if fail {
		done(nil, err)
		return
	}
	var once sync.Once
	done(func() error {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.Releases++
			if g.dead {
				return
			}
			g.dead = true
			w.held--
			for i, other := range w.grants {
				if other == g {
					w.grants = append(w.grants[:i], w.grants[i+1:]...)
					break
				}
			}
		})
		return nil
	}, nil)
}

// Held returns the number of locks acquired and not yet released
func (w *WakeLocker) Held() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.held
}

// Counts returns requests and releases
func (w *WakeLocker) Counts() (requests, releases int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Requests, w.Releases
}
