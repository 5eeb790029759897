package purfectscroll

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/phroun/purfectscroll/internal/fakeplatform"
	"pkt.systems/pslog"
)

const frame = 16 * time.Millisecond

type harness struct {
	t         *testing.T
	loop      *fakeplatform.Loop
	frames    *fakeplatform.Frames
	container *fakeplatform.Container
	locker    *fakeplatform.WakeLocker
	vis       *Visibility
	notes     *noticeRecorder
	cfg       Config
	logger    pslog.Logger
	ctl       *Controller

	progress    []progressCall
	completions int
	transitions []Transition
}

type progressCall struct {
	at       time.Duration
	position float64
	ratio    float64
}

// newHarness builds a controller over a 600px viewport and 6000px of
// content. setup runs before the controller is created.
func newHarness(t *testing.T, setup ...func(h *harness)) *harness {
	t.Helper()
	loop := fakeplatform.NewLoop()
	h := &harness{
		t:         t,
		loop:      loop,
		frames:    fakeplatform.NewFrames(loop),
		container: fakeplatform.NewContainer(600, 6000),
		locker:    &fakeplatform.WakeLocker{},
		vis:       NewVisibility(),
		notes:     &noticeRecorder{shown: map[NoticeKind]Notice{}},
		cfg:       DefaultConfig(),
		logger:    quietLogger(),
	}
	for _, fn := range setup {
		fn(h)
	}
	ctl, err := New(h.container, Platform{
		Frames:     h.frames,
		Loop:       h.loop,
		WakeLock:   h.locker,
		Visibility: h.vis,
		Notifier:   h.notes,
		Logger:     h.logger,
	}, h.cfg)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	h.ctl = ctl
	ctl.OnScrollProgress(func(position, ratio float64) {
		h.progress = append(h.progress, progressCall{at: loop.Elapsed(), position: position, ratio: ratio})
	})
	ctl.OnScrollComplete(func() { h.completions++ })
	ctl.OnTransition(func(tr Transition) { h.transitions = append(h.transitions, tr) })
	return h
}

func (h *harness) start(speed float64) {
	h.t.Helper()
	if err := h.ctl.StartScrollingAt(speed); err != nil {
		h.t.Fatalf("start: %v", err)
	}
	h.loop.Drain()
}

func (h *harness) session() ScrollSession {
	h.t.Helper()
	s, ok := h.ctl.Session()
	if !ok {
		h.t.Fatalf("expected a session")
	}
	return s
}

func (h *harness) expectStatus(want Status) {
	h.t.Helper()
	if got := h.ctl.Status(); got != want {
		h.t.Fatalf("expected status %v, got %v", want, got)
	}
}

func (h *harness) expectPaused(reason PauseReason) {
	h.t.Helper()
	s := h.session()
	if s.Status != StatusPaused || s.PausedReason != reason {
		h.t.Fatalf("expected paused(%v), got %v(%v)", reason, s.Status, s.PausedReason)
	}
}

func (h *harness) expectWakeLock(want WakeLockStatus) {
	h.t.Helper()
	if got := h.ctl.WakeLock().Status; got != want {
		h.t.Fatalf("expected wake lock %v, got %v", want, got)
	}
}

type noticeRecorder struct {
	shown     map[NoticeKind]Notice
	history   []Notice
	dismissed []NoticeKind
}

func (r *noticeRecorder) Show(n Notice) {
	r.shown[n.Kind] = n
	r.history = append(r.history, n)
}

func (r *noticeRecorder) Dismiss(kind NoticeKind) {
	if _, ok := r.shown[kind]; ok {
		delete(r.shown, kind)
		r.dismissed = append(r.dismissed, kind)
	}
}

func quietLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.ErrorLevel,
	})
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) logger() pslog.Logger {
	return pslog.NewWithOptions(c, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.DebugLevel,
		VerboseFields: true,
	})
}

func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(c.buf.Bytes(), []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("parse log entry: %v", err)
		}
		out = append(out, entry)
	}
	return out
}

// entryWith returns the first entry carrying key
func (c *logCapture) entryWith(t *testing.T, key string) map[string]any {
	t.Helper()
	for _, entry := range c.entries(t) {
		if _, ok := entry[key]; ok {
			return entry
		}
	}
	t.Fatalf("no log entry with %q in %s", key, c.buf.String())
	return nil
}

// scriptedFrames hands frame callbacks to the test instead of a timer
type scriptedFrames struct {
	pending  func(time.Duration)
	requests int
	refuse   bool
}

func (f *scriptedFrames) RequestFrame(fn func(time.Duration)) (func(), error) {
	f.requests++
	if f.refuse {
		return nil, fakeplatform.ErrFrameRefused
	}
	f.pending = fn
	return func() { f.pending = nil }, nil
}

func (f *scriptedFrames) fire(ts time.Duration) bool {
	fn := f.pending
	if fn == nil {
		return false
	}
	f.pending = nil
	fn(ts)
	return true
}
