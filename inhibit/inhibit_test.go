package inhibit

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/phroun/purfectscroll"
	"pkt.systems/pslog"
)

type result struct {
	release func() error
	err     error
}

func request(t *testing.T, ctx context.Context, p *Process) result {
	t.Helper()
	ch := make(chan result, 1)
	p.Request(ctx, func(release func() error, err error) {
		ch <- result{release, err}
	})
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("request did not complete")
		return result{}
	}
}

func quiet() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
}

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestProcessHoldsAndReleases(t *testing.T) {
	requireCommand(t, "sleep")
	p := NewProcess(quiet(), "sleep", "60")
	p.Grace = 20 * time.Millisecond
	if !p.Supported() {
		t.Fatalf("expected sleep to be supported")
	}
	r := request(t, context.Background(), p)
	if r.err != nil {
		t.Fatalf("request: %v", r.err)
	}
	if err := r.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := r.release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
}

func TestProcessExitingEarlyFails(t *testing.T) {
	requireCommand(t, "false")
	p := NewProcess(quiet(), "false")
	p.Grace = time.Second
	r := request(t, context.Background(), p)
	if r.err == nil || r.release != nil {
		t.Fatalf("expected failure, got release=%v err=%v", r.release != nil, r.err)
	}
	if errors.Is(r.err, purfectscroll.ErrWakeLockUnsupported) {
		t.Fatalf("early exit is not unsupported: %v", r.err)
	}
}

func TestProcessReportsLateExit(t *testing.T) {
	requireCommand(t, "sleep")
	p := NewProcess(quiet(), "sleep", "0.2")
	p.Grace = 20 * time.Millisecond
	ch := make(chan result, 1)
	lost := make(chan error, 1)
	p.RequestWatched(context.Background(), func(release func() error, err error) {
		ch <- result{release, err}
	}, func(err error) { lost <- err })

	var r result
	select {
	case r = <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("request did not complete")
	}
	if r.err != nil {
		t.Fatalf("request: %v", r.err)
	}
	select {
	case err := <-lost:
		if err == nil {
			t.Fatalf("expected a loss error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("late exit was not reported")
	}
	if err := r.release(); err != nil {
		t.Fatalf("release after loss: %v", err)
	}
}

func TestProcessReleaseIsNotALoss(t *testing.T) {
	requireCommand(t, "sleep")
	p := NewProcess(quiet(), "sleep", "60")
	p.Grace = 20 * time.Millisecond
	ch := make(chan result, 1)
	lost := make(chan error, 1)
	p.RequestWatched(context.Background(), func(release func() error, err error) {
		ch <- result{release, err}
	}, func(err error) { lost <- err })
	r := <-ch
	if r.err != nil {
		t.Fatalf("request: %v", r.err)
	}
	if err := r.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	select {
	case err := <-lost:
		t.Fatalf("release reported as a loss: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProcessMissingIsUnsupported(t *testing.T) {
	p := NewProcess(quiet(), "purfectscroll-no-such-inhibitor")
	p.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	if p.Supported() {
		t.Fatalf("expected unsupported")
	}
	r := request(t, context.Background(), p)
	if !errors.Is(r.err, purfectscroll.ErrWakeLockUnsupported) {
		t.Fatalf("expected unsupported error, got %v", r.err)
	}
}

func TestProcessCancelledRequest(t *testing.T) {
	requireCommand(t, "sleep")
	p := NewProcess(quiet(), "sleep", "60")
	p.Grace = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan result, 1)
	p.Request(ctx, func(release func() error, err error) { ch <- result{release, err} })
	cancel()
	select {
	case r := <-ch:
		if !errors.Is(r.err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("cancelled request did not complete")
	}
}

func TestByName(t *testing.T) {
	locker, err := ByName(quiet(), "none")
	if err != nil || locker != nil {
		t.Fatalf("expected nil locker for none, got %v %v", locker, err)
	}
	if _, err := ByName(quiet(), "bogus"); err == nil {
		t.Fatalf("expected error for unknown inhibitor")
	}
	locker, err = ByName(quiet(), "caffeinate")
	if err != nil {
		t.Fatalf("caffeinate: %v", err)
	}
	if p, ok := locker.(*Process); !ok || p.Name != "caffeinate" {
		t.Fatalf("unexpected locker %T", locker)
	}
	if _, ok := Auto(quiet()).(*purfectscroll.TieredWakeLocker); !ok {
		t.Fatalf("expected tiered locker")
	}
}
