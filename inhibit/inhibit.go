// Package inhibit provides screen wake lockers backed by external inhibitor
// commands such as systemd-inhibit and caffeinate. The lock is held for as
// long as the inhibitor process runs.
package inhibit

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phroun/purfectscroll"
	"pkt.systems/pslog"
)

// DefaultGrace is how long an inhibitor must stay alive before the lock is
// reported as held. Inhibitors that cannot take the lock exit immediately.
const DefaultGrace = 150 * time.Millisecond

// Process is a WakeLocker that holds the lock by running a command
type Process struct {
	Name  string
	Args  []string
	Grace time.Duration

	log      pslog.Logger
	lookPath func(string) (string, error)
}

// NewProcess returns a locker that runs name with args
func NewProcess(logger pslog.Logger, name string, args ...string) *Process {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Process{
		Name:     name,
		Args:     args,
		Grace:    DefaultGrace,
		log:      logger.With("inhibitor", name),
		lookPath: exec.LookPath,
	}
}

// SystemdInhibit blocks idle through logind
func SystemdInhibit(logger pslog.Logger) *Process {
	return NewProcess(logger, "systemd-inhibit",
		"--what=idle",
		"--who=purfectscroll",
		"--why=Teleprompter scrolling",
		"--mode=block",
		"sleep", "infinity")
}

// Caffeinate keeps the display awake on macOS
func Caffeinate(logger pslog.Logger) *Process {
	return NewProcess(logger, "caffeinate", "-d")
}

// Supported reports whether the command is on PATH
func (p *Process) Supported() bool {
	_, err := p.lookPath(p.Name)
	return err == nil
}

// Request starts the inhibitor without blocking the caller
func (p *Process) Request(ctx context.Context, done func(release func() error, err error)) {
	p.RequestWatched(ctx, done, nil)
}

// RequestWatched is Request, also calling lost if the inhibitor exits on
// its own after the lock was granted
func (p *Process) RequestWatched(ctx context.Context, done func(release func() error, err error), lost func(err error)) {
	path, err := p.lookPath(p.Name)
	if err != nil {
		done(nil, fmt.Errorf("%s: %w", p.Name, purfectscroll.ErrWakeLockUnsupported))
		return
	}
	go p.run(ctx, path, done, lost)
}

func (p *Process) run(ctx context.Context, path string, done func(release func() error, err error), lost func(err error)) {
	cmd := exec.Command(path, p.Args...)
	if err := cmd.Start(); err != nil {
		done(nil, fmt.Errorf("start %s: %w", p.Name, err))
		return
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	grace := p.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-exited:
		if err == nil {
			err = errors.New("exited")
		}
		done(nil, fmt.Errorf("%s did not hold the lock: %w", p.Name, err))
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
		done(nil, ctx.Err())
	case <-timer.C:
		pid := cmd.Process.Pid
		p.log.Debug("inhibitor running", "pid", pid)
		var releasing atomic.Bool
		stopped := make(chan struct{})
		go func() {
			err := <-exited
			close(stopped)
			if releasing.Load() {
				return
			}
			if err == nil {
				err = errors.New("exited")
			}
			p.log.Warn("inhibitor exited while holding the lock", "pid", pid, "err", err)
			if lost != nil {
				lost(fmt.Errorf("%s stopped holding the lock: %w", p.Name, err))
			}
		}()
		var once sync.Once
		done(func() error {
			once.Do(func() {
				releasing.Store(true)
				_ = cmd.Process.Kill()
				<-stopped
				p.log.Debug("inhibitor stopped", "pid", pid)
			})
			return nil
		}, nil)
	}
}

// Auto returns a locker that uses whichever known inhibitor is installed
func Auto(logger pslog.Logger) purfectscroll.WakeLocker {
	return purfectscroll.NewTieredWakeLocker(logger, SystemdInhibit(logger), Caffeinate(logger))
}

// ByName resolves a configured inhibitor name. "none" yields nil.
func ByName(logger pslog.Logger, name string) (purfectscroll.WakeLocker, error) {
	switch name {
	case "", "auto":
		return Auto(logger), nil
	case "none":
		return nil, nil
	case "systemd-inhibit":
		return SystemdInhibit(logger), nil
	case "caffeinate":
		return Caffeinate(logger), nil
	default:
		return nil, fmt.Errorf("unknown inhibitor %q", name)
	}
}
