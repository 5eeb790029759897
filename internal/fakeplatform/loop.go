// Package fakeplatform provides deterministic, virtual-time stand-ins for
// the platform primitives the scroll core consumes.
package fakeplatform

import (
	"sort"
	"sync"
	"time"
)

// Epoch is the virtual start time of every Loop
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Loop is a single-threaded loop on virtual time. Nothing runs until the
// test calls Drain or Advance.
type Loop struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*timer
	posted []func()
}

type timer struct {
	when      time.Time
	seq       uint64
	fn        func()
	cancelled bool
}

// NewLoop creates a loop at Epoch
func NewLoop() *Loop {
	return &Loop{now: Epoch}
}

// Now returns the virtual time
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Elapsed returns the virtual time since Epoch
func (l *Loop) Elapsed() time.Duration {
	return l.Now().Sub(Epoch)
}

// Post queues fn; it is safe from any goroutine
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// AfterFunc schedules fn at now+d
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	t := &timer{when: l.now.Add(d), seq: l.seq, fn: fn}
	l.timers = append(l.timers, t)
	return func() {
		l.mu.Lock()
		t.cancelled = true
		l.mu.Unlock()
	}
}

// Pending returns the number of live timers
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Drain runs posted functions until none are left
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.posted) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.posted[0]
		l.posted = l.posted[1:]
		l.mu.Unlock()
		fn()
	}
}

// Advance moves virtual time forward by d, running posted functions and
// every timer that comes due, in time order
func (l *Loop) Advance(d time.Duration) {
	l.mu.Lock()
	target := l.now.Add(d)
	l.mu.Unlock()

	for {
		l.Drain()
		t := l.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	l.mu.Lock()
	l.now = target
	l.mu.Unlock()
	l.Drain()
}

func (l *Loop) nextDue(target time.Time) *timer {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.timers[:0]
	for _, t := range l.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	l.timers = live
	if len(l.timers) == 0 {
		return nil
	}
	sort.Slice(l.timers, func(i, j int) bool {
		if l.timers[i].when.Equal(l.timers[j].when) {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].when.Before(l.timers[j].when)
	})
	t := l.timers[0]
	if t.when.After(target) {
		return nil
	}
	l.timers = l.timers[1:]
	l.now = t.when
	return t
}
