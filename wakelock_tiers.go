package purfectscroll

import (
	"context"
	"errors"

	"pkt.systems/pslog"
)

// TieredWakeLocker tries each locker in order. A tier that is unsupported,
// or reports ErrWakeLockUnsupported when asked, hands over to the next one;
// any other failure is final for that request.
type TieredWakeLocker struct {
	tiers []WakeLocker
	log   pslog.Logger
}

// NewTieredWakeLocker builds a locker from tiers, skipping nil entries
func NewTieredWakeLocker(logger pslog.Logger, tiers ...WakeLocker) *TieredWakeLocker {
	t := &TieredWakeLocker{log: loggerOrDefault(logger)}
	for _, tier := range tiers {
		if tier != nil {
			t.tiers = append(t.tiers, tier)
		}
	}
	return t
}

// Supported reports whether any tier is supported
func (t *TieredWakeLocker) Supported() bool {
	for _, tier := range t.tiers {
		if tier.Supported() {
			return true
		}
	}
	return false
}

// Request asks the first supported tier
func (t *TieredWakeLocker) Request(ctx context.Context, done func(release func() error, err error)) {
	t.try(ctx, 0, done, nil)
}

// RequestWatched asks the first supported tier, forwarding lost to tiers
// that can report a lost lock
func (t *TieredWakeLocker) RequestWatched(ctx context.Context, done func(release func() error, err error), lost func(err error)) {
	t.try(ctx, 0, done, lost)
}

func (t *TieredWakeLocker) try(ctx context.Context, i int, done func(release func() error, err error), lost func(err error)) {
	for i < len(t.tiers) && !t.tiers[i].Supported() {
		i++
	}
	if i >= len(t.tiers) {
		done(nil, ErrWakeLockUnsupported)
		return
	}
	next := func(release func() error, err error) {
		if err != nil && errors.Is(err, ErrWakeLockUnsupported) && ctx.Err() == nil {
			t.log.Debug("wake lock tier unsupported, trying next", "tier", i)
			t.try(ctx, i+1, done, lost)
			return
		}
		done(release, err)
	}
	if watched, ok := t.tiers[i].(WatchedWakeLocker); ok && lost != nil {
		watched.RequestWatched(ctx, next, lost)
		return
	}
	t.tiers[i].Request(ctx, next)
}
