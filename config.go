package purfectscroll

import (
	"fmt"
	"time"
)

// Config tunes the driver, the detector, and the wake lock manager.
// Zero fields take the values from DefaultConfig.
type Config struct {
	Speed       float64 // Default speed for StartScrolling, px/s (default: 60)
	Damping     float64 // Low-pass coefficient per 60Hz frame, in (0,1] (default: 0.15)
	DecayFactor float64 // Speed multiplier per 60Hz frame while decelerating, in (0,1) (default: 0.85)
	StopEpsilon float64 // Deceleration ends below this speed, px/s (default: 0.5)

	MinVisiblePixelTolerance float64 // Offset mismatch treated as manual scroll (default: 2)

	ProgressInterval time.Duration // Minimum spacing of progress callbacks (default: 100ms)
	MaxFrameDelta    time.Duration // Frame delta cap (default: 50ms)
	PollInterval     time.Duration // Fallback tick when frames are unavailable (default: ~16.67ms)

	MaxRetries        int           // Wake lock attempts before Error (default: 3)
	RetryBaseDelay    time.Duration // First retry delay, doubled per attempt (default: 1s)
	MaxRetryDelay     time.Duration // Cap on the retry delay (default: 4s)
	ReacquireDeadline time.Duration // Target for re-acquiring after the view is shown (default: 500ms)
}

// referenceFrame is the frame length the per-frame coefficients are tuned for
const referenceFrame = time.Second / 60

// DefaultConfig returns the default tuning
func DefaultConfig() Config {
	return Config{
		Speed:                    60,
		Damping:                  0.15,
		DecayFactor:              0.85,
		StopEpsilon:              0.5,
		MinVisiblePixelTolerance: 2,
		ProgressInterval:         100 * time.Millisecond,
		MaxFrameDelta:            50 * time.Millisecond,
		PollInterval:             referenceFrame,
		MaxRetries:               3,
		RetryBaseDelay:           time.Second,
		MaxRetryDelay:            4 * time.Second,
		ReacquireDeadline:        500 * time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultConfig
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Speed == 0 {
		c.Speed = def.Speed
	}
	if c.Damping == 0 {
		c.Damping = def.Damping
	}
	if c.DecayFactor == 0 {
		c.DecayFactor = def.DecayFactor
	}
	if c.StopEpsilon == 0 {
		c.StopEpsilon = def.StopEpsilon
	}
	if c.MinVisiblePixelTolerance == 0 {
		c.MinVisiblePixelTolerance = def.MinVisiblePixelTolerance
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = def.ProgressInterval
	}
	if c.MaxFrameDelta == 0 {
		c.MaxFrameDelta = def.MaxFrameDelta
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = def.RetryBaseDelay
	}
	if c.MaxRetryDelay == 0 {
		c.MaxRetryDelay = def.MaxRetryDelay
	}
	if c.ReacquireDeadline == 0 {
		c.ReacquireDeadline = def.ReacquireDeadline
	}
	return c
}

// Validate reports the first out-of-range field
func (c Config) Validate() error {
	switch {
	case c.Damping <= 0 || c.Damping > 1:
		return fmt.Errorf("damping must be in (0,1], got %v", c.Damping)
	case c.DecayFactor <= 0 || c.DecayFactor >= 1:
		return fmt.Errorf("decay factor must be in (0,1), got %v", c.DecayFactor)
	case c.StopEpsilon <= 0:
		return fmt.Errorf("stop epsilon must be positive, got %v", c.StopEpsilon)
	case c.MinVisiblePixelTolerance < 0:
		return fmt.Errorf("pixel tolerance must not be negative, got %v", c.MinVisiblePixelTolerance)
	case c.ProgressInterval < 0:
		return fmt.Errorf("progress interval must not be negative, got %v", c.ProgressInterval)
	case c.MaxFrameDelta <= 0:
		return fmt.Errorf("max frame delta must be positive, got %v", c.MaxFrameDelta)
	case c.PollInterval <= 0:
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	case c.MaxRetries < 1:
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	case c.RetryBaseDelay <= 0 || c.MaxRetryDelay < c.RetryBaseDelay:
		return fmt.Errorf("retry delays must satisfy 0 < base <= max, got %v/%v", c.RetryBaseDelay, c.MaxRetryDelay)
	case c.ReacquireDeadline <= 0:
		return fmt.Errorf("reacquire deadline must be positive, got %v", c.ReacquireDeadline)
	}
	return nil
}

// retryDelay returns the backoff before retry number attempt (1-based):
// base * 2^(attempt-1), capped at MaxRetryDelay.
func (c Config) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := c.RetryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.MaxRetryDelay {
			return c.MaxRetryDelay
		}
	}
	if delay > c.MaxRetryDelay {
		return c.MaxRetryDelay
	}
	return delay
}
