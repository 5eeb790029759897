package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"github.com/phroun/purfectscroll"
)

// Config is the top-level configuration of the purfectscroll command.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Scroll        ScrollConfig   `mapstructure:"scroll" yaml:"scroll"`
	WakeLock      WakeLockConfig `mapstructure:"wake_lock" yaml:"wake_lock"`
	Display       DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ScrollConfig tunes the scroll driver.
type ScrollConfig struct {
	Speed                    float64 `mapstructure:"speed" yaml:"speed"`
	SpeedStep                float64 `mapstructure:"speed_step" yaml:"speed_step"`
	Damping                  float64 `mapstructure:"damping" yaml:"damping"`
	DecayFactor              float64 `mapstructure:"decay_factor" yaml:"decay_factor"`
	MinVisiblePixelTolerance float64 `mapstructure:"min_visible_pixel_tolerance" yaml:"min_visible_pixel_tolerance"`
	ProgressIntervalMS       int     `mapstructure:"progress_interval_ms" yaml:"progress_interval_ms"`
	MaxFrameDeltaMS          int     `mapstructure:"max_frame_delta_ms" yaml:"max_frame_delta_ms"`
	FrameRate                int     `mapstructure:"frame_rate" yaml:"frame_rate"`
}

// WakeLockConfig controls screen wake lock acquisition.
type WakeLockConfig struct {
	// Inhibitor selects the external inhibitor: auto, systemd-inhibit, caffeinate, or none.
	Inhibitor           string `mapstructure:"inhibitor" yaml:"inhibitor"`
	MaxRetries          int    `mapstructure:"max_retries" yaml:"max_retries"`
	RetryBaseDelayMS    int    `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	MaxRetryDelayMS     int    `mapstructure:"max_retry_delay_ms" yaml:"max_retry_delay_ms"`
	ReacquireDeadlineMS int    `mapstructure:"reacquire_deadline_ms" yaml:"reacquire_deadline_ms"`
}

// DisplayConfig controls the terminal teleprompter.
type DisplayConfig struct {
	LineHeight    int    `mapstructure:"line_height" yaml:"line_height"`
	LineSpacing   int    `mapstructure:"line_spacing" yaml:"line_spacing"`
	Margin        int    `mapstructure:"margin" yaml:"margin"`
	ShowStatusBar bool   `mapstructure:"show_status_bar" yaml:"show_status_bar"`
	Theme         string `mapstructure:"theme" yaml:"theme"`
	Foreground    string `mapstructure:"foreground" yaml:"foreground,omitempty"`
	Background    string `mapstructure:"background" yaml:"background,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	def := purfectscroll.DefaultConfig()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Scroll: ScrollConfig{
			Speed:                    def.Speed,
			SpeedStep:                10,
			Damping:                  def.Damping,
			DecayFactor:              def.DecayFactor,
			MinVisiblePixelTolerance: def.MinVisiblePixelTolerance,
			ProgressIntervalMS:       int(def.ProgressInterval / time.Millisecond),
			MaxFrameDeltaMS:          int(def.MaxFrameDelta / time.Millisecond),
			FrameRate:                60,
		},
		WakeLock: WakeLockConfig{
			Inhibitor:           "auto",
			MaxRetries:          def.MaxRetries,
			RetryBaseDelayMS:    int(def.RetryBaseDelay / time.Millisecond),
			MaxRetryDelayMS:     int(def.MaxRetryDelay / time.Millisecond),
			ReacquireDeadlineMS: int(def.ReacquireDeadline / time.Millisecond),
		},
		Display: DisplayConfig{
			LineHeight:    16,
			LineSpacing:   0,
			Margin:        4,
			ShowStatusBar: true,
			Theme:         "dark",
		},
	}
}

// ScrollerConfig converts to the scroll core's configuration. Keys the file
// leaves zero take the core defaults, and frame_rate 0 keeps the default poll
// interval.
func (c Config) ScrollerConfig() purfectscroll.Config {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	cfg := purfectscroll.Config{
		Speed:                    c.Scroll.Speed,
		Damping:                  c.Scroll.Damping,
		DecayFactor:              c.Scroll.DecayFactor,
		MinVisiblePixelTolerance: c.Scroll.MinVisiblePixelTolerance,
		ProgressInterval:         ms(c.Scroll.ProgressIntervalMS),
		MaxFrameDelta:            ms(c.Scroll.MaxFrameDeltaMS),
		MaxRetries:               c.WakeLock.MaxRetries,
		RetryBaseDelay:           ms(c.WakeLock.RetryBaseDelayMS),
		MaxRetryDelay:            ms(c.WakeLock.MaxRetryDelayMS),
		ReacquireDeadline:        ms(c.WakeLock.ReacquireDeadlineMS),
	}
	if c.Scroll.FrameRate > 0 {
		cfg.PollInterval = time.Second / time.Duration(c.Scroll.FrameRate)
	}
	return cfg.WithDefaults()
}

// Theme resolves the display theme and its color overrides
func (c Config) Theme() purfectscroll.Theme {
	theme := purfectscroll.ThemeByName(c.Display.Theme)
	if fg, ok := purfectscroll.ParseHexColor(c.Display.Foreground); ok {
		theme.Foreground = fg
	}
	if bg, ok := purfectscroll.ParseHexColor(c.Display.Background); ok {
		theme.Background = bg
	}
	return theme
}

// FrameInterval returns the terminal frame interval.
func (c Config) FrameInterval() time.Duration {
	if c.Scroll.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Scroll.FrameRate)
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "purfectscroll", "config.yaml"), nil
}
