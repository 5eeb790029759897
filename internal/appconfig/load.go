package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phroun/purfectscroll"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PURFECTSCROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("scroll.speed", cfg.Scroll.Speed)
	v.SetDefault("scroll.speed_step", cfg.Scroll.SpeedStep)
	v.SetDefault("scroll.damping", cfg.Scroll.Damping)
	v.SetDefault("scroll.decay_factor", cfg.Scroll.DecayFactor)
	v.SetDefault("scroll.min_visible_pixel_tolerance", cfg.Scroll.MinVisiblePixelTolerance)
	v.SetDefault("scroll.progress_interval_ms", cfg.Scroll.ProgressIntervalMS)
	v.SetDefault("scroll.max_frame_delta_ms", cfg.Scroll.MaxFrameDeltaMS)
	v.SetDefault("scroll.frame_rate", cfg.Scroll.FrameRate)
	v.SetDefault("wake_lock.inhibitor", cfg.WakeLock.Inhibitor)
	v.SetDefault("wake_lock.max_retries", cfg.WakeLock.MaxRetries)
	v.SetDefault("wake_lock.retry_base_delay_ms", cfg.WakeLock.RetryBaseDelayMS)
	v.SetDefault("wake_lock.max_retry_delay_ms", cfg.WakeLock.MaxRetryDelayMS)
	v.SetDefault("wake_lock.reacquire_deadline_ms", cfg.WakeLock.ReacquireDeadlineMS)
	v.SetDefault("display.line_height", cfg.Display.LineHeight)
	v.SetDefault("display.line_spacing", cfg.Display.LineSpacing)
	v.SetDefault("display.margin", cfg.Display.Margin)
	v.SetDefault("display.show_status_bar", cfg.Display.ShowStatusBar)
	v.SetDefault("display.theme", cfg.Display.Theme)
	v.SetDefault("display.foreground", cfg.Display.Foreground)
	v.SetDefault("display.background", cfg.Display.Background)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.WakeLock.Inhibitor {
	case "auto", "none", "systemd-inhibit", "caffeinate":
	default:
		return fmt.Errorf("unsupported wake_lock.inhibitor %q", cfg.WakeLock.Inhibitor)
	}
	switch cfg.Display.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("unsupported display.theme %q", cfg.Display.Theme)
	}
	for key, value := range map[string]string{"display.foreground": cfg.Display.Foreground, "display.background": cfg.Display.Background} {
		if value == "" {
			continue
		}
		if _, ok := purfectscroll.ParseHexColor(value); !ok {
			return fmt.Errorf("%s: invalid color %q", key, value)
		}
	}
	if cfg.Display.LineHeight <= 0 {
		return fmt.Errorf("display.line_height must be positive")
	}
	if cfg.Scroll.FrameRate < 0 || cfg.Scroll.FrameRate > 240 {
		return fmt.Errorf("scroll.frame_rate must be between 0 and 240")
	}
	if err := cfg.ScrollerConfig().Validate(); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
