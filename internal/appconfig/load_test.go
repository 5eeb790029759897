package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phroun/purfectscroll"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scroll.Speed != DefaultConfig().Scroll.Speed {
		t.Fatalf("expected default speed, got %v", cfg.Scroll.Speed)
	}
	if cfg.WakeLock.Inhibitor != "auto" {
		t.Fatalf("expected auto inhibitor, got %q", cfg.WakeLock.Inhibitor)
	}
	sc := cfg.ScrollerConfig()
	if err := sc.Validate(); err != nil {
		t.Fatalf("default scroller config invalid: %v", err)
	}
	if sc.StopEpsilon != purfectscroll.DefaultConfig().StopEpsilon {
		t.Fatalf("expected default stop epsilon, got %v", sc.StopEpsilon)
	}
}

func TestLoadZeroFrameRateKeepsPollInterval(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
scroll:
  frame_rate: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sc := cfg.ScrollerConfig()
	if sc.PollInterval != purfectscroll.DefaultConfig().PollInterval {
		t.Fatalf("expected default poll interval, got %v", sc.PollInterval)
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadOverridesAndConverts(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
scroll:
  speed: 90
  progress_interval_ms: 250
  frame_rate: 30
wake_lock:
  inhibitor: none
  max_retries: 5
display:
  line_height: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sc := cfg.ScrollerConfig()
	if sc.Speed != 90 || sc.MaxRetries != 5 {
		t.Fatalf("overrides not applied: %+v", sc)
	}
	if sc.ProgressInterval != 250*time.Millisecond {
		t.Fatalf("expected 250ms progress interval, got %v", sc.ProgressInterval)
	}
	if sc.PollInterval != time.Second/30 || cfg.FrameInterval() != time.Second/30 {
		t.Fatalf("expected 30fps interval, got %v", sc.PollInterval)
	}
	if sc.Damping != DefaultConfig().Scroll.Damping {
		t.Fatalf("expected default damping, got %v", sc.Damping)
	}
	if cfg.Display.LineHeight != 20 || !cfg.Display.ShowStatusBar {
		t.Fatalf("unexpected display config: %+v", cfg.Display)
	}
}

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 7
scroll:
  speed: 60
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsUnknownInhibitor(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
wake_lock:
  inhibitor: xscreensaver
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "wake_lock.inhibitor") {
		t.Fatalf("expected inhibitor error, got %v", err)
	}
}

func TestLoadRejectsInvalidDamping(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
scroll:
  damping: 3
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "damping") {
		t.Fatalf("expected damping error, got %v", err)
	}
}

func TestLoadThemeOverrides(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
display:
  theme: light
  background: "#000080"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	theme := cfg.Theme()
	if theme.Background.ToHex() != "#000080" {
		t.Fatalf("expected background override, got %s", theme.Background.ToHex())
	}
	if theme.Foreground != purfectscroll.LightTheme().Foreground {
		t.Fatalf("expected light foreground, got %s", theme.Foreground.ToHex())
	}
}

func TestLoadRejectsInvalidColor(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
display:
  foreground: chartreuse
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "display.foreground") {
		t.Fatalf("expected color error, got %v", err)
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	if _, err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written default: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected version %d, got %d", CurrentConfigVersion, cfg.ConfigVersion)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
