package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	if _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Fatalf("expected second init to fail without --force")
	}
	if _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"config_version: 1", "speed:", "inhibitor: auto"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestRunRequiresReadableScript(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "--config", filepath.Join(dir, "config.yaml"), "run", filepath.Join(dir, "missing.txt"))
	if err == nil || !strings.Contains(err.Error(), "read script") {
		t.Fatalf("expected read script error, got %v", err)
	}
}

func TestRunRejectsUnknownInhibitor(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("config_version: 1\nwake_lock:\n  inhibitor: xscreensaver\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	script := filepath.Join(dir, "script.txt")
	if err := os.WriteFile(script, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if _, err := execute(t, "--config", cfgPath, "run", script); err == nil {
		t.Fatalf("expected unsupported inhibitor error")
	}
}

func TestOpenLogWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompter.log")
	logger, closeLog, err := openLog(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	logger.Info("hello", "k", "v")
	closeLog()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log line, got %q", data)
	}
}
