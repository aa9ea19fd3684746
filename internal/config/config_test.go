package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Timeout(); got != 0 {
		t.Errorf("Timeout() = %v, want 0 unless configured", got)
	}
	if got := cfg.MaxOutputBytes(); got != 0 {
		t.Errorf("MaxOutputBytes() = %d, want 0 unless configured", got)
	}
	if got := cfg.Level(); got != DefaultLogLevel {
		t.Errorf("Level() = %q, want %q", got, DefaultLogLevel)
	}
	if got := cfg.HistorySize(); got != DefaultHistorySize {
		t.Errorf("HistorySize() = %d, want %d", got, DefaultHistorySize)
	}
	if got, want := cfg.PresetsPath(), filepath.Join(dir, PresetsFileName); got != want {
		t.Errorf("PresetsPath() = %q, want %q", got, want)
	}
	if got := cfg.Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
}

func TestLoad_AllFields(t *testing.T) {
	path := write(t, `version: 1
timeout: 45s
max_output: 4096
presets_file: mine.yaml
log_level: debug
log_json: true
history_size: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if got := cfg.Timeout(); got != 45*time.Second {
		t.Errorf("Timeout() = %v, want 45s", got)
	}
	if got := cfg.MaxOutputBytes(); got != 4096 {
		t.Errorf("MaxOutputBytes() = %d, want 4096", got)
	}
	if got, want := cfg.PresetsPath(), filepath.Join(filepath.Dir(path), "mine.yaml"); got != want {
		t.Errorf("PresetsPath() = %q, want %q", got, want)
	}
	if got := cfg.Level(); got != "debug" {
		t.Errorf("Level() = %q, want %q", got, "debug")
	}
	if !cfg.LogJSON {
		t.Error("LogJSON = false, want true")
	}
	if got := cfg.HistorySize(); got != 3 {
		t.Errorf("HistorySize() = %d, want 3", got)
	}
}

func TestPresetsPath_Absolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "p.yaml")
	cfg := &Config{RawPresetsFile: abs}
	if got := cfg.PresetsPath(); got != abs {
		t.Errorf("PresetsPath() = %q, want %q", got, abs)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	_, err := Load(write(t, "timeout: soon\n"))
	if err == nil {
		t.Fatal("expected error for unparsable timeout")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error = %q, want to mention timeout", err)
	}

	if _, err := Load(write(t, "timeout: -5s\n")); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestLoad_NegativeMaxOutput(t *testing.T) {
	_, err := Load(write(t, "max_output: -1\n"))
	if err == nil {
		t.Fatal("expected error for negative max_output")
	}
	if !strings.Contains(err.Error(), "max_output") {
		t.Errorf("error = %q, want to mention max_output", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(write(t, "timeout: [\n"))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "parsing") {
		t.Errorf("error = %q, want to mention parsing", err)
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if got := filepath.Base(p); got != FileName {
		t.Errorf("base = %q, want %q", got, FileName)
	}
	if got := filepath.Base(filepath.Dir(p)); got != "procbridge" {
		t.Errorf("dir = %q, want %q", got, "procbridge")
	}
}
