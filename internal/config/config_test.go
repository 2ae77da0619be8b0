package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Root != "~/.fuji" {
		t.Errorf("Root = %q, want %q", cfg.Root, "~/.fuji")
	}
	if cfg.Server.JavaHeap != "5G" {
		t.Errorf("Server.JavaHeap = %q, want %q", cfg.Server.JavaHeap, "5G")
	}

	if cfg.Supervisor.StartRetries != 20 {
		t.Errorf("Supervisor.StartRetries = %d, want 20", cfg.Supervisor.StartRetries)
	}
	if cfg.Supervisor.StopRetries != 10 {
		t.Errorf("Supervisor.StopRetries = %d, want 10", cfg.Supervisor.StopRetries)
	}
	if cfg.Supervisor.PollIntervalMs != 1000 {
		t.Errorf("Supervisor.PollIntervalMs = %d, want 1000", cfg.Supervisor.PollIntervalMs)
	}
	if cfg.Supervisor.JitterMinMs != 100 {
		t.Errorf("Supervisor.JitterMinMs = %d, want 100", cfg.Supervisor.JitterMinMs)
	}
	if cfg.Supervisor.JitterMaxMs != 1000 {
		t.Errorf("Supervisor.JitterMaxMs = %d, want 1000", cfg.Supervisor.JitterMaxMs)
	}

	if cfg.Tmux.Prefix != "fuji" {
		t.Errorf("Tmux.Prefix = %q, want %q", cfg.Tmux.Prefix, "fuji")
	}
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestSupervisorDurations(t *testing.T) {
	cfg := SupervisorConfig{
		ProbeTimeoutMs: 1000,
		PollIntervalMs: 1500,
		JitterMinMs:    100,
		JitterMaxMs:    1000,
	}

	if got := cfg.ProbeTimeout(); got != time.Second {
		t.Errorf("ProbeTimeout() = %v, want %v", got, time.Second)
	}
	if got := cfg.PollInterval(); got != 1500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want %v", got, 1500*time.Millisecond)
	}
	if got := cfg.JitterMin(); got != 100*time.Millisecond {
		t.Errorf("JitterMin() = %v, want %v", got, 100*time.Millisecond)
	}
	if got := cfg.JitterMax(); got != time.Second {
		t.Errorf("JitterMax() = %v, want %v", got, time.Second)
	}
}

func TestResolveRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		root string
		want string
	}{
		{"~/.fuji", filepath.Join(home, ".fuji")},
		{"~", home},
		{"/srv/fuji", "/srv/fuji"},
		{"", filepath.Join(home, ".fuji")},
	}

	for _, tt := range tests {
		cfg := &Config{Root: tt.root}
		if got := cfg.ResolveRoot(); got != tt.want {
			t.Errorf("ResolveRoot(%q) = %q, want %q", tt.root, got, tt.want)
		}
	}
}

func TestRootLayout(t *testing.T) {
	cfg := &Config{Root: "/srv/fuji"}

	if got := cfg.ServersDir(); got != "/srv/fuji/servers" {
		t.Errorf("ServersDir() = %q, want %q", got, "/srv/fuji/servers")
	}
	if got := cfg.JarsDir(); got != "/srv/fuji/jars" {
		t.Errorf("JarsDir() = %q, want %q", got, "/srv/fuji/jars")
	}
	if got := cfg.LogsDir(); got != "/srv/fuji/logs" {
		t.Errorf("LogsDir() = %q, want %q", got, "/srv/fuji/logs")
	}
	if got := cfg.BackupsDir(); got != "/srv/fuji/backups" {
		t.Errorf("BackupsDir() = %q, want %q", got, "/srv/fuji/backups")
	}
}

func TestRootSubdirs(t *testing.T) {
	want := []string{"backups", "logs", "jars", "servers"}
	got := RootSubdirs()

	if len(got) != len(want) {
		t.Fatalf("RootSubdirs() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RootSubdirs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
