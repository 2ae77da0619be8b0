package tmux

import (
	"context"
	"testing"
)

func TestSessionName(t *testing.T) {
	tests := []struct {
		prefix string
		server string
		want   string
	}{
		{"fuji", "survival", "fuji-survival"},
		{"", "survival", "fuji-survival"},
		{"mc", "creative", "mc-creative"},
	}

	for _, tt := range tests {
		if got := SessionName(tt.prefix, tt.server); got != tt.want {
			t.Errorf("SessionName(%q, %q) = %q, want %q", tt.prefix, tt.server, got, tt.want)
		}
	}
}

func TestNewClientNilLogger(t *testing.T) {
	c := NewClient(nil)
	if c.logger == nil {
		t.Fatal("NewClient(nil) should install a no-op logger")
	}
}

func TestExistsUnknownSession(t *testing.T) {
	c := NewClient(nil)

	// A session name that cannot exist; any tmux failure (including tmux
	// not being installed) must collapse to false, never an error.
	if c.Exists(context.Background(), "fuji-test-does-not-exist-5f2a") {
		t.Error("Exists() = true for an unknown session, want false")
	}
}

func TestDestroyUnknownSessionIsNoop(t *testing.T) {
	c := NewClient(nil)

	if err := c.Destroy(context.Background(), "fuji-test-does-not-exist-5f2a"); err != nil {
		t.Errorf("Destroy() on missing session = %v, want nil", err)
	}
}

func TestSendCommandUnknownSessionIsNoop(t *testing.T) {
	c := NewClient(nil)

	err := c.SendCommand(context.Background(), "fuji-test-does-not-exist-5f2a", "stop", true)
	if err != nil {
		t.Errorf("SendCommand() on missing session = %v, want nil", err)
	}
}
