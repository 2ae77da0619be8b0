// Package tmux drives the detachable terminal sessions that managed
// servers run inside. Each server gets one session named
// "{prefix}-{server}", which keeps Fuji's sessions distinguishable from
// unrelated tmux sessions on the host and guarantees one session per
// server.
//
// The session is the only channel to the java process: commands are
// injected with send-keys, there is no direct pipe to the daemon.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nicdgonzalez/fuji/internal/logging"
)

// DefaultPrefix is the session name prefix used when none is configured.
const DefaultPrefix = "fuji"

// SessionName returns the tmux session name for a server.
func SessionName(prefix, server string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-" + server
}

// Client performs session lifecycle operations against the tmux binary
// on PATH. The no-op cases (create when present, destroy/send when
// absent) log a warning and return nil, making every operation
// idempotent.
type Client struct {
	// Width and Height size new sessions. Zero leaves tmux defaults.
	Width  int
	Height int

	logger *logging.Logger
}

// NewClient returns a Client that logs through the given logger.
// A nil logger is replaced with a no-op logger.
func NewClient(logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{logger: logger}
}

// Exists reports whether a session with the given name exists.
// Any non-zero exit from tmux is treated as "does not exist".
func (c *Client) Exists(ctx context.Context, name string) bool {
	return exec.CommandContext(ctx, "tmux", "has-session", "-t", name).Run() == nil
}

// Create spawns a new detached session with the given working directory.
// If the session already exists this is a no-op with a warning.
func (c *Client) Create(ctx context.Context, name, workdir string) error {
	if c.Exists(ctx, name) {
		c.logger.Warn("session already exists", "session", name)
		return nil
	}

	args := []string{"new-session", "-d", "-s", name}
	if c.Width > 0 && c.Height > 0 {
		args = append(args, "-x", fmt.Sprintf("%d", c.Width), "-y", fmt.Sprintf("%d", c.Height))
	}

	cmd := exec.CommandContext(ctx, "tmux", args...)
	cmd.Dir = workdir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create tmux session %q: %w", name, err)
	}

	c.logger.Info("created session", "session", name, "workdir", workdir)
	return nil
}

// Destroy terminates the session. If the session does not exist this is
// a no-op with a warning.
func (c *Client) Destroy(ctx context.Context, name string) error {
	if !c.Exists(ctx, name) {
		c.logger.Warn("session does not exist", "session", name)
		return nil
	}

	if err := exec.CommandContext(ctx, "tmux", "kill-session", "-t", name).Run(); err != nil {
		return fmt.Errorf("failed to kill tmux session %q: %w", name, err)
	}

	c.logger.Info("killed session", "session", name)
	return nil
}

// SendCommand injects text into the session's input stream. When enter
// is true a trailing Enter keystroke activates the line. If the session
// does not exist this is a no-op with a warning.
func (c *Client) SendCommand(ctx context.Context, name, text string, enter bool) error {
	if !c.Exists(ctx, name) {
		c.logger.Warn("session does not exist", "session", name)
		return nil
	}

	args := []string{"send-keys", "-t", name, text}
	if enter {
		args = append(args, "Enter")
	}

	if err := exec.CommandContext(ctx, "tmux", args...).Run(); err != nil {
		return fmt.Errorf("failed to send keys to tmux session %q: %w", name, err)
	}

	c.logger.Info("sent command", "session", name, "command", text)
	return nil
}

// Capture returns the session pane's visible content plus scrollback,
// with ANSI escape sequences preserved.
func (c *Client) Capture(ctx context.Context, name string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "tmux",
		"capture-pane",
		"-t", name,
		"-p",      // print to stdout
		"-e",      // preserve escape sequences (colors)
		"-S", "-", // start from beginning of scrollback
	)
	return cmd.Output()
}

// List returns the names of all sessions carrying the given prefix.
// A tmux error (usually: no server running) yields an empty list.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	cmd := exec.CommandContext(ctx, "tmux", "list-sessions", "-F", "#{session_name}")
	output, err := cmd.Output()
	if err != nil {
		// No sessions or tmux not running
		return nil, nil
	}

	var sessions []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if strings.HasPrefix(line, prefix+"-") {
			sessions = append(sessions, line)
		}
	}
	return sessions, nil
}
