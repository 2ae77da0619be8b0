// Package console implements the live console viewer: a Bubbletea
// program that polls the server's tmux pane and renders the scrollback
// in a viewport. It is read-only; commands are sent to the server
// through tmux attach or the CLI, not from here.
package console

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/tmux"
)

// pollInterval is how often the pane is re-captured.
const pollInterval = 500 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// CaptureFunc returns the current contents of the server's pane.
type CaptureFunc func(ctx context.Context) (string, error)

type tickMsg time.Time

type captureMsg struct {
	content string
	err     error
}

// Model is the Bubbletea model for the console viewer.
type Model struct {
	serverName string
	capture    CaptureFunc

	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	follow   bool
	err      error

	ctx context.Context
}

// NewModel builds a console model for the named server. The capture
// function is called on every poll tick.
func NewModel(ctx context.Context, serverName string, capture CaptureFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		serverName: serverName,
		capture:    capture,
		spinner:    sp,
		follow:     true,
		ctx:        ctx,
	}
}

// Init starts the spinner and the first capture.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.captureCmd())
}

func (m Model) captureCmd() tea.Cmd {
	return func() tea.Msg {
		content, err := m.capture(m.ctx)
		return captureMsg{content: content, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles resize, key, tick and capture messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return m, nil
		}
		// Scrolling detaches from the bottom; "f" re-attaches.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tickMsg:
		return m, m.captureCmd()

	case captureMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.viewport.SetContent(msg.content)
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, tick()

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View renders the title bar, pane contents, and key help.
func (m Model) View() string {
	if !m.ready {
		return m.spinner.View() + " connecting to console..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("fuji console — " + m.serverName))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	help := "q: quit • f: follow • ↑/↓: scroll"
	if !m.follow {
		help = "q: quit • f: follow (off) • ↑/↓: scroll"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

// Err returns the capture error that terminated the program, if any.
func (m Model) Err() error {
	return m.err
}

// Run attaches a viewer to the named server's session and blocks until
// the operator quits or the capture fails.
func Run(ctx context.Context, client *tmux.Client, prefix, serverName string) error {
	session := tmux.SessionName(prefix, serverName)
	if !client.Exists(ctx, session) {
		return errors.NewNotRunningError(serverName)
	}

	capture := func(ctx context.Context) (string, error) {
		out, err := client.Capture(ctx, session)
		return string(out), err
	}

	model := NewModel(ctx, serverName, capture)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Seed the viewport size for terminals that never deliver an initial
	// WindowSizeMsg.
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		program.Send(tea.WindowSizeMsg{Width: w, Height: h})
	}

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
