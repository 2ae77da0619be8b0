package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/server"
	"github.com/nicdgonzalez/fuji/internal/tmux"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed servers",
	Long: `List all servers under the Fuji root. A session marker shows which
servers have a live tmux session.

Examples:
  fuji list
  fuji list --filter 'surv*'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFilter string

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "glob pattern to filter server names")
	rootCmd.AddCommand(listCmd)
}

var (
	listNameStyle    = lipgloss.NewStyle().Bold(true)
	listRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	listStoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	names, err := server.List(cfg.ServersDir())
	if err != nil {
		return err
	}

	names, err = filterNames(names, listFilter)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No servers found.")
		return nil
	}

	sessions := newTmuxClient(cfg, logger)
	for i, name := range names {
		marker := listStoppedStyle.Render("stopped")
		if sessions.Exists(cmd.Context(), tmux.SessionName(cfg.Tmux.Prefix, name)) {
			marker = listRunningStyle.Render("running")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s  %s\n", i+1, listNameStyle.Render(name), marker)
	}
	return nil
}

// filterNames keeps the names matching the glob pattern. An empty
// pattern keeps everything.
func filterNames(names []string, pattern string) ([]string, error) {
	if pattern == "" {
		return names, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError("invalid filter pattern").
			WithField("filter").
			WithValue(pattern)
	}

	var kept []string
	for _, name := range names {
		if g.Match(name) {
			kept = append(kept, name)
		}
	}
	return kept, nil
}
