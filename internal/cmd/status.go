package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/supervisor"
)

var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Report whether a server is online",
	Long: `Probe the server's TCP port once and report online or offline. The
probe is the source of truth; session or lock state is not consulted.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatusServer,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

var (
	onlineStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	offlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func runStatusServer(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	sup := newSupervisor(cfg, logger)
	status, err := sup.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	style := offlineStyle
	if status == supervisor.StatusOnline {
		style = onlineStyle
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", args[0], style.Render(status.String()))
	return nil
}
