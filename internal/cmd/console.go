package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/console"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var consoleCmd = &cobra.Command{
	Use:   "console <name>",
	Short: "Watch a server's console",
	Long: `Open a read-only live view of the server's console. The view polls
the tmux pane, so it works without attaching to the session. Press q to
quit; to type commands into the server, attach with tmux directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	name, err := server.ValidateName(args[0])
	if err != nil {
		return err
	}

	client := newTmuxClient(cfg, logger)
	return console.Run(cmd.Context(), client, cfg.Tmux.Prefix, name)
}
