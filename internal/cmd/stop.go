package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
)

var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a server",
	Long: `Send the graceful "stop" command to the server, wait for it to go
offline, and tear down its tmux session.`,
	Args: cobra.ExactArgs(1),
	RunE: runStopServer,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStopServer(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	sup := newSupervisor(cfg, logger)
	if err := sup.Stop(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopped server %q\n", args[0])
	return nil
}
