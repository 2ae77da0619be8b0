package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a server",
	Long: `Launch the server's java process inside a detached tmux session and
wait for it to accept TCP connections. If the server is already online
this is a no-op.

With --auto-reconnect the command keeps running: it watches the server
and relaunches it whenever it goes offline, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runStartServer,
}

var startAutoReconnect bool

func init() {
	startCmd.Flags().BoolVarP(&startAutoReconnect, "auto-reconnect", "r", false, "restart the server whenever it goes offline")
	rootCmd.AddCommand(startCmd)
}

func runStartServer(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	sup := newSupervisor(cfg, logger)

	if !startAutoReconnect {
		return sup.Start(cmd.Context(), args[0], supervisor.StartOptions{})
	}

	// The watcher runs until interrupted; SIGINT/SIGTERM cancel the
	// context, and the worker removes the lock marker before exiting.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %q; press ctrl-c to stop watching\n", args[0])

	worker := sup.Watch(ctx, args[0])
	return worker.Wait()
}
