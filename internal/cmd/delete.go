package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a server and all its data",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteAssumeYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteAssumeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	name, err := server.ValidateName(args[0])
	if err != nil {
		return err
	}

	srv := server.New(cfg.ServersDir(), name)
	if !srv.Exists() {
		return errors.NewNotFoundError("server", name)
	}

	if !deleteAssumeYes {
		accepted, err := promptYesNo(cmd, fmt.Sprintf("Are you sure you want to delete %q? [y/N] ", name))
		if err != nil {
			return err
		}
		if !accepted {
			return nil
		}
	}

	if err := os.RemoveAll(srv.Dir); err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	logger.Info("deleted server", "server", name, "dir", srv.Dir)
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted server %q\n", name)
	return nil
}
