package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Open a server's server.properties in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	name, err := server.ValidateName(args[0])
	if err != nil {
		return err
	}

	srv := server.New(cfg.ServersDir(), name)
	if !srv.Exists() {
		return errors.NewNotFoundError("server", name)
	}

	return openEditor(srv.PropertiesPath())
}
