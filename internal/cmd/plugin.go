package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/paper"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage server plugins",
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install <server> <filename>",
	Short: "Install a plugin jar into a server",
	Long: `Copy a plugin jar from the local filesystem (--local) or download it
from a URL (--url) into the server's plugins directory under the given
filename. Exactly one source must be specified.`,
	Args: cobra.ExactArgs(2),
	RunE: runPluginInstall,
}

var (
	pluginLocal string
	pluginURL   string
)

func init() {
	pluginInstallCmd.Flags().StringVar(&pluginLocal, "local", "", "path to a plugin jar on the local filesystem")
	pluginInstallCmd.Flags().StringVar(&pluginURL, "url", "", "URL to download the plugin jar from")
	pluginInstallCmd.MarkFlagsMutuallyExclusive("local", "url")
	pluginInstallCmd.MarkFlagsOneRequired("local", "url")

	pluginCmd.AddCommand(pluginInstallCmd)
	rootCmd.AddCommand(pluginCmd)
}

func runPluginInstall(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	name, err := server.ValidateName(args[0])
	if err != nil {
		return err
	}
	filename := args[1]

	srv := server.New(cfg.ServersDir(), name)
	if !srv.Exists() {
		return errors.NewNotFoundError("server", name)
	}

	var data []byte
	switch {
	case pluginLocal != "":
		data, err = os.ReadFile(pluginLocal)
		if err != nil {
			return fmt.Errorf("failed to read plugin: %w", err)
		}
	case pluginURL != "":
		client := paper.NewClient(cfg.Paper, logger)
		data, err = client.Fetch(cmd.Context(), pluginURL)
		if err != nil {
			return fmt.Errorf("failed to download plugin: %w", err)
		}
	}

	if err := os.MkdirAll(srv.PluginsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create plugins directory: %w", err)
	}

	dest := filepath.Join(srv.PluginsDir(), filename)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write plugin: %w", err)
	}

	logger.Info("installed plugin", "server", name, "plugin", filename)
	fmt.Fprintf(cmd.OutOrStdout(), "Installed plugin %q\n", filename)
	return nil
}
