package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup [directory]",
	Short: "Initialize the Fuji root directory",
	Long: `Create the Fuji root directory tree (backups/, logs/, jars/,
servers/). Defaults to the configured root; pass a directory to
initialize somewhere else.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	root := cfg.ResolveRoot()
	if len(args) > 0 {
		root = args[0]
	}

	if _, err := os.Stat(root); err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s already exists\n", root)
	}

	for _, sub := range config.RootSubdirs() {
		dir := filepath.Join(root, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized Fuji root at %s\n", root)
	return nil
}
