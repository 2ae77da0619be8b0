package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/paper"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <name>",
	Short: "Upgrade a server to a newer PaperMC build",
	Long: `Resolve the requested (or latest) PaperMC version and build, download
the jar into the shared cache if needed, and repoint the server's
server.jar symlink at it. Takes effect on the next start.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpgrade,
}

var (
	upgradeVersion string
	upgradeBuild   int
)

func init() {
	upgradeCmd.Flags().StringVar(&upgradeVersion, "version", "", "Minecraft version (default: latest)")
	upgradeCmd.Flags().IntVar(&upgradeBuild, "build", 0, "PaperMC build number (default: latest)")
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
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

	client := paper.NewClient(cfg.Paper, logger)
	return installJar(cmd, client, cfg, srv, upgradeVersion, upgradeBuild)
}
