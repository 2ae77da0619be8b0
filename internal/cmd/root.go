// Package cmd wires the CLI surface: one cobra command per lifecycle
// operation, configuration through viper, and shared construction of
// the supervisor stack.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/logging"
	"github.com/nicdgonzalez/fuji/internal/probe"
	"github.com/nicdgonzalez/fuji/internal/supervisor"
	"github.com/nicdgonzalez/fuji/internal/tmux"
)

var rootCmd = &cobra.Command{
	Use:   "fuji",
	Short: "Minecraft (PaperMC) server manager",
	Long: `Fuji manages PaperMC Minecraft servers on a single host: it creates
per-server directories under a root, launches the java process inside a
detached tmux session, and watches servers over TCP to know when they
are online.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/fuji/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Defaults first so they hold even without a config file.
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/fuji")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FUJI")
	// FUJI_SUPERVISOR_START_RETRIES overrides supervisor.start_retries.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// newLogger builds the file logger under <root>/logs, degrading to a
// no-op logger when logging is disabled or the directory is unwritable.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(cfg.LogsDir(), cfg.Logging.Level)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// newTmuxClient builds a tmux client sized from the config.
func newTmuxClient(cfg *config.Config, logger *logging.Logger) *tmux.Client {
	client := tmux.NewClient(logger)
	client.Width = cfg.Tmux.Width
	client.Height = cfg.Tmux.Height
	return client
}

// newSupervisor assembles the full supervisor stack from the current
// configuration. The caller owns closing the returned logger.
func newSupervisor(cfg *config.Config, logger *logging.Logger) *supervisor.Supervisor {
	sessions := newTmuxClient(cfg, logger)
	prober := &probe.TCP{Timeout: cfg.Supervisor.ProbeTimeout()}
	return supervisor.New(cfg, sessions, prober, logger)
}
