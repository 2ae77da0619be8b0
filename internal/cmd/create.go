package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/paper"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new Minecraft server",
	Long: `Create a new server directory under the Fuji root, download the
PaperMC jar, and run the server once so it generates its configuration
files. Starting the server for real requires accepting the Minecraft
EULA (https://aka.ms/MinecraftEULA).`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var (
	createAcceptEULA bool
	createEdit       bool
	createVersion    string
	createBuild      int
)

func init() {
	createCmd.Flags().BoolVarP(&createAcceptEULA, "accept-eula", "y", false, "accept the Minecraft EULA without prompting")
	createCmd.Flags().BoolVarP(&createEdit, "edit", "e", false, "open server.properties in $EDITOR afterwards")
	createCmd.Flags().StringVar(&createVersion, "version", "", "Minecraft version (default: latest)")
	createCmd.Flags().IntVar(&createBuild, "build", 0, "PaperMC build number (default: latest)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := newLogger(cfg)
	defer logger.Close()

	name, err := server.ValidateName(args[0])
	if err != nil {
		return err
	}

	srv := server.New(cfg.ServersDir(), name)
	if srv.Exists() {
		return errors.NewAlreadyExistsError("server", name)
	}

	if err := os.MkdirAll(srv.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create server directory: %w", err)
	}
	logger.Info("created server directory", "server", name, "dir", srv.Dir)

	client := paper.NewClient(cfg.Paper, logger)
	if err := installJar(cmd, client, cfg, srv, createVersion, createBuild); err != nil {
		return err
	}

	if err := firstBoot(srv); err != nil {
		return err
	}

	if !createAcceptEULA {
		accepted, err := promptYesNo(cmd,
			"Please read the Minecraft EULA before continuing:\n"+
				"https://aka.ms/MinecraftEULA\n"+
				"Do you accept the Minecraft EULA? [y/N] ")
		if err != nil {
			return err
		}
		if !accepted {
			return errors.New("you must accept the Minecraft EULA")
		}
	}
	if err := os.WriteFile(filepath.Join(srv.Dir, "eula.txt"), []byte("eula=true\n"), 0644); err != nil {
		return fmt.Errorf("failed to write eula.txt: %w", err)
	}

	if createEdit {
		if err := openEditor(srv.PropertiesPath()); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created server %q\n", name)
	return nil
}

// installJar resolves, downloads and links the PaperMC jar for a server.
// Shared by create and upgrade.
func installJar(cmd *cobra.Command, client *paper.Client, cfg *config.Config, srv *server.Server, version string, build int) error {
	b, err := client.Resolve(cmd.Context(), version, build)
	if err != nil {
		return err
	}

	cached, err := client.Download(cmd.Context(), b, cfg.JarsDir())
	if err != nil {
		return err
	}

	if err := paper.Link(srv.JarPath(), cached); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed PaperMC %s build %d\n", b.Version, b.Number)
	return nil
}

// firstBoot runs the server jar once in the foreground so it generates
// eula.txt, server.properties and the world skeleton, then exits.
func firstBoot(srv *server.Server) error {
	boot := exec.Command("java", "-jar", srv.JarPath(), "--nogui")
	boot.Dir = srv.Dir
	if err := boot.Run(); err != nil {
		return fmt.Errorf("first boot failed: %w", err)
	}
	return nil
}

func promptYesNo(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func openEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	edit := exec.Command(editor, path)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	return edit.Run()
}
