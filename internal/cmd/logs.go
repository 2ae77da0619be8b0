package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/server"
)

var logsCmd = &cobra.Command{
	Use:   "logs <name>",
	Short: "View a server's log",
	Long: `Print the tail of the server's logs/latest.log.

Examples:
  # Show the last 50 lines
  fuji logs survival

  # Show the last 200 lines
  fuji logs survival -n 200

  # Follow the log in real time
  fuji logs survival -f`,
	Args: cobra.ExactArgs(1),
	RunE: runServerLogs,
}

var (
	logsTail   int
	logsFollow bool
)

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "keep printing as the log grows")
	rootCmd.AddCommand(logsCmd)
}

func runServerLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	name, err := server.ValidateName(args[0])
	if err != nil {
		return err
	}

	srv := server.New(cfg.ServersDir(), name)
	if !srv.Exists() {
		return errors.NewNotFoundError("server", name)
	}

	path := srv.LatestLogPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("log file", path)
		}
		return fmt.Errorf("failed to read log: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), tailLines(string(data), logsTail))

	if !logsFollow {
		return nil
	}
	return followLog(cmd, path, int64(len(data)))
}

// tailLines returns the last n lines of text. n <= 0 returns everything.
func tailLines(text string, n int) string {
	if n <= 0 || text == "" {
		return text
	}

	trimmed := strings.TrimSuffix(text, "\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n") + "\n"
}

// followLog prints data appended to path until interrupted. The watch is
// on the directory, so the daemon rotating latest.log out and recreating
// it is picked up as well; a shrinking file resets the read offset.
func followLog(cmd *cobra.Command, path string, offset int64) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Has(fsnotify.Create) {
				offset = 0
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := dumpFrom(cmd.OutOrStdout(), path, offset)
			if err != nil {
				return err
			}
			offset = next

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// dumpFrom writes everything in path after offset to w and returns the
// new offset. A file smaller than offset was truncated; start over.
func dumpFrom(w io.Writer, path string, offset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return offset, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return offset, err
	}
	if info.Size() < offset {
		offset = 0
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}
	n, err := io.Copy(w, f)
	if err != nil {
		return offset, err
	}
	return offset + n, nil
}
