// Command fuji manages PaperMC Minecraft servers: per-server directories
// under a root, java processes in detached tmux sessions, and a TCP
// probe to tell online from offline.
package main

import (
	"fmt"
	"os"

	"github.com/nicdgonzalez/fuji/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
