// Package server models one managed Minecraft server: its directory
// subtree under the Fuji root, its lock marker, and the address
// discovered from its server.properties file.
package server

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/probe"
	"github.com/nicdgonzalez/fuji/internal/properties"
)

// Default address used when server.properties does not specify one.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 25565
)

// Well-known property keys consumed by the supervisor. All other keys
// pass through the codec opaquely.
const (
	KeyServerIP   = "server-ip"
	KeyServerPort = "server-port"
)

// ValidateName checks the server naming rule (first character must be a
// letter) and returns the name folded to lowercase.
func ValidateName(name string) (string, error) {
	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
		return "", errors.NewValidationError("server name must start with a letter").
			WithField("name").
			WithValue(name)
	}
	return strings.ToLower(name), nil
}

// Server identifies one managed server and its on-disk layout. The name
// is assumed to be validated; construct through New.
type Server struct {
	Name string
	Dir  string
}

// New builds a Server rooted at serversDir. The name must already be
// validated with ValidateName.
func New(serversDir, name string) *Server {
	return &Server{
		Name: name,
		Dir:  filepath.Join(serversDir, name),
	}
}

// JarPath returns the path to the server's jar (usually a symlink into
// the shared jar cache).
func (s *Server) JarPath() string {
	return filepath.Join(s.Dir, "server.jar")
}

// LockPath returns the path of the lock marker file.
func (s *Server) LockPath() string {
	return filepath.Join(s.Dir, ".lock")
}

// PropertiesPath returns the path of the server.properties file.
func (s *Server) PropertiesPath() string {
	return filepath.Join(s.Dir, "server.properties")
}

// PluginsDir returns the server's plugin directory.
func (s *Server) PluginsDir() string {
	return filepath.Join(s.Dir, "plugins")
}

// LatestLogPath returns the daemon's own rotating log file.
func (s *Server) LatestLogPath() string {
	return filepath.Join(s.Dir, "logs", "latest.log")
}

// Exists reports whether the server directory exists.
func (s *Server) Exists() bool {
	info, err := os.Stat(s.Dir)
	return err == nil && info.IsDir()
}

// Locked reports whether the lock marker is present. Presence is the
// entire contract: it means a start sequence began and has not yet
// confirmed the process online.
func (s *Server) Locked() bool {
	_, err := os.Stat(s.LockPath())
	return err == nil
}

// Lock creates the zero-byte lock marker. Note this is check-then-create
// at the call sites, not atomic: two concurrent starts can race. The
// weaker semantics are intentional.
func (s *Server) Lock() error {
	f, err := os.OpenFile(s.LockPath(), os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to create lock marker")
	}
	return f.Close()
}

// Unlock removes the lock marker. Removing an absent marker is not an
// error.
func (s *Server) Unlock() error {
	if err := os.Remove(s.LockPath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove lock marker")
	}
	return nil
}

// Address derives the server's network address from server.properties.
// Missing or malformed server-ip/server-port values fall back to
// 127.0.0.1:25565, as does an absent properties file. Text that breaks
// the key=value grammar surfaces a FormatError and aborts the caller.
func (s *Server) Address() (probe.Address, error) {
	addr := probe.Address{Host: DefaultHost, Port: DefaultPort}

	data, err := os.ReadFile(s.PropertiesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return addr, nil
		}
		return addr, errors.Wrap(err, "failed to read server.properties")
	}

	doc, err := properties.Parse(string(data))
	if err != nil {
		return addr, err
	}

	if host, ok := doc.String(KeyServerIP); ok && host != "" {
		addr.Host = host
	}
	if port, ok := doc.Int(KeyServerPort); ok && port > 0 {
		addr.Port = port
	}

	return addr, nil
}

// Properties reads and parses the full server.properties document.
func (s *Server) Properties() (*properties.Document, error) {
	data, err := os.ReadFile(s.PropertiesPath())
	if err != nil {
		return nil, errors.Wrap(err, "failed to read server.properties")
	}
	return properties.Parse(string(data))
}

// List returns the names of all server directories under serversDir,
// sorted by the directory iteration order.
func List(serversDir string) ([]string, error) {
	entries, err := os.ReadDir(serversDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read servers directory")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
