// Package supervisor orchestrates the lifecycle of managed servers:
// launching the java process inside a detached tmux session, waiting for
// it to become reachable, maintaining the lock marker that signals an
// in-flight start, and optionally restarting after a crash.
//
// The supervisor owns no processes itself. The session multiplexer owns
// the terminal, the java daemon owns the port; the supervisor only
// observes (TCP probe, lock marker) and drives (send-keys).
package supervisor

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/logging"
	"github.com/nicdgonzalez/fuji/internal/probe"
	"github.com/nicdgonzalez/fuji/internal/server"
	"github.com/nicdgonzalez/fuji/internal/tmux"
)

// SessionManager is the capability set the supervisor needs from the
// session multiplexer. *tmux.Client satisfies it; tests substitute stubs.
type SessionManager interface {
	Exists(ctx context.Context, name string) bool
	Create(ctx context.Context, name, workdir string) error
	Destroy(ctx context.Context, name string) error
	SendCommand(ctx context.Context, name, text string, enter bool) error
}

// Status is the observable liveness of a server.
type Status int

const (
	// StatusOffline means the probe could not complete a TCP handshake.
	StatusOffline Status = iota
	// StatusOnline means the server accepted a TCP connection.
	StatusOnline
)

// String returns the status in operator-facing form.
func (s Status) String() string {
	if s == StatusOnline {
		return "online"
	}
	return "offline"
}

// StartOptions modifies the behavior of Start.
type StartOptions struct {
	// AutoReconnect keeps the supervisor running after the server comes
	// online, relaunching it whenever it goes offline, until the context
	// is canceled.
	AutoReconnect bool
}

// Controller lists the lifecycle operations exposed to the CLI layer.
type Controller interface {
	Start(ctx context.Context, name string, opts StartOptions) error
	Stop(ctx context.Context, name string) error
	Status(ctx context.Context, name string) (Status, error)
}

// Supervisor implements Controller against a configured root directory.
type Supervisor struct {
	cfg      *config.Config
	sessions SessionManager
	prober   probe.Prober
	logger   *logging.Logger
}

var _ Controller = (*Supervisor)(nil)

// New creates a Supervisor. A nil logger is replaced with a no-op logger.
func New(cfg *config.Config, sessions SessionManager, prober probe.Prober, logger *logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Supervisor{
		cfg:      cfg,
		sessions: sessions,
		prober:   prober,
		logger:   logger,
	}
}

// resolve validates the name and checks that the server directory exists.
// Both checks fail fast, before any external process is spawned.
func (s *Supervisor) resolve(name string) (*server.Server, error) {
	name, err := server.ValidateName(name)
	if err != nil {
		return nil, err
	}

	srv := server.New(s.cfg.ServersDir(), name)
	if !srv.Exists() {
		return nil, errors.NewNotFoundError("server", name)
	}
	return srv, nil
}

// Start launches the server if it is offline and unlocked, then waits for
// it to become reachable. When the server is already online (and no start
// is in flight) this is a no-op.
//
// With opts.AutoReconnect the cycle repeats until ctx is canceled: while
// online the supervisor keeps probing at the poll interval, and a failed
// probe triggers a relaunch. Cancellation during a start sequence removes
// the lock marker (best-effort) before returning.
//
// Exhausting the online-wait budget is logged as a warning, not returned
// as an error: once the launch command has been sent, a partially started
// process cannot be cleanly rolled back from here.
func (s *Supervisor) Start(ctx context.Context, name string, opts StartOptions) error {
	srv, err := s.resolve(name)
	if err != nil {
		return err
	}

	addr, err := srv.Address()
	if err != nil {
		return err
	}

	session := tmux.SessionName(s.cfg.Tmux.Prefix, srv.Name)
	log := s.logger.WithServer(srv.Name).WithOperation("start")

	for {
		if ctx.Err() != nil {
			s.releaseLock(srv, log)
			return nil
		}

		online := s.prober.IsOnline(ctx, addr)
		locked := srv.Locked()

		if online && !locked {
			if !opts.AutoReconnect {
				log.Info("server is already online", "addr", addr.String())
				return nil
			}
			// Crash watch: keep probing until the server drops offline.
			if err := sleepCtx(ctx, s.startDelay()); err != nil {
				return nil
			}
			continue
		}

		if !online && !locked {
			log.Info("server is offline, launching", "session", session)

			if !s.sessions.Exists(ctx, session) {
				if err := s.sessions.Create(ctx, session, srv.Dir); err != nil {
					return err
				}
			}
			if err := s.sessions.SendCommand(ctx, session, s.launchCommand(srv), true); err != nil {
				return err
			}
			if err := srv.Lock(); err != nil {
				return err
			}
			log.Info("created lock marker", "path", srv.LockPath())
		}

		reached := s.waitOnline(ctx, addr)

		if ctx.Err() != nil {
			s.releaseLock(srv, log)
			return nil
		}

		// The start sequence is no longer in flight either way; a lock
		// left behind would wedge every subsequent start.
		s.releaseLock(srv, log)

		if reached {
			log.Info("server is online", "addr", addr.String())
		} else {
			log.Warn("retry budget exhausted waiting for server to come online",
				"addr", addr.String(),
				"attempts", s.cfg.Supervisor.StartRetries,
			)
		}

		if !opts.AutoReconnect {
			return nil
		}
	}
}

// waitOnline polls the probe until the server responds, the retry budget
// is exhausted, or ctx is canceled.
func (s *Supervisor) waitOnline(ctx context.Context, addr probe.Address) bool {
	for attempts := s.cfg.Supervisor.StartRetries; attempts > 0; attempts-- {
		if s.prober.IsOnline(ctx, addr) {
			return true
		}
		if err := sleepCtx(ctx, s.startDelay()); err != nil {
			return false
		}
	}
	return s.prober.IsOnline(ctx, addr)
}

// startDelay returns the jittered poll interval for the start loop:
// the base interval plus a uniform random duration between the
// configured jitter bounds.
func (s *Supervisor) startDelay() time.Duration {
	base := s.cfg.Supervisor.PollInterval()
	lo := s.cfg.Supervisor.JitterMin()
	hi := s.cfg.Supervisor.JitterMax()
	if hi <= lo {
		return base + lo
	}
	return base + lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

// releaseLock removes the lock marker, degrading failure to a log line:
// a stale lock is a documented limitation, not a fatal condition.
func (s *Supervisor) releaseLock(srv *server.Server, log *logging.Logger) {
	if !srv.Locked() {
		return
	}
	if err := srv.Unlock(); err != nil {
		log.Warn("failed to remove lock marker", "path", srv.LockPath(), "error", err)
		return
	}
	log.Info("removed lock marker", "path", srv.LockPath())
}

// Stop sends the graceful stop command through the session, waits for the
// server to drop offline, and destroys the session regardless of whether
// offline was confirmed within the retry budget.
func (s *Supervisor) Stop(ctx context.Context, name string) error {
	srv, err := s.resolve(name)
	if err != nil {
		return err
	}

	session := tmux.SessionName(s.cfg.Tmux.Prefix, srv.Name)
	if !s.sessions.Exists(ctx, session) {
		return errors.NewNotRunningError(srv.Name)
	}

	addr, err := srv.Address()
	if err != nil {
		return err
	}

	log := s.logger.WithServer(srv.Name).WithOperation("stop")

	if err := s.sessions.SendCommand(ctx, session, "stop", true); err != nil {
		return err
	}
	log.Info("sent stop command", "session", session)

	// Fixed interval, no jitter: shutdown polling has no thundering-herd
	// concern.
	for attempts := s.cfg.Supervisor.StopRetries; attempts > 0; attempts-- {
		if !s.prober.IsOnline(ctx, addr) {
			break
		}
		if err := sleepCtx(ctx, s.cfg.Supervisor.PollInterval()); err != nil {
			break
		}
	}

	if s.prober.IsOnline(ctx, addr) {
		log.Warn("server still online after stop budget, destroying session anyway")
	} else {
		log.Info("server is offline")
	}

	return s.sessions.Destroy(ctx, session)
}

// Status performs a single probe. It has no side effects and does not
// consult the lock marker.
func (s *Supervisor) Status(ctx context.Context, name string) (Status, error) {
	srv, err := s.resolve(name)
	if err != nil {
		return StatusOffline, err
	}

	addr, err := srv.Address()
	if err != nil {
		return StatusOffline, err
	}

	if s.prober.IsOnline(ctx, addr) {
		return StatusOnline, nil
	}
	return StatusOffline, nil
}

// aikarFlags is the fixed set of G1 garbage-collector tuning flags the
// launch command always carries. See https://mcflags.emc.gs.
var aikarFlags = []string{
	"-XX:+UseG1GC",
	"-XX:+ParallelRefProcEnabled",
	"-XX:MaxGCPauseMillis=200",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+DisableExplicitGC",
	"-XX:+AlwaysPreTouch",
	"-XX:G1NewSizePercent=30",
	"-XX:G1MaxNewSizePercent=40",
	"-XX:G1HeapRegionSize=8M",
	"-XX:G1ReservePercent=20",
	"-XX:G1HeapWastePercent=5",
	"-XX:G1MixedGCCountTarget=4",
	"-XX:InitiatingHeapOccupancyPercent=15",
	"-XX:G1MixedGCLiveThresholdPercent=90",
	"-XX:G1RSetUpdatingPauseTimePercent=5",
	"-XX:SurvivorRatio=32",
	"-XX:+PerfDisableSharedMem",
	"-XX:MaxTenuringThreshold=1",
	"-Dusing.aikars.flags=https://mcflags.emc.gs",
	"-Daikars.new.flags=true",
}

// launchCommand builds the full java invocation sent into the session.
// The session was created with the server directory as its working
// directory; the jar path is absolute regardless.
func (s *Supervisor) launchCommand(srv *server.Server) string {
	heap := s.cfg.Server.JavaHeap
	if heap == "" {
		heap = config.Default().Server.JavaHeap
	}

	parts := make([]string, 0, len(aikarFlags)+6)
	parts = append(parts, "java", "-Xms"+heap, "-Xmx"+heap)
	parts = append(parts, aikarFlags...)
	parts = append(parts, "-jar", srv.JarPath(), "--nogui")
	return strings.Join(parts, " ")
}

// sleepCtx sleeps for d or until ctx is canceled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
