package supervisor

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/probe"
	"github.com/nicdgonzalez/fuji/internal/server"
)

// fakeSessions records session operations instead of shelling out to tmux.
type fakeSessions struct {
	present      map[string]bool
	createCalls  []string
	sendCalls    []string
	destroyCalls []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{present: make(map[string]bool)}
}

func (f *fakeSessions) Exists(ctx context.Context, name string) bool {
	return f.present[name]
}

func (f *fakeSessions) Create(ctx context.Context, name, workdir string) error {
	f.createCalls = append(f.createCalls, name)
	f.present[name] = true
	return nil
}

func (f *fakeSessions) Destroy(ctx context.Context, name string) error {
	f.destroyCalls = append(f.destroyCalls, name)
	delete(f.present, name)
	return nil
}

func (f *fakeSessions) SendCommand(ctx context.Context, name, text string, enter bool) error {
	f.sendCalls = append(f.sendCalls, text)
	return nil
}

// scriptedProber answers each probe from a per-call function, so tests
// can inspect state between attempts.
type scriptedProber struct {
	calls int
	fn    func(call int) bool
}

func (p *scriptedProber) IsOnline(ctx context.Context, addr probe.Address) bool {
	p.calls++
	return p.fn(p.calls)
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.Supervisor.PollIntervalMs = 1
	cfg.Supervisor.JitterMinMs = 0
	cfg.Supervisor.JitterMaxMs = 1
	cfg.Supervisor.StartRetries = 5
	cfg.Supervisor.StopRetries = 3
	return cfg
}

func mkServer(t *testing.T, cfg *config.Config, name string) *server.Server {
	t.Helper()
	srv := server.New(cfg.ServersDir(), name)
	if err := os.MkdirAll(srv.Dir, 0755); err != nil {
		t.Fatalf("failed to create server dir: %v", err)
	}
	return srv
}

func TestStartAlreadyOnline(t *testing.T) {
	cfg := testConfig(t.TempDir())
	mkServer(t, cfg, "survival")

	sessions := newFakeSessions()
	prober := &scriptedProber{fn: func(int) bool { return true }}
	sup := New(cfg, sessions, prober, nil)

	if err := sup.Start(context.Background(), "survival", StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(sessions.createCalls) != 0 {
		t.Errorf("create calls = %v, want none", sessions.createCalls)
	}
	if len(sessions.sendCalls) != 0 {
		t.Errorf("send calls = %v, want none", sessions.sendCalls)
	}
}

func TestStartLaunchesAndWaits(t *testing.T) {
	cfg := testConfig(t.TempDir())
	srv := mkServer(t, cfg, "survival")

	sessions := newFakeSessions()
	// Offline on the initial check and the first wait attempt, online on
	// the second. Record whether the lock marker was present at each probe.
	var lockSeen []bool
	prober := &scriptedProber{}
	prober.fn = func(call int) bool {
		lockSeen = append(lockSeen, srv.Locked())
		return call >= 3
	}
	sup := New(cfg, sessions, prober, nil)

	if err := sup.Start(context.Background(), "survival", StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(sessions.createCalls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(sessions.createCalls))
	}
	if got := sessions.createCalls[0]; got != "fuji-survival" {
		t.Errorf("session name = %q, want %q", got, "fuji-survival")
	}
	if len(sessions.sendCalls) != 1 {
		t.Fatalf("send calls = %d, want 1", len(sessions.sendCalls))
	}

	launch := sessions.sendCalls[0]
	for _, part := range []string{"java", "-Xms5G", "-Xmx5G", "-XX:+UseG1GC", srv.JarPath(), "--nogui"} {
		if !strings.Contains(launch, part) {
			t.Errorf("launch command missing %q: %s", part, launch)
		}
	}

	// Probe 1 precedes the launch; probes 2..N happen while the start is
	// in flight and must observe the lock marker.
	if len(lockSeen) < 3 {
		t.Fatalf("probe count = %d, want at least 3", len(lockSeen))
	}
	if lockSeen[0] {
		t.Error("lock marker present before launch")
	}
	for i, locked := range lockSeen[1:] {
		if !locked {
			t.Errorf("lock marker absent during wait attempt %d", i+1)
		}
	}
	if srv.Locked() {
		t.Error("lock marker still present after Start() returned")
	}
}

func TestStartWhileLockedDoesNotLaunch(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Supervisor.StartRetries = 2
	srv := mkServer(t, cfg, "survival")
	if err := srv.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	sessions := newFakeSessions()
	prober := &scriptedProber{fn: func(int) bool { return false }}
	sup := New(cfg, sessions, prober, nil)

	if err := sup.Start(context.Background(), "survival", StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(sessions.createCalls) != 0 {
		t.Errorf("create calls = %v, want none while another start is in flight", sessions.createCalls)
	}
	if len(sessions.sendCalls) != 0 {
		t.Errorf("send calls = %v, want none while another start is in flight", sessions.sendCalls)
	}
}

func TestStartUnknownServer(t *testing.T) {
	cfg := testConfig(t.TempDir())
	sup := New(cfg, newFakeSessions(), &scriptedProber{fn: func(int) bool { return false }}, nil)

	err := sup.Start(context.Background(), "ghost", StartOptions{})
	if err == nil {
		t.Fatal("Start() should fail for unknown server")
	}
	var notFound *errors.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error type = %T, want *errors.NotFoundError", err)
	}
}

func TestStartInvalidName(t *testing.T) {
	cfg := testConfig(t.TempDir())
	sup := New(cfg, newFakeSessions(), &scriptedProber{fn: func(int) bool { return false }}, nil)

	err := sup.Start(context.Background(), "1survival", StartOptions{})
	if err == nil {
		t.Fatal("Start() should fail for invalid name")
	}
	var validation *errors.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("error type = %T, want *errors.ValidationError", err)
	}
}

func TestStartCancellationRemovesLock(t *testing.T) {
	cfg := testConfig(t.TempDir())
	srv := mkServer(t, cfg, "survival")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := newFakeSessions()
	prober := &scriptedProber{}
	prober.fn = func(call int) bool {
		if call == 3 {
			cancel()
		}
		return false
	}
	sup := New(cfg, sessions, prober, nil)

	if err := sup.Start(ctx, "survival", StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if srv.Locked() {
		t.Error("lock marker still present after canceled Start()")
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	cfg := testConfig(t.TempDir())
	srv := mkServer(t, cfg, "survival")

	sessions := newFakeSessions()
	prober := &scriptedProber{fn: func(int) bool { return false }}
	sup := New(cfg, sessions, prober, nil)

	w := sup.Watch(context.Background(), "survival")
	w.Cancel()
	if err := w.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if srv.Locked() {
		t.Error("lock marker still present after worker stopped")
	}
}

func TestStopNotRunning(t *testing.T) {
	cfg := testConfig(t.TempDir())
	mkServer(t, cfg, "survival")

	sessions := newFakeSessions()
	prober := &scriptedProber{fn: func(int) bool { return false }}
	sup := New(cfg, sessions, prober, nil)

	err := sup.Stop(context.Background(), "survival")
	if err == nil {
		t.Fatal("Stop() should fail when no session exists")
	}
	var notRunning *errors.NotRunningError
	if !errors.As(err, &notRunning) {
		t.Fatalf("error type = %T, want *errors.NotRunningError", err)
	}

	if len(sessions.sendCalls) != 0 {
		t.Errorf("send calls = %v, want none", sessions.sendCalls)
	}
	if len(sessions.destroyCalls) != 0 {
		t.Errorf("destroy calls = %v, want none", sessions.destroyCalls)
	}
}

func TestStopGraceful(t *testing.T) {
	cfg := testConfig(t.TempDir())
	mkServer(t, cfg, "survival")

	sessions := newFakeSessions()
	sessions.present["fuji-survival"] = true
	// Online while the stop command drains, offline from the second poll.
	prober := &scriptedProber{fn: func(call int) bool { return call < 2 }}
	sup := New(cfg, sessions, prober, nil)

	if err := sup.Stop(context.Background(), "survival"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if len(sessions.sendCalls) != 1 || sessions.sendCalls[0] != "stop" {
		t.Errorf("send calls = %v, want [stop]", sessions.sendCalls)
	}
	if len(sessions.destroyCalls) != 1 || sessions.destroyCalls[0] != "fuji-survival" {
		t.Errorf("destroy calls = %v, want [fuji-survival]", sessions.destroyCalls)
	}
}

func TestStopDestroysSessionWhenBudgetExhausted(t *testing.T) {
	cfg := testConfig(t.TempDir())
	mkServer(t, cfg, "survival")

	sessions := newFakeSessions()
	sessions.present["fuji-survival"] = true
	prober := &scriptedProber{fn: func(int) bool { return true }}
	sup := New(cfg, sessions, prober, nil)

	if err := sup.Stop(context.Background(), "survival"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(sessions.destroyCalls) != 1 {
		t.Errorf("destroy calls = %d, want 1 even when the server never went offline", len(sessions.destroyCalls))
	}
}

func TestStatus(t *testing.T) {
	cfg := testConfig(t.TempDir())
	mkServer(t, cfg, "survival")

	online := &scriptedProber{fn: func(int) bool { return true }}
	sup := New(cfg, newFakeSessions(), online, nil)
	got, err := sup.Status(context.Background(), "survival")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got != StatusOnline {
		t.Errorf("Status() = %v, want %v", got, StatusOnline)
	}

	offline := &scriptedProber{fn: func(int) bool { return false }}
	sup = New(cfg, newFakeSessions(), offline, nil)
	got, err = sup.Status(context.Background(), "survival")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got != StatusOffline {
		t.Errorf("Status() = %v, want %v", got, StatusOffline)
	}

	if StatusOnline.String() != "online" || StatusOffline.String() != "offline" {
		t.Errorf("Status strings = %q/%q, want online/offline", StatusOnline, StatusOffline)
	}
}
