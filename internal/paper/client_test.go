package paper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
)

// fakeAPI serves a tiny slice of the PaperMC v2 API: two versions, two
// builds for the newest one, and the jar bytes for each build.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/projects/paper", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions": ["1.20.3", "1.20.4"]}`))
	})
	mux.HandleFunc("/projects/paper/versions/1.20.4/builds", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"builds": [
			{"build": 495, "downloads": {"application": {"name": "paper-1.20.4-495.jar"}}},
			{"build": 496, "downloads": {"application": {"name": "paper-1.20.4-496.jar"}}}
		]}`))
	})
	mux.HandleFunc("/projects/paper/versions/1.20.4/builds/496/downloads/paper-1.20.4-496.jar",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jar-bytes-496"))
		})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T) *Client {
	t.Helper()
	api := fakeAPI(t)
	return NewClient(config.PaperConfig{APIBaseURL: api.URL, TimeoutSeconds: 5}, nil)
}

func TestResolveLatest(t *testing.T) {
	c := testClient(t)

	b, err := c.Resolve(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if b.Version != "1.20.4" {
		t.Errorf("Version = %q, want %q", b.Version, "1.20.4")
	}
	if b.Number != 496 {
		t.Errorf("Number = %d, want 496", b.Number)
	}
	if b.Filename != "paper-1.20.4-496.jar" {
		t.Errorf("Filename = %q, want %q", b.Filename, "paper-1.20.4-496.jar")
	}
}

func TestResolvePinnedBuild(t *testing.T) {
	c := testClient(t)

	b, err := c.Resolve(context.Background(), "1.20.4", 495)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if b.Number != 495 || b.Filename != "paper-1.20.4-495.jar" {
		t.Errorf("Resolve() = %+v, want build 495", b)
	}
}

func TestResolveUnknownBuild(t *testing.T) {
	c := testClient(t)

	_, err := c.Resolve(context.Background(), "1.20.4", 9999)
	if err == nil {
		t.Fatal("Resolve() should fail for an unpublished build")
	}
	var validation *errors.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("error type = %T, want *errors.ValidationError", err)
	}
}

func TestDownloadAndCacheReuse(t *testing.T) {
	c := testClient(t)
	jars := t.TempDir()

	b := Build{Version: "1.20.4", Number: 496, Filename: "paper-1.20.4-496.jar"}
	path, err := c.Download(context.Background(), b, jars)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded jar: %v", err)
	}
	if string(data) != "jar-bytes-496" {
		t.Errorf("jar contents = %q, want %q", data, "jar-bytes-496")
	}

	// Poison the cached copy; a second Download must reuse it untouched.
	if err := os.WriteFile(path, []byte("cached"), 0644); err != nil {
		t.Fatalf("rewrite cached jar: %v", err)
	}
	again, err := c.Download(context.Background(), b, jars)
	if err != nil {
		t.Fatalf("second Download() error = %v", err)
	}
	data, _ = os.ReadFile(again)
	if string(data) != "cached" {
		t.Error("second Download() did not reuse the cached jar")
	}
}

func TestLink(t *testing.T) {
	dir := t.TempDir()
	cached := filepath.Join(dir, "paper-1.20.4-496.jar")
	if err := os.WriteFile(cached, []byte("jar"), 0644); err != nil {
		t.Fatalf("write cached jar: %v", err)
	}

	jarPath := filepath.Join(dir, "server.jar")
	if err := Link(jarPath, cached); err != nil {
		t.Fatalf("Link() error = %v", err)
	}

	target, err := os.Readlink(jarPath)
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if target != cached {
		t.Errorf("link target = %q, want %q", target, cached)
	}

	// Relinking over an existing symlink replaces it.
	other := filepath.Join(dir, "paper-1.20.4-497.jar")
	if err := os.WriteFile(other, []byte("jar2"), 0644); err != nil {
		t.Fatalf("write second jar: %v", err)
	}
	if err := Link(jarPath, other); err != nil {
		t.Fatalf("second Link() error = %v", err)
	}
	target, _ = os.Readlink(jarPath)
	if target != other {
		t.Errorf("link target = %q, want %q", target, other)
	}
}
