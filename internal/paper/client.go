// Package paper talks to the PaperMC downloads API (v2) to resolve and
// fetch server application jars. Downloads land in the shared jar cache
// under the Fuji root; servers reference them through a server.jar
// symlink so several servers can share one artifact.
package paper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nicdgonzalez/fuji/internal/config"
	"github.com/nicdgonzalez/fuji/internal/errors"
	"github.com/nicdgonzalez/fuji/internal/logging"
)

// Project is the PaperMC project slug the client is pinned to.
const Project = "paper"

// Client is a thin HTTP client for the PaperMC downloads API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// NewClient builds a Client from the paper section of the config. A nil
// logger is replaced with a no-op logger.
func NewClient(cfg config.PaperConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NopLogger()
	}
	base := cfg.APIBaseURL
	if base == "" {
		base = config.Default().Paper.APIBaseURL
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

// Build identifies one downloadable PaperMC artifact.
type Build struct {
	// Version is the Minecraft version, e.g. "1.20.4".
	Version string
	// Number is the PaperMC build number within the version.
	Number int
	// Filename is the application jar name published for the build,
	// e.g. "paper-1.20.4-496.jar".
	Filename string
}

type projectResponse struct {
	Versions []string `json:"versions"`
}

type buildsResponse struct {
	Builds []buildInfo `json:"builds"`
}

type buildInfo struct {
	Build     int `json:"build"`
	Downloads struct {
		Application struct {
			Name string `json:"name"`
		} `json:"application"`
	} `json:"downloads"`
}

// Resolve turns an optional version and build into a concrete Build.
// An empty version selects the newest published version; a zero build
// selects the newest build of the version. A nonzero build that the API
// does not list for the version is a validation error.
func (c *Client) Resolve(ctx context.Context, version string, build int) (Build, error) {
	if version == "" {
		var project projectResponse
		if err := c.getJSON(ctx, fmt.Sprintf("%s/projects/%s", c.baseURL, Project), &project); err != nil {
			return Build{}, errors.Wrap(err, "failed to list PaperMC versions")
		}
		if len(project.Versions) == 0 {
			return Build{}, errors.New("PaperMC API returned no versions")
		}
		version = project.Versions[len(project.Versions)-1]
	}

	var builds buildsResponse
	url := fmt.Sprintf("%s/projects/%s/versions/%s/builds", c.baseURL, Project, version)
	if err := c.getJSON(ctx, url, &builds); err != nil {
		return Build{}, errors.Wrapf(err, "failed to list builds for version %s", version)
	}
	if len(builds.Builds) == 0 {
		return Build{}, errors.Wrapf(errors.ErrInvalidInput, "no builds published for version %s", version)
	}

	var info buildInfo
	if build == 0 {
		info = builds.Builds[len(builds.Builds)-1]
	} else {
		found := false
		for _, b := range builds.Builds {
			if b.Build == build {
				info = b
				found = true
				break
			}
		}
		if !found {
			return Build{}, errors.NewValidationError(
				fmt.Sprintf("build %d does not exist for version %s", build, version)).
				WithField("build").
				WithValue(build)
		}
	}

	return Build{
		Version:  version,
		Number:   info.Build,
		Filename: info.Downloads.Application.Name,
	}, nil
}

// Download fetches the build's application jar into jarsDir and returns
// the cached path. A file with the published name already in the cache
// is reused without touching the network.
func (c *Client) Download(ctx context.Context, b Build, jarsDir string) (string, error) {
	path := filepath.Join(jarsDir, b.Filename)
	if _, err := os.Stat(path); err == nil {
		c.logger.Info("jar already cached", "path", path)
		return path, nil
	}

	if err := os.MkdirAll(jarsDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create jar cache directory")
	}

	url := fmt.Sprintf("%s/projects/%s/versions/%s/builds/%d/downloads/%s",
		c.baseURL, Project, b.Version, b.Number, b.Filename)
	c.logger.Info("downloading PaperMC", "version", b.Version, "build", b.Number)

	data, err := c.get(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to download PaperMC %s build %d", b.Version, b.Number)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write jar to cache")
	}
	c.logger.Info("download complete", "path", path, "bytes", len(data))
	return path, nil
}

// Link points jarPath (the server's server.jar) at the cached jar,
// replacing any existing link or file.
func Link(jarPath, cachedPath string) error {
	if _, err := os.Lstat(jarPath); err == nil {
		if err := os.Remove(jarPath); err != nil {
			return errors.Wrap(err, "failed to remove existing server.jar")
		}
	}
	if err := os.Symlink(cachedPath, jarPath); err != nil {
		return errors.Wrap(err, "failed to link server.jar")
	}
	return nil
}

// Fetch downloads an arbitrary URL with the client's timeout. Used for
// plugin installation from a URL.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s: %s: %s", url, resp.Status, body)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	data, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewFormatError("unexpected PaperMC API response").WithCause(err)
	}
	return nil
}
