// Package wakatime locates, installs, and refreshes the wakatime-cli binary
// that every heartbeat is handed to. A copy found on PATH is always used
// as-is; otherwise the resolver maintains its own copy under the per-user
// WakaTime directory, downloaded from the official release archives.
package wakatime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/codex-wakatime/command"
	"github.com/grovetools/codex-wakatime/errors"
	"github.com/grovetools/codex-wakatime/logging"
	"github.com/grovetools/codex-wakatime/pkg/paths"
	"github.com/grovetools/codex-wakatime/pkg/profiling"
	"github.com/grovetools/codex-wakatime/state"
	"github.com/grovetools/codex-wakatime/version"
)

const (
	// binaryBaseName is the name probed for on PATH.
	binaryBaseName = "wakatime-cli"

	defaultAPIBaseURL      = "https://api.github.com/repos/wakatime/wakatime-cli"
	defaultDownloadBaseURL = "https://github.com/wakatime/wakatime-cli/releases/download"

	defaultUpdateInterval = 24 * time.Hour

	// releaseLookupTimeout bounds the GitHub API call that resolves the
	// latest release tag. The turn must not stall on a slow API.
	releaseLookupTimeout = 5 * time.Second

	// downloadTimeout bounds a single download attempt of a release archive.
	downloadTimeout = 60 * time.Second

	downloadMaxElapsed = 2 * time.Minute
)

// DependencyState is the persisted record of version tracking for the
// managed binary. It throttles remote release checks so that most
// invocations never touch the network.
type DependencyState struct {
	LastChecked time.Time `json:"lastChecked"`
	Version     string    `json:"version"`
}

// ResolverConfig carries the explicit wiring for a Resolver. Zero values
// fall back to production defaults; tests override the seams they need.
type ResolverConfig struct {
	// InstallDir is where managed binaries are placed. Defaults to the
	// per-user WakaTime home directory.
	InstallDir string

	// StatePath locates the dependency state JSON file.
	StatePath string

	// UpdateInterval throttles remote version checks.
	UpdateInterval time.Duration

	// APIBaseURL is the GitHub API root for the wakatime-cli repository.
	APIBaseURL string

	// DownloadBaseURL is the root under which release assets are published.
	DownloadBaseURL string

	// Executor resolves binaries on PATH.
	Executor command.Executor

	// GOOS and GOARCH override the runtime platform, for tests.
	GOOS   string
	GOARCH string
}

// Resolver implements the ensure-available contract: PATH hit, managed
// binary, or download-and-cache, in that order.
type Resolver struct {
	cfg ResolverConfig
	log *logrus.Entry

	// resolved memoizes the binary path for the lifetime of one invocation.
	// The freshness check already ran by the time this is set.
	resolved string
}

// NewResolver builds a Resolver, filling unset config fields with
// production defaults.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.InstallDir == "" {
		cfg.InstallDir = paths.WakaTimeHome()
	}
	if cfg.StatePath == "" {
		cfg.StatePath = paths.DependencyStateFile()
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = defaultUpdateInterval
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DownloadBaseURL == "" {
		cfg.DownloadBaseURL = defaultDownloadBaseURL
	}
	if cfg.Executor == nil {
		cfg.Executor = &command.RealExecutor{}
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.GOARCH == "" {
		cfg.GOARCH = runtime.GOARCH
	}

	return &Resolver{
		cfg: cfg,
		log: logging.NewLogger("wakatime"),
	}
}

// Locate probes PATH for a wakatime-cli binary. A hit is authoritative:
// that install is managed by the user, so no version tracking applies.
func (r *Resolver) Locate() (string, bool) {
	path, err := r.cfg.Executor.LookPath(binaryBaseName)
	if err != nil {
		return "", false
	}
	return path, true
}

// InstalledPath returns the path of an already-present binary, on PATH or
// in the managed install directory. It never downloads.
func (r *Resolver) InstalledPath() (string, bool) {
	if path, ok := r.Locate(); ok {
		return path, true
	}
	path, err := r.managedPath()
	if err != nil {
		return "", false
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return "", false
	}
	return path, true
}

// IsInstalled reports whether a usable binary is already present.
func (r *Resolver) IsInstalled() bool {
	_, ok := r.InstalledPath()
	return ok
}

// EnsureAvailable returns the path of a wakatime-cli binary ready to run,
// downloading one if necessary. A non-nil error means no binary could be
// provided; the caller logs it and skips the turn.
func (r *Resolver) EnsureAvailable(ctx context.Context) (string, error) {
	defer profiling.Start("wakatime.EnsureAvailable").Stop()

	if r.resolved != "" {
		return r.resolved, nil
	}

	if path, ok := r.Locate(); ok {
		r.log.WithField("path", path).Debug("Using wakatime-cli from PATH")
		r.resolved = path
		return path, nil
	}

	path, err := r.managedPath()
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		r.refreshIfStale(ctx, path)
		r.resolved = path
		return path, nil
	}

	r.log.WithField("path", path).Info("wakatime-cli not found, downloading")
	if err := r.acquireLatest(ctx, path); err != nil {
		return "", err
	}

	r.resolved = path
	return path, nil
}

// managedPath returns the install location of the managed binary for the
// configured platform.
func (r *Resolver) managedPath() (string, error) {
	name, err := binaryName(r.cfg.GOOS, r.cfg.GOARCH)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.cfg.InstallDir, name), nil
}

// acquireLatest resolves the newest release tag and installs that build at
// destPath, recording the version in the dependency state.
func (r *Resolver) acquireLatest(ctx context.Context, destPath string) error {
	latest, err := r.latestVersion(ctx)
	if err != nil {
		return err
	}
	return r.acquireVersion(ctx, latest, destPath)
}

// acquireVersion downloads a specific release build and installs it at
// destPath.
func (r *Resolver) acquireVersion(ctx context.Context, ver, destPath string) error {
	if err := r.download(ctx, ver, destPath); err != nil {
		return err
	}

	st := DependencyState{LastChecked: time.Now(), Version: ver}
	if err := state.Write(r.cfg.StatePath, &st); err != nil {
		r.log.WithError(err).Warn("Failed to persist dependency state")
	}

	r.log.WithFields(logrus.Fields{
		"version": ver,
		"path":    destPath,
	}).Info("Installed wakatime-cli")
	return nil
}

// refreshIfStale performs the throttled remote version check for a binary
// that is already on disk. Failures are logged and swallowed so the turn
// keeps running on whatever is installed; lastChecked advances after every
// attempted check, including failed ones.
func (r *Resolver) refreshIfStale(ctx context.Context, path string) {
	var st DependencyState
	if err := state.Read(r.cfg.StatePath, &st); err != nil {
		st = DependencyState{}
	}

	now := time.Now()
	if !st.LastChecked.IsZero() && now.Sub(st.LastChecked) < r.cfg.UpdateInterval {
		return
	}

	latest, err := r.latestVersion(ctx)
	if err != nil {
		r.log.WithError(err).Debug("wakatime-cli version check failed, keeping current binary")
		st.LastChecked = now
		r.writeState(&st)
		return
	}

	if st.Version != "" && compareVersions(latest, st.Version) <= 0 {
		st.LastChecked = now
		r.writeState(&st)
		return
	}

	r.log.WithFields(logrus.Fields{
		"installed": st.Version,
		"latest":    latest,
	}).Info("Updating wakatime-cli")

	if err := r.acquireVersion(ctx, latest, path); err != nil {
		r.log.WithError(err).Debug("wakatime-cli update failed, keeping current binary")
		st.LastChecked = now
		r.writeState(&st)
	}
}

func (r *Resolver) writeState(st *DependencyState) {
	if err := state.Write(r.cfg.StatePath, st); err != nil {
		r.log.WithError(err).Warn("Failed to persist dependency state")
	}
}

// latestVersion queries the GitHub releases API for the newest release tag,
// with the leading "v" stripped.
func (r *Resolver) latestVersion(ctx context.Context) (string, error) {
	url := r.cfg.APIBaseURL + "/releases/latest"

	client := &http.Client{Timeout: releaseLookupTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.ReleaseLookupFailed(err)
	}
	// GitHub rejects requests without a User-Agent.
	req.Header.Set("User-Agent", userAgent())

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.ReleaseLookupFailed(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.ReleaseLookupFailed(fmt.Errorf("github api returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ReleaseLookupFailed(err)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		return "", errors.ReleaseLookupFailed(err)
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}

// download fetches the release zip for ver, extracts the platform binary,
// and installs it executable at destPath.
func (r *Resolver) download(ctx context.Context, ver, destPath string) error {
	name, err := binaryName(r.cfg.GOOS, r.cfg.GOARCH)
	if err != nil {
		return err
	}

	asset := fmt.Sprintf("wakatime-cli-%s-%s.zip", r.cfg.GOOS, r.cfg.GOARCH)
	url := fmt.Sprintf("%s/v%s/%s", r.cfg.DownloadBaseURL, ver, asset)

	r.log.WithField("url", url).Debug("Downloading wakatime-cli release")

	var archive []byte
	bo := newDownloadBackoff()
	err = backoff.Retry(func() error {
		data, fetchErr := fetchAsset(ctx, url)
		if fetchErr != nil {
			return fetchErr
		}
		archive = data
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return errors.DownloadFailed(url, err)
	}

	binData, err := extractBinary(archive, name)
	if err != nil {
		return errors.DownloadFailed(url, err)
	}

	if err := installBinary(destPath, binData); err != nil {
		return errors.DownloadFailed(url, err)
	}
	return nil
}

func newDownloadBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = downloadMaxElapsed
	return bo
}

// fetchAsset performs one download attempt. Network errors and 5xx
// responses are retryable; anything else aborts the backoff loop.
func fetchAsset(ctx context.Context, url string) ([]byte, error) {
	client := &http.Client{Timeout: downloadTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", userAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("release download returned status %d", resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("release download returned status %d", resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}

// extractBinary pulls the named executable out of a release zip archive.
func extractBinary(archive []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open release archive: %w", err)
	}

	for _, f := range zr.File {
		if filepath.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s from archive: %w", f.Name, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("archive does not contain %s", name)
}

// installBinary writes the executable atomically: temp file in the target
// directory, chmod, then rename over the final path.
func installBinary(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp binary: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write binary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close binary: %w", err)
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod binary: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install binary: %w", err)
	}

	return nil
}

// compareVersions compares dotted numeric version strings.
// Returns -1 when a < b, 0 when equal, 1 when a > b.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		var x, y int
		if i < len(as) {
			_, _ = fmt.Sscanf(as[i], "%d", &x)
		}
		if i < len(bs) {
			_, _ = fmt.Sscanf(bs[i], "%d", &y)
		}
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}

	return 0
}

func userAgent() string {
	return "codex-wakatime/" + version.Version
}
