// Package acquire ensures the raw LamaH-CE archive sub-trees exist locally,
// downloading and extracting the remote tarball when they do not.
package acquire

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hydrograph/lamah-dataset/internal/lamah"
	"github.com/hydrograph/lamah-dataset/internal/observability"
)

// Acquirer downloads and extracts the raw dataset archive.
type Acquirer struct {
	url        string
	rawDir     string
	subtrees   []string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates an Acquirer for the given archive URL and raw-data directory.
func New(url, rawDir string, logger *slog.Logger, metrics *observability.Metrics) *Acquirer {
	return &Acquirer{
		url:      url,
		rawDir:   rawDir,
		subtrees: lamah.RequiredSubtrees(),
		// No client timeout: the archive is tens of GB and download time is
		// unbounded by design. Cancellation goes through ctx.
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metrics,
	}
}

// Ensure makes the required raw sub-trees available under the raw-data
// directory. If they already exist the call is a no-op; otherwise the
// archive is downloaded once and only the members inside the required
// sub-trees are extracted. Failures are fatal to the caller: there is no
// retry and no resume of partial downloads.
func (a *Acquirer) Ensure(ctx context.Context) error {
	if a.subtreesPresent() {
		a.logger.Info("raw data present, skipping download", "dir", a.rawDir)
		return nil
	}

	start := time.Now()
	archive, err := a.download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	if err := a.extract(archive); err != nil {
		return err
	}
	a.metrics.StageDuration.WithLabelValues("acquire").Observe(time.Since(start).Seconds())
	return nil
}

func (a *Acquirer) subtreesPresent() bool {
	for _, subtree := range a.subtrees {
		info, err := os.Stat(filepath.Join(a.rawDir, filepath.FromSlash(subtree)))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// download streams the archive to a temporary file, reporting progress as it
// goes, and returns the file's path.
func (a *Acquirer) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download archive: status %d from %s", resp.StatusCode, a.url)
	}

	tmp, err := os.CreateTemp("", "lamah-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("create archive temp file: %w", err)
	}

	a.logger.Info("downloading archive", "url", a.url, "bytes", resp.ContentLength)
	reader := newProgressReader(resp.Body, resp.ContentLength, a.logger, a.metrics)
	_, err = io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download archive: %w", err)
	}
	return tmp.Name(), nil
}

// extract unpacks the tar.gz archive into the raw-data directory, keeping
// only members under the required sub-trees.
func (a *Acquirer) extract(archive string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	defer gz.Close()

	extracted := 0
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("extract archive: %w", err)
		}
		if !a.wanted(hdr.Name) {
			continue
		}

		target, err := safeJoin(a.rawDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extract archive: %w", err)
			}
		case tar.TypeReg:
			if err := writeMember(target, tr); err != nil {
				return err
			}
			extracted++
		}
	}
	a.logger.Info("extracted archive members", "files", extracted, "dir", a.rawDir)
	return nil
}

func (a *Acquirer) wanted(name string) bool {
	name = strings.TrimPrefix(name, "./")
	for _, subtree := range a.subtrees {
		if name == subtree || strings.HasPrefix(name, subtree+"/") {
			return true
		}
	}
	return false
}

// safeJoin resolves a tar member path under dir, rejecting traversal outside it.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("extract archive: illegal member path %q", name)
	}
	return target, nil
}

func writeMember(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	_, err = io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	return nil
}
