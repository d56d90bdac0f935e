// Package download fetches the hash tables used to name hashes in text
// output.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"ritobin-go/internal/hashes"
	"ritobin-go/internal/logging"
	"ritobin-go/internal/progress"
)

// BaseURL serves the CommunityDragon hash tables.
const BaseURL = "https://raw.communitydragon.org/binviewer/hashes/"

const bufferSize = 64 * 1024

var ErrNoHashtableDir = errors.New("no hashtable directory configured")

// Source is one remote table and the file name it is saved under.
type Source struct {
	File string
	URL  string
}

// HashSources returns the tables read by hashes.LoadDir, served from base.
func HashSources(base string) []Source {
	sources := make([]Source, 0, len(hashes.TableFiles))
	for _, name := range hashes.TableFiles {
		sources = append(sources, Source{File: name, URL: base + name})
	}
	return sources
}

// Error reports a failed download.
type Error struct {
	File string
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to download %s from %s: %v", e.File, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Downloader saves a set of sources into a directory.
type Downloader struct {
	Client  *http.Client
	Sources []Source
	// Progress receives a progress bar per file; nil disables it.
	Progress io.Writer
	Logger   *slog.Logger
}

// New returns a downloader for the CommunityDragon tables.
func New(logger *slog.Logger) *Downloader {
	return &Downloader{
		Client:  http.DefaultClient,
		Sources: HashSources(BaseURL),
		Logger:  logger,
	}
}

// DownloadAll fetches every source into dir, creating it if needed. The
// first failure aborts the remaining downloads.
func (d *Downloader) DownloadAll(ctx context.Context, dir string) error {
	if dir == "" {
		return ErrNoHashtableDir
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	logger.Info(fmt.Sprintf("Downloading hashtables to %s", logging.Hyperlink(dir)))

	for _, src := range d.Sources {
		n, err := d.fetch(ctx, src, filepath.Join(dir, src.File))
		if err != nil {
			return &Error{File: src.File, URL: src.URL, Err: err}
		}
		logger.Info(fmt.Sprintf("Saved %s (%s)", logging.Hyperlink(filepath.Join(dir, src.File)), humanize.Bytes(uint64(n))))
	}

	logger.Info(fmt.Sprintf("Successfully downloaded all hashtables to %s", logging.Hyperlink(dir)))
	return nil
}

func (d *Downloader) fetch(ctx context.Context, src Source, dest string) (int64, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", dest, err)
	}

	bar := progress.New(d.Progress, src.File, resp.ContentLength)
	n, err := io.CopyBuffer(io.MultiWriter(f, bar), resp.Body, make([]byte, bufferSize))
	bar.Finish()
	if err != nil {
		f.Close()
		os.Remove(dest)
		return n, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return n, nil
}
