package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Downloader fetches scraped image URLs into a per-supplier output directory.
// Image failures are supposed to be logged and swallowed by the caller; the
// catalog record keeps the image name either way.
type Downloader struct {
	client *http.Client
	dir    string
	logger *slog.Logger
}

func NewDownloader(dir string) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 30 * time.Second},
		dir:    dir,
		logger: slog.Default().With("component", "images"),
	}
}

// Save downloads url into dir/name, creating the directory on demand.
func (d *Downloader) Save(ctx context.Context, url, name string) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	path := filepath.Join(d.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write image file: %w", err)
	}

	d.logger.Debug("saved image", "url", url, "file", path)
	return nil
}
