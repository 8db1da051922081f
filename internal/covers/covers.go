// Package covers downloads and normalizes book cover images so recommendation
// output can link to a local thumbnail.
package covers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

const defaultMaxWidth = 500

// Downloader fetches cover images over HTTP and stores resized JPEG copies.
type Downloader struct {
	httpClient *http.Client
	dir        string
}

// NewDownloader creates a downloader that saves covers under dir.
func NewDownloader(dir string) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dir:        dir,
	}
}

// CoverPath returns the local path a book's cover is stored at.
func (d *Downloader) CoverPath(bookID string) string {
	return filepath.Join(d.dir, bookID+".jpg")
}

// Download fetches the cover image for a book and saves a resized JPEG copy.
// Existing covers are not refetched.
func (d *Downloader) Download(ctx context.Context, bookID, imageURL string, maxWidth int) error {
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}

	savePath := d.CoverPath(bookID)
	if _, err := os.Stat(savePath); err == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d downloading cover", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}

	width := img.Bounds().Dx()
	if width > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return err
	}

	return imaging.Save(img, savePath, imaging.JPEGQuality(85))
}
