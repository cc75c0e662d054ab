// Package ingest downloads ClinVar release archives and hands a verified,
// decompressed data file to the rest of the pipeline. It has no quality
// logic of its own.
package ingest

import (
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkoziy/genome/monitor/internal/ratelimit"
)

// Config holds download sources and the local target directory.
type Config struct {
	SourceURL   string `yaml:"source_url"`
	ChecksumURL string `yaml:"checksum_url"`
	DownloadDir string `yaml:"download_dir"`
}

// Downloader fetches and verifies ClinVar release files.
type Downloader struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	maxRetries int
	cfg        Config
}

// NewDownloader creates a downloader with the given limiter.
func NewDownloader(cfg Config, limiter ratelimit.Limiter, maxRetries int) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    limiter,
		maxRetries: maxRetries,
		cfg:        cfg,
	}
}

// DownloadAndVerify runs the full ingestion workflow: download the archive,
// verify it against the published MD5 checksum, and decompress it. Returns
// the path to the decompressed data file.
func (d *Downloader) DownloadAndVerify(ctx context.Context) (string, error) {
	if err := os.MkdirAll(d.cfg.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	gzPath, err := d.downloadFile(ctx, d.cfg.SourceURL)
	if err != nil {
		return "", fmt.Errorf("download data: %w", err)
	}

	if d.cfg.ChecksumURL != "" {
		expected, err := d.fetchChecksum(ctx, d.cfg.ChecksumURL)
		if err != nil {
			return "", fmt.Errorf("download checksum: %w", err)
		}
		if err := verifyMD5(gzPath, expected); err != nil {
			return "", err
		}
		log.Printf("Checksum verified for %s", gzPath)
	}

	dataPath := strings.TrimSuffix(gzPath, ".gz")
	if dataPath == gzPath {
		return gzPath, nil
	}
	if err := decompress(gzPath, dataPath); err != nil {
		return "", fmt.Errorf("decompress: %w", err)
	}

	log.Printf("Download and verification complete: %s", dataPath)
	return dataPath, nil
}

// downloadFile fetches a URL into the download directory with retries.
// An already present file is reused.
func (d *Downloader) downloadFile(ctx context.Context, rawURL string) (string, error) {
	name, err := filenameFromURL(rawURL)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.cfg.DownloadDir, name)

	if _, err := os.Stat(path); err == nil {
		log.Printf("File already exists, skipping download: %s", path)
		return path, nil
	}

	var lastErr error
	for attempt := 1; ratelimit.ShouldRetry(attempt, d.maxRetries); attempt++ {
		if err := d.fetchToFile(ctx, rawURL, path); err != nil {
			lastErr = err
			wait := d.limiter.RetryAfter(attempt)
			log.Printf("Download attempt %d failed: %v. Retrying in %s", attempt, err, wait)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		log.Printf("Successfully downloaded %s", path)
		return path, nil
	}

	return "", fmt.Errorf("download failed after %d attempts: %w", d.maxRetries, lastErr)
}

func (d *Downloader) fetchToFile(ctx context.Context, rawURL, path string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmp := path + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return os.Rename(tmp, path)
}

// fetchChecksum downloads an MD5 sidecar file in "checksum  filename" format.
func (d *Downloader) fetchChecksum(ctx context.Context, rawURL string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read checksum: %w", err)
	}

	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file")
	}
	return fields[0], nil
}

func verifyMD5(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open for checksum: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", path, expected, actual)
	}
	return nil
}

func decompress(gzPath, outPath string) error {
	in, err := os.Open(gzPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, gz); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return fmt.Errorf("write decompressed file: %w", err)
	}
	return out.Close()
}

func filenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := filepath.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no filename in url %s", rawURL)
	}
	return name, nil
}
