// Package selfupdate replaces the installed opifacts binary with the latest
// version from the configured update URL, and installs the binary into a
// PATH directory.
package selfupdate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Updater downloads and swaps in a new binary.
type Updater struct {
	Client  HTTPClient
	MaxSize int64 // max download size in bytes (0 = no limit)
}

// Update downloads updateURL to a temp file beside installPath, marks it
// executable, and atomically replaces the installed binary. The temp file is
// removed on any failure, so a broken download never clobbers the install.
func (u *Updater) Update(ctx context.Context, updateURL, installPath string) error {
	if updateURL == "" {
		return fmt.Errorf("update URL is not configured — set it via 'opifacts setup'")
	}
	if installPath == "" {
		return fmt.Errorf("install location is unknown — run 'opifacts setup' or reinstall")
	}

	content, err := u.download(ctx, updateURL)
	if err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(installPath), ".opifacts.new")
	if err := os.WriteFile(tmp, content, 0755); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, installPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", installPath, err)
	}

	return nil
}

func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var reader io.Reader = resp.Body
	if u.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, u.MaxSize+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if u.MaxSize > 0 && int64(len(content)) > u.MaxSize {
		return nil, fmt.Errorf("download from %s exceeds %d bytes", url, u.MaxSize)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("empty download from %s", url)
	}

	return content, nil
}
