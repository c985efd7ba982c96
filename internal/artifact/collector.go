package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CollectResult records what a single collection pass did.
type CollectResult struct {
	Copied  []string // destination paths, in input order
	Skipped []string // requested sources that did not exist
}

// Collector copies source paths into an artifact folder.
type Collector struct{}

// Collect copies each source into destDir, which must already exist. Regular
// files are copied as-is; for directories, only the regular files directly
// inside are copied (subdirectories are skipped). Sources that do not exist
// are recorded as skipped and do not abort the batch. Any actual copy failure
// aborts the whole batch.
func (c *Collector) Collect(sources []string, destDir string) (*CollectResult, error) {
	result := &CollectResult{}

	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			result.Skipped = append(result.Skipped, src)
			continue
		}

		if info.Mode().IsRegular() {
			dest := filepath.Join(destDir, filepath.Base(src))
			if err := copyFile(src, dest, info); err != nil {
				return nil, err
			}
			result.Copied = append(result.Copied, dest)
			continue
		}

		if info.IsDir() {
			if err := c.collectDir(src, destDir, result); err != nil {
				return nil, err
			}
			continue
		}

		// Sockets, devices and the like are treated as absent.
		result.Skipped = append(result.Skipped, src)
	}

	return result, nil
}

func (c *Collector) collectDir(dir, destDir string, result *CollectResult) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		dest := filepath.Join(destDir, entry.Name())
		if err := copyFile(path, dest, info); err != nil {
			return err
		}
		result.Copied = append(result.Copied, dest)
	}

	return nil
}

// copyFile copies src to dest, preserving the permission bits and, on a
// best-effort basis, the modification time.
func copyFile(src, dest string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}

	// Timestamp preservation is best-effort.
	_ = os.Chtimes(dest, info.ModTime(), info.ModTime())

	return nil
}
