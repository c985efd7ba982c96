package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Folder is the destination directory for one publish invocation.
type Folder struct {
	ID   string
	Path string
}

// NewFolder validates and creates the artifact directory
// repoRoot/subfolder/id. The resolved path must stay inside the repository
// root, which guards against subfolder values that climb out of the working
// tree via '..' or symlinks.
func NewFolder(repoRoot, subfolder, id string) (*Folder, error) {
	resolved, err := containedPath(repoRoot, filepath.Join(subfolder, id))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(resolved, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact folder %s: %w", resolved, err)
	}
	return &Folder{ID: id, Path: resolved}, nil
}

// containedPath checks that relPath is safely within root. It resolves
// symlinks, normalizes the path, and verifies containment, returning the
// resolved absolute path.
func containedPath(root, relPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving repository root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, relPath))

	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving artifact path: %w", err)
	}

	// Trailing separator avoids prefix-matching "root2" for "root".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the repository '%s'", relPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// the path, then appends the non-existing suffix. This handles paths that
// don't fully exist yet.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}
