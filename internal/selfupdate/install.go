package selfupdate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BinaryName is the command name the binary installs as.
const BinaryName = "opifacts"

// BinDir is a candidate installation directory.
type BinDir struct {
	Path     string
	Writable bool
}

// BinDirs returns existing candidate bin directories, the user-local one
// first. Directories the current user cannot write to are still listed so
// the setup wizard can explain why they were skipped.
func BinDirs() []BinDir {
	var dirs []BinDir

	if home, err := os.UserHomeDir(); err == nil {
		userBin := filepath.Join(home, ".local", "bin")
		if info, err := os.Stat(userBin); err == nil && info.IsDir() {
			dirs = append(dirs, BinDir{Path: userBin, Writable: dirWritable(userBin)})
		}
	}

	for _, p := range []string{"/usr/local/bin", "/usr/bin"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, BinDir{Path: p, Writable: dirWritable(p)})
		}
	}

	return dirs
}

func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".opifacts-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// Install copies the currently running executable into binDir as 'opifacts'
// and returns the installed path.
func Install(binDir string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating running executable: %w", err)
	}

	dest := filepath.Join(binDir, BinaryName)
	if err := copyExecutable(self, dest); err != nil {
		return "", err
	}

	return dest, nil
}

func copyExecutable(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}

	return nil
}
