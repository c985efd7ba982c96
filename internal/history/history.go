// Package history keeps a local manifest of published artifacts so the
// operator can recover a public URL after the terminal scrollback is gone.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Outcomes recorded per publish.
const (
	OutcomePushed        = "pushed"
	OutcomeCommittedOnly = "committed-only"
)

// Entry records one publish invocation.
type Entry struct {
	ID          string    `yaml:"id"`
	URL         string    `yaml:"url,omitempty"`
	Files       []string  `yaml:"files,omitempty"`
	Outcome     string    `yaml:"outcome"`
	PublishedAt time.Time `yaml:"published_at"`
}

// Manifest is the on-disk publish history document.
type Manifest struct {
	Version int     `yaml:"version"`
	Entries []Entry `yaml:"entries,omitempty"`
}

// DefaultPath returns the per-user history file location, next to the config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".opifacts", "history.yaml"), nil
}

// Load reads the manifest at path. A missing file yields an empty manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", path, err)
	}

	if errs := Validate(&m); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &m, nil
}

// Save writes the manifest atomically using a temp file and rename.
func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing temp history %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp history to %s: %w", path, err)
	}

	return nil
}

// Append adds an entry to the manifest, keeping chronological order.
func (m *Manifest) Append(e Entry) {
	if m.Version == 0 {
		m.Version = 1
	}
	m.Entries = append(m.Entries, e)
}

// Record loads the manifest at path, appends the entry, and saves it back.
func Record(path string, e Entry) error {
	m, err := Load(path)
	if err != nil {
		return err
	}
	m.Append(e)
	return Save(path, m)
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("history validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Manifest for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(m *Manifest) []string {
	var errs []string

	if m.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", m.Version))
	}

	for i, e := range m.Entries {
		prefix := fmt.Sprintf("entry[%d]", i)
		if e.ID != "" {
			prefix = fmt.Sprintf("entry '%s'", e.ID)
		}

		if e.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: 'id' is required", prefix))
		}
		switch e.Outcome {
		case OutcomePushed, OutcomeCommittedOnly:
		case "":
			errs = append(errs, fmt.Sprintf("%s: 'outcome' is required", prefix))
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown outcome '%s'", prefix, e.Outcome))
		}
	}

	return errs
}
