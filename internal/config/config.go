package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSubfolder is the repository subdirectory that holds published artifacts.
const DefaultSubfolder = "opifacts"

// DefaultUpdateURL is where the update command fetches the latest binary from.
const DefaultUpdateURL = "https://raw.githubusercontent.com/AbeNaws/OpiFacts/main/opifacts"

// Config holds the persisted user configuration. It is loaded once per
// invocation and passed by value into the components that need it.
type Config struct {
	RepoPath       string `json:"github_repo_path"`
	Username       string `json:"github_username"`
	WebsiteURL     string `json:"website_url"`
	Subfolder      string `json:"subfolder"`
	ScriptLocation string `json:"script_location"`
	UpdateURL      string `json:"update_url"`
	SetupCompleted bool   `json:"setup_completed"`
}

// Default returns a configuration with all default values.
func Default() Config {
	return Config{
		Subfolder: DefaultSubfolder,
		UpdateURL: DefaultUpdateURL,
	}
}

// DefaultPath returns the per-user config file location. The OPIFACTS_CONFIG
// environment variable overrides it.
func DefaultPath() (string, error) {
	if p := os.Getenv("OPIFACTS_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".opifacts", "config.json"), nil
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are returned so first runs work without a setup step having
// happened yet.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Subfolder == "" {
		cfg.Subfolder = DefaultSubfolder
	}

	return &cfg, nil
}

// Save writes the config atomically using a temp file and rename. The file is
// restricted to the owning user because it contains personal paths and URLs.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing temp config %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp config to %s: %w", path, err)
	}

	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks that the config is usable for publish and pull operations.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.RepoPath == "" {
		errs = append(errs, "repository path is not set — run 'opifacts setup'")
	} else if info, err := os.Stat(cfg.RepoPath); err != nil || !info.IsDir() {
		errs = append(errs, fmt.Sprintf("repository path '%s' does not exist or is not a directory", cfg.RepoPath))
	}

	if cfg.WebsiteURL != "" {
		u, err := url.Parse(cfg.WebsiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("website URL '%s' must start with http:// or https://", cfg.WebsiteURL))
		}
	}

	if cfg.Subfolder == "" {
		errs = append(errs, "artifact subfolder name must not be empty")
	} else if strings.Contains(cfg.Subfolder, "/") || strings.Contains(cfg.Subfolder, string(filepath.Separator)) {
		errs = append(errs, fmt.Sprintf("artifact subfolder '%s' must be a plain directory name", cfg.Subfolder))
	}

	return errs
}
