package cmd

import (
	"fmt"
	"os"

	"github.com/abenaws/opifacts/internal/config"
	"github.com/abenaws/opifacts/internal/git"
	"github.com/abenaws/opifacts/internal/remote"
)

// resolveConfigPath honors --config, falling back to the per-user default.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file, returning defaults when it is absent.
func loadConfig() (string, *config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

// requireUsableConfig validates the config for publish/pull use.
func requireUsableConfig(cfg *config.Config) error {
	if errs := config.Validate(cfg); len(errs) > 0 {
		return &config.ValidationError{Errors: errs}
	}
	return nil
}

// newChecker builds the remote health checker over a git client.
func newChecker(g *git.Client) *remote.Checker {
	return remote.NewChecker(g, "origin")
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
