// Package setup implements the interactive first-run configuration wizard.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abenaws/opifacts/internal/config"
	"github.com/abenaws/opifacts/internal/selfupdate"
)

// Prompter asks the operator questions. Tests supply a scripted
// implementation.
type Prompter interface {
	// Ask prints the prompt and returns the trimmed answer line.
	Ask(prompt string) (string, error)

	// Confirm asks a yes/no question. Anything not starting with 'y' is no.
	Confirm(question string) bool
}

// StdioPrompter reads answers from an input stream, normally stdin.
type StdioPrompter struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// NewStdioPrompter returns a Prompter over stdin/stdout.
func NewStdioPrompter() *StdioPrompter {
	return &StdioPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *StdioPrompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *StdioPrompter) Confirm(question string) bool {
	answer, err := p.Ask(question + " (y/n): ")
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(answer), "y")
}

// Wizard walks the operator through the configuration.
type Wizard struct {
	Prompter Prompter
	Out      io.Writer

	// Install is called to copy the binary into a chosen bin directory.
	// Defaults to selfupdate.Install.
	Install func(binDir string) (string, error)

	// BinDirs lists candidate install directories. Defaults to
	// selfupdate.BinDirs.
	BinDirs func() []selfupdate.BinDir
}

// Run collects the configuration interactively, starting from cfg. It
// creates the artifact subfolder inside the chosen repository and optionally
// installs the binary onto PATH. The caller persists the returned config.
func (w *Wizard) Run(cfg config.Config) (config.Config, error) {
	w.printf("Welcome to OpiFacts setup!")
	w.printf("This will guide you through the configuration process.")
	w.printf("")

	repoPath, err := w.askRepoPath()
	if err != nil {
		return cfg, err
	}
	cfg.RepoPath = repoPath

	username, err := w.Prompter.Ask("Enter your GitHub username: ")
	if err != nil {
		return cfg, err
	}
	cfg.Username = username

	websiteURL, err := w.askWebsiteURL()
	if err != nil {
		return cfg, err
	}
	cfg.WebsiteURL = websiteURL

	updateURL, err := w.Prompter.Ask(fmt.Sprintf("Enter the URL for updates (press Enter for default: %s): ", config.DefaultUpdateURL))
	if err != nil {
		return cfg, err
	}
	if updateURL == "" {
		updateURL = config.DefaultUpdateURL
	}
	cfg.UpdateURL = updateURL

	if cfg.Subfolder == "" {
		cfg.Subfolder = config.DefaultSubfolder
	}
	subfolderPath := filepath.Join(cfg.RepoPath, cfg.Subfolder)
	if err := os.MkdirAll(subfolderPath, 0755); err != nil {
		w.printf("Warning: could not create '%s' folder: %v", cfg.Subfolder, err)
	} else {
		w.printf("Created '%s' folder in your repository.", cfg.Subfolder)
	}

	if location, ok := w.offerInstall(); ok {
		cfg.ScriptLocation = location
	}

	cfg.SetupCompleted = true

	w.printf("")
	w.printf("Setup completed! You can now publish files with: opifacts <file> [<file>...]")

	return cfg, nil
}

func (w *Wizard) askRepoPath() (string, error) {
	for {
		path, err := w.Prompter.Ask("Enter the full path to your repository: ")
		if err != nil {
			return "", err
		}
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return path, nil
		}
		w.printf("Error: the path '%s' does not exist or is not a directory. Please try again.", path)
	}
}

func (w *Wizard) askWebsiteURL() (string, error) {
	for {
		raw, err := w.Prompter.Ask("Enter your website URL (e.g., https://abenaws.dev): ")
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
			return strings.TrimRight(raw, "/"), nil
		}
		w.printf("Error: URL must start with http:// or https://")
	}
}

// offerInstall presents the candidate bin directories and installs into the
// chosen one. Returns the installed path and whether an install happened.
func (w *Wizard) offerInstall() (string, bool) {
	binDirs := w.binDirs()()
	if len(binDirs) == 0 {
		return "", false
	}

	if !w.Prompter.Confirm("\nWould you like to install 'opifacts' to your PATH?") {
		return "", false
	}

	w.printf("")
	w.printf("Available installation locations:")
	for i, d := range binDirs {
		note := ""
		if !d.Writable {
			note = " (not writable by you)"
		}
		w.printf("%d. %s%s", i+1, d.Path, note)
	}

	for {
		choice, err := w.Prompter.Ask("\nSelect installation location (number) or 'n' to skip: ")
		if err != nil || strings.EqualFold(choice, "n") {
			return "", false
		}

		idx, err := strconv.Atoi(choice)
		if err != nil || idx < 1 || idx > len(binDirs) {
			w.printf("Please enter a number between 1 and %d, or 'n'", len(binDirs))
			continue
		}

		dir := binDirs[idx-1]
		if !dir.Writable {
			w.printf("%s is not writable by the current user — pick another location", dir.Path)
			continue
		}

		location, err := w.install()(dir.Path)
		if err != nil {
			w.printf("Error installing: %v", err)
			return "", false
		}
		w.printf("Successfully installed '%s' to %s", selfupdate.BinaryName, dir.Path)
		return location, true
	}
}

func (w *Wizard) install() func(string) (string, error) {
	if w.Install != nil {
		return w.Install
	}
	return selfupdate.Install
}

func (w *Wizard) binDirs() func() []selfupdate.BinDir {
	if w.BinDirs != nil {
		return w.BinDirs
	}
	return selfupdate.BinDirs
}

func (w *Wizard) printf(format string, args ...any) {
	if w.Out != nil {
		fmt.Fprintf(w.Out, format+"\n", args...)
	}
}
