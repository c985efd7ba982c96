package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/abenaws/opifacts/internal/config"
)

// PullWorkflow fetches the latest remote state into the local repository. It
// normalizes the remote URL first but does not check agent or authentication;
// any failure is fatal.
type PullWorkflow struct {
	Config config.Config
	Git    GitClient
	Health HealthChecker
	Out    io.Writer
}

// Run executes the pull.
func (w *PullWorkflow) Run(ctx context.Context) error {
	if info, err := os.Stat(w.Config.RepoPath); err != nil || !info.IsDir() {
		return fmt.Errorf("repository path %s does not exist", w.Config.RepoPath)
	}

	status, err := w.Health.NormalizeRemote(ctx)
	if err == nil && status.Rewritten {
		w.printf("Updated remote URL to use SSH: %s", status.URL)
	}
	if !status.Normalized && status.Message != "" {
		w.printf("Warning: %s", status.Message)
	}

	if err := w.Git.Pull(ctx); err != nil {
		return err
	}

	w.printf("Successfully pulled the latest changes from the repository")
	return nil
}

func (w *PullWorkflow) printf(format string, args ...any) {
	if w.Out != nil {
		fmt.Fprintf(w.Out, format+"\n", args...)
	}
}
