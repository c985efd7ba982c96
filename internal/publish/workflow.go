// Package publish orchestrates the publish and pull workflows: naming an
// artifact folder, collecting files into it, committing, checking remote
// readiness, and pushing.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abenaws/opifacts/internal/artifact"
	"github.com/abenaws/opifacts/internal/config"
	"github.com/abenaws/opifacts/internal/remote"
)

// GitClient is the slice of the git client the workflows need.
type GitClient interface {
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
}

// HealthChecker verifies remote URL form, SSH agent state and authentication.
type HealthChecker interface {
	NormalizeRemote(ctx context.Context) (remote.RemoteStatus, error)
	CheckAgent(ctx context.Context) remote.AgentReport
	ProbeAuth(ctx context.Context, host string) remote.AuthReport
}

// Collector copies source paths into the artifact folder.
type Collector interface {
	Collect(sources []string, destDir string) (*artifact.CollectResult, error)
}

// ConfirmFunc decides whether to push when authentication is uncertain.
// A nil ConfirmFunc declines, which downgrades to a local-only commit.
type ConfirmFunc func(reason string) bool

// Result is the outcome of one publish invocation.
type Result struct {
	State        State
	Trail        []State // states entered, in order
	ArtifactID   string
	ArtifactPath string
	Copied       []string
	Skipped      []string
	PublicURL    string // set only when pushed
	Reason       string // why the outcome was downgraded, for Partial
}

// Pushed reports whether the artifact reached the remote.
func (r *Result) Pushed() bool { return r.State == StateDone }

// Workflow runs one publish invocation. It executes exactly once, strictly
// sequentially, with no retries; the git working tree is assumed to be
// exclusively ours for the duration.
type Workflow struct {
	Config      config.Config
	Git         GitClient
	Health      HealthChecker
	Collector   Collector
	ConfirmPush ConfirmFunc
	Now         func() time.Time // defaults to time.Now
	Out         io.Writer        // progress output, defaults to discard
	SkipPush    bool             // stop deliberately after committing
}

// Run executes the publish workflow over the given source paths. A non-nil
// error means the Fatal state was reached; Partial outcomes are reported on
// the Result, not as errors.
func (w *Workflow) Run(ctx context.Context, sources []string) (*Result, error) {
	result := &Result{}

	// COLLECTING
	result.enter(StateCollecting)
	if info, err := os.Stat(w.Config.RepoPath); err != nil || !info.IsDir() {
		return result.fatal(fmt.Errorf("repository path %s does not exist", w.Config.RepoPath))
	}

	id := artifact.NewID(w.now()())
	result.ArtifactID = id

	folder, err := artifact.NewFolder(w.Config.RepoPath, w.Config.Subfolder, id)
	if err != nil {
		return result.fatal(err)
	}
	result.ArtifactPath = folder.Path
	w.printf("Created folder: %s", folder.Path)

	collected, err := w.Collector.Collect(sources, folder.Path)
	if err != nil {
		return result.fatal(err)
	}
	result.Copied = collected.Copied
	result.Skipped = collected.Skipped
	for _, s := range collected.Skipped {
		w.printf("Warning: %s does not exist, skipping", s)
	}
	for _, c := range collected.Copied {
		w.printf("Copied: %s", c)
	}

	// COMMITTING
	result.enter(StateCommitting)
	if err := w.Git.AddAll(ctx); err != nil {
		return result.fatal(err)
	}
	commitMsg := fmt.Sprintf("Add files to %s/%s", w.Config.Subfolder, id)
	if err := w.Git.Commit(ctx, commitMsg); err != nil {
		return result.fatal(err)
	}
	w.printf("Committed: %s", commitMsg)

	if w.SkipPush {
		return result.partial("push skipped on request"), nil
	}

	// REMOTE_CHECK
	result.enter(StateRemoteCheck)
	status, err := w.Health.NormalizeRemote(ctx)
	if err != nil || !status.Normalized {
		reason := status.Message
		if reason == "" {
			reason = "remote URL could not be normalized"
		}
		if err != nil {
			reason = fmt.Sprintf("%s: %v", reason, err)
		}
		return result.partial(reason), nil
	}
	if status.Rewritten {
		w.printf("Updated remote URL to use SSH: %s", status.URL)
	}

	agent := w.Health.CheckAgent(ctx)
	if !agent.Ready() {
		return result.partial(agent.Message), nil
	}

	// PUSH_CONFIRM
	result.enter(StatePushConfirm)
	auth := w.Health.ProbeAuth(ctx, status.Host)
	if !auth.OK {
		reason := "SSH authentication could not be verified"
		if auth.Detail != "" {
			reason = fmt.Sprintf("%s: %s", reason, auth.Detail)
		}
		if w.ConfirmPush == nil || !w.ConfirmPush(reason) {
			return result.partial("push declined after uncertain authentication"), nil
		}
	}

	// PUSHING
	result.enter(StatePushing)
	if err := w.Git.Push(ctx); err != nil {
		return result.fatal(err)
	}

	result.enter(StateDone)
	result.PublicURL = PublicURL(w.Config, id)
	w.printf("Files are now available at:\n%s", result.PublicURL)

	return result, nil
}

// PublicURL builds the public address of a published artifact.
func PublicURL(cfg config.Config, id string) string {
	return strings.TrimRight(cfg.WebsiteURL, "/") + "/" + cfg.Subfolder + "/" + id
}

func (w *Workflow) now() func() time.Time {
	if w.Now != nil {
		return w.Now
	}
	return time.Now
}

func (w *Workflow) printf(format string, args ...any) {
	if w.Out != nil {
		fmt.Fprintf(w.Out, format+"\n", args...)
	}
}

func (r *Result) enter(s State) {
	r.State = s
	r.Trail = append(r.Trail, s)
}

func (r *Result) partial(reason string) *Result {
	r.enter(StatePartial)
	r.Reason = reason
	return r
}

func (r *Result) fatal(err error) (*Result, error) {
	r.enter(StateFatal)
	return r, err
}
