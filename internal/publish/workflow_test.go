package publish

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/abenaws/opifacts/internal/artifact"
	"github.com/abenaws/opifacts/internal/config"
	"github.com/abenaws/opifacts/internal/remote"
)

type fakeGit struct {
	addErr    error
	commitErr error
	pushErr   error
	pullErr   error

	added   int
	commits []string
	pushes  int
	pulls   int
}

func (f *fakeGit) AddAll(ctx context.Context) error {
	f.added++
	return f.addErr
}

func (f *fakeGit) Commit(ctx context.Context, message string) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, message)
	return nil
}

func (f *fakeGit) Push(ctx context.Context) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes++
	return nil
}

func (f *fakeGit) Pull(ctx context.Context) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	f.pulls++
	return nil
}

type fakeHealth struct {
	status    remote.RemoteStatus
	statusErr error
	agent     remote.AgentReport
	auth      remote.AuthReport

	normalized int
	probed     []string
}

func (f *fakeHealth) NormalizeRemote(ctx context.Context) (remote.RemoteStatus, error) {
	f.normalized++
	return f.status, f.statusErr
}

func (f *fakeHealth) CheckAgent(ctx context.Context) remote.AgentReport {
	return f.agent
}

func (f *fakeHealth) ProbeAuth(ctx context.Context, host string) remote.AuthReport {
	f.probed = append(f.probed, host)
	return f.auth
}

func readyHealth() *fakeHealth {
	return &fakeHealth{
		status: remote.RemoteStatus{URL: "git@github.com:abenaws/site.git", Host: "github.com", Normalized: true},
		agent:  remote.AgentReport{State: remote.AgentReady},
		auth:   remote.AuthReport{OK: true},
	}
}

func testConfig(repo string) config.Config {
	cfg := config.Default()
	cfg.RepoPath = repo
	cfg.WebsiteURL = "https://abenaws.dev"
	cfg.SetupCompleted = true
	return cfg
}

func newWorkflow(repo string, g *fakeGit, h *fakeHealth) *Workflow {
	return &Workflow{
		Config:    testConfig(repo),
		Git:       g,
		Health:    h,
		Collector: &artifact.Collector{},
		Now:       func() time.Time { return time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC) },
		Out:       &bytes.Buffer{},
	}
}

var hexID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestPublishEndToEnd(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	g := &fakeGit{}
	h := readyHealth()
	w := newWorkflow(repo, g, h)

	result, err := w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.State != StateDone {
		t.Fatalf("state = %v, want DONE", result.State)
	}
	if !hexID.MatchString(result.ArtifactID) {
		t.Errorf("artifact id = %q, want 32 hex chars", result.ArtifactID)
	}

	copied := filepath.Join(repo, "opifacts", result.ArtifactID, "notes.txt")
	if got, err := os.ReadFile(copied); err != nil || string(got) != "hello" {
		t.Errorf("published file missing: %v", err)
	}

	if len(g.commits) != 1 || !strings.Contains(g.commits[0], result.ArtifactID) {
		t.Errorf("commits = %v, want one embedding the artifact id", g.commits)
	}
	if g.pushes != 1 {
		t.Errorf("pushes = %d, want 1", g.pushes)
	}

	wantURL := "https://abenaws.dev/opifacts/" + result.ArtifactID
	if result.PublicURL != wantURL {
		t.Errorf("url = %q, want %q", result.PublicURL, wantURL)
	}

	wantTrail := []State{StateCollecting, StateCommitting, StateRemoteCheck, StatePushConfirm, StatePushing, StateDone}
	if len(result.Trail) != len(wantTrail) {
		t.Fatalf("trail = %v, want %v", result.Trail, wantTrail)
	}
	for i, s := range wantTrail {
		if result.Trail[i] != s {
			t.Fatalf("trail = %v, want %v", result.Trail, wantTrail)
		}
	}

	if h.probed[0] != "github.com" {
		t.Errorf("probe host = %v", h.probed)
	}
}

func TestPublishMissingRepoIsFatal(t *testing.T) {
	g := &fakeGit{}
	w := newWorkflow(filepath.Join(t.TempDir(), "missing"), g, readyHealth())

	result, err := w.Run(context.Background(), []string{"whatever"})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.State != StateFatal {
		t.Errorf("state = %v, want FATAL", result.State)
	}
	if len(g.commits) != 0 {
		t.Error("no commit should be attempted")
	}
}

func TestPublishSkipsMissingSources(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "real.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(t.TempDir(), "ghost.txt")

	var out bytes.Buffer
	w := newWorkflow(repo, &fakeGit{}, readyHealth())
	w.Out = &out

	result, err := w.Run(context.Background(), []string{missing, src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateDone {
		t.Fatalf("state = %v", result.State)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != missing {
		t.Errorf("skipped = %v", result.Skipped)
	}
	if len(result.Copied) != 1 {
		t.Errorf("copied = %v", result.Copied)
	}
	if !strings.Contains(out.String(), "does not exist, skipping") {
		t.Errorf("missing-source warning not printed: %q", out.String())
	}
}

func TestPublishAgentNotReadyDowngradesToPartial(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	g := &fakeGit{}
	h := readyHealth()
	h.agent = remote.AgentReport{State: remote.AgentNoIdentities, Message: "SSH agent is running but has no keys"}
	w := newWorkflow(repo, g, h)

	result, err := w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("partial outcome must not be an error: %v", err)
	}
	if result.State != StatePartial {
		t.Fatalf("state = %v, want PARTIAL", result.State)
	}
	if len(g.commits) != 1 {
		t.Error("commit should exist before the downgrade")
	}
	if g.pushes != 0 {
		t.Error("no push should happen")
	}
	if !strings.Contains(result.Reason, "no keys") {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestPublishUnnormalizedRemoteDowngradesToPartial(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	h := readyHealth()
	h.status = remote.RemoteStatus{URL: "/srv/git/site.git", Message: "could not normalize remote URL"}
	g := &fakeGit{}
	w := newWorkflow(repo, g, h)

	result, err := w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StatePartial || g.pushes != 0 {
		t.Errorf("state = %v, pushes = %d", result.State, g.pushes)
	}
}

func TestPublishUncertainAuthConfirmation(t *testing.T) {
	mk := func(answer bool) (*Workflow, *fakeGit, string) {
		repo := t.TempDir()
		src := filepath.Join(t.TempDir(), "a.txt")
		if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		g := &fakeGit{}
		h := readyHealth()
		h.auth = remote.AuthReport{OK: false, Detail: "Permission denied (publickey)"}
		w := newWorkflow(repo, g, h)
		w.ConfirmPush = func(reason string) bool {
			if !strings.Contains(reason, "Permission denied") {
				t.Errorf("confirm reason = %q, want probe detail", reason)
			}
			return answer
		}
		return w, g, src
	}

	w, g, src := mk(true)
	result, err := w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateDone || g.pushes != 1 {
		t.Errorf("affirmed push: state = %v, pushes = %d", result.State, g.pushes)
	}

	w, g, src = mk(false)
	result, err = w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StatePartial || g.pushes != 0 {
		t.Errorf("declined push: state = %v, pushes = %d", result.State, g.pushes)
	}
}

func TestPublishNilConfirmDeclines(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	h := readyHealth()
	h.auth = remote.AuthReport{OK: false}
	w := newWorkflow(repo, &fakeGit{}, h)
	w.ConfirmPush = nil

	result, err := w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StatePartial {
		t.Errorf("state = %v, want PARTIAL", result.State)
	}
}

func TestPublishPushFailureIsFatalButKeepsCommit(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	g := &fakeGit{pushErr: errors.New("remote rejected")}
	w := newWorkflow(repo, g, readyHealth())

	result, err := w.Run(context.Background(), []string{src})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.State != StateFatal {
		t.Errorf("state = %v, want FATAL", result.State)
	}
	if len(g.commits) != 1 {
		t.Error("the local commit must not be rolled back")
	}
	if result.PublicURL != "" {
		t.Error("no public URL on failure")
	}
}

func TestPublishSkipPushStopsAfterCommit(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	g := &fakeGit{}
	h := readyHealth()
	w := newWorkflow(repo, g, h)
	w.SkipPush = true

	result, err := w.Run(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StatePartial || g.pushes != 0 {
		t.Errorf("state = %v, pushes = %d", result.State, g.pushes)
	}
	if h.normalized != 0 {
		t.Error("remote checks should be skipped entirely")
	}
}

func TestPublishCommitFailureIsFatal(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	g := &fakeGit{commitErr: errors.New("nothing to commit")}
	w := newWorkflow(repo, g, readyHealth())

	result, err := w.Run(context.Background(), []string{src})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.State != StateFatal {
		t.Errorf("state = %v", result.State)
	}
}

func TestPullRunsNormalizeThenPull(t *testing.T) {
	repo := t.TempDir()
	g := &fakeGit{}
	h := readyHealth()

	w := &PullWorkflow{Config: testConfig(repo), Git: g, Health: h, Out: &bytes.Buffer{}}
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.normalized != 1 || g.pulls != 1 {
		t.Errorf("normalized = %d, pulls = %d", h.normalized, g.pulls)
	}
}

func TestPullFailuresAreFatal(t *testing.T) {
	g := &fakeGit{pullErr: errors.New("network down")}
	w := &PullWorkflow{Config: testConfig(t.TempDir()), Git: g, Health: readyHealth()}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected pull error")
	}

	w = &PullWorkflow{Config: testConfig(filepath.Join(t.TempDir(), "missing")), Git: &fakeGit{}, Health: readyHealth()}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected missing-repo error")
	}
}

func TestPublicURLTrimsTrailingSlash(t *testing.T) {
	cfg := config.Default()
	cfg.WebsiteURL = "https://abenaws.dev/"
	if got := PublicURL(cfg, "abc"); got != "https://abenaws.dev/opifacts/abc" {
		t.Errorf("url = %q", got)
	}
}
