// Package remote inspects the git remote and the local SSH environment
// before a push is attempted. All of its checks are advisory: they report
// readiness, the caller decides what to do about it.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"regexp"
	"strings"

	"github.com/abenaws/opifacts/internal/git"
)

// authGreeting is the substring GitHub-style hosts print on a successful
// 'ssh -T' handshake. The command still exits non-zero, so the greeting is
// the only reliable success signal.
const authGreeting = "successfully authenticated"

const noIdentities = "The agent has no identities"

// sshURLPattern matches scp-like remote URLs of the form user@host:path.
var sshURLPattern = regexp.MustCompile(`^[^@\s]+@[^:/\s]+:\S+$`)

// GitRemote is the slice of the git client the checker needs.
type GitRemote interface {
	RemoteURL(ctx context.Context, name string) (string, error)
	SetRemoteURL(ctx context.Context, name, url string) error
}

// RemoteStatus is the outcome of a remote URL inspection.
type RemoteStatus struct {
	URL        string
	Host       string // remote host, when the URL form was recognized
	Normalized bool   // URL is now in SSH form
	Rewritten  bool   // this call changed the remote URL
	Message    string // operator guidance when not normalized
}

// AgentState classifies SSH agent readiness.
type AgentState int

const (
	AgentReady AgentState = iota
	AgentNoIdentities
	AgentNotRunning
)

func (s AgentState) String() string {
	switch s {
	case AgentReady:
		return "ready"
	case AgentNoIdentities:
		return "no identities"
	case AgentNotRunning:
		return "not running"
	default:
		return "unknown"
	}
}

// AgentReport is the outcome of an SSH agent check.
type AgentReport struct {
	State   AgentState
	Message string
}

// Ready reports whether the agent holds at least one identity.
func (r AgentReport) Ready() bool { return r.State == AgentReady }

// AuthReport is the outcome of an authentication probe.
type AuthReport struct {
	OK     bool
	Detail string // captured probe output when authentication is uncertain
}

// Checker verifies and repairs push preconditions.
type Checker struct {
	Git    GitRemote
	Runner git.Runner
	Remote string // remote name, default "origin"
}

// NewChecker returns a Checker for the named remote backed by real commands.
func NewChecker(g GitRemote, remoteName string) *Checker {
	if remoteName == "" {
		remoteName = "origin"
	}
	return &Checker{Git: g, Runner: git.ExecRunner{}, Remote: remoteName}
}

// NormalizeRemote reads the remote URL and rewrites recognized HTTPS forms to
// the equivalent SSH form. Already-SSH URLs are accepted unchanged, so the
// operation is idempotent. Unrecognized URLs are left untouched and reported.
func (c *Checker) NormalizeRemote(ctx context.Context) (RemoteStatus, error) {
	current, err := c.Git.RemoteURL(ctx, c.Remote)
	if err != nil {
		return RemoteStatus{Message: "could not read remote URL"}, err
	}

	if sshURLPattern.MatchString(current) {
		return RemoteStatus{URL: current, Host: sshHost(current), Normalized: true}, nil
	}

	if sshURL, host, ok := httpsToSSH(current); ok {
		if err := c.Git.SetRemoteURL(ctx, c.Remote, sshURL); err != nil {
			return RemoteStatus{URL: current, Message: "could not rewrite remote URL to SSH form"}, err
		}
		return RemoteStatus{URL: sshURL, Host: host, Normalized: true, Rewritten: true}, nil
	}

	return RemoteStatus{
		URL: current,
		Message: fmt.Sprintf("could not normalize remote URL '%s' — set it manually with: git remote set-url %s git@<host>:<owner>/<repo>.git",
			current, c.Remote),
	}, nil
}

// httpsToSSH maps https://host/owner/repo[.git] to git@host:owner/repo.git.
func httpsToSSH(raw string) (sshURL, host string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", "", false
	}

	path := strings.Trim(u.Path, "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")

	return fmt.Sprintf("git@%s:%s/%s.git", u.Host, owner, repo), u.Host, true
}

// sshHost extracts the host from a user@host:path URL.
func sshHost(sshURL string) string {
	at := strings.Index(sshURL, "@")
	colon := strings.Index(sshURL, ":")
	if at < 0 || colon < at {
		return ""
	}
	return sshURL[at+1 : colon]
}

// CheckAgent queries the SSH agent for loaded identities. When the agent is
// not reachable it tries to start one, which still leaves the environment not
// ready: a fresh agent holds no keys.
func (c *Checker) CheckAgent(ctx context.Context) AgentReport {
	cmd := exec.CommandContext(ctx, "ssh-add", "-l")
	output, err := c.Runner.Run(cmd)

	if strings.Contains(output, noIdentities) {
		return AgentReport{
			State:   AgentNoIdentities,
			Message: "SSH agent is running but has no keys — add one with: ssh-add ~/.ssh/id_ed25519",
		}
	}
	if err == nil {
		return AgentReport{State: AgentReady}
	}

	// Agent unreachable. Start one; the operator still has to load a key.
	start := exec.CommandContext(ctx, "ssh-agent", "-s")
	_, _ = c.Runner.Run(start)

	return AgentReport{
		State:   AgentNotRunning,
		Message: "SSH agent was not reachable — started one, now add your key with: ssh-add ~/.ssh/id_ed25519",
	}
}

// ProbeAuth performs a non-destructive authentication test against host.
// Hosts like GitHub close the session with a non-zero exit even on success,
// so only the greeting in the output counts; its absence means uncertain,
// not failed.
func (c *Checker) ProbeAuth(ctx context.Context, host string) AuthReport {
	if host == "" {
		host = "github.com"
	}

	cmd := exec.CommandContext(ctx, "ssh", "-T", "git@"+host)
	_, stderr, _ := c.Runner.RunSplit(cmd)

	if strings.Contains(stderr, authGreeting) {
		return AuthReport{OK: true}
	}
	return AuthReport{OK: false, Detail: strings.TrimSpace(stderr)}
}
