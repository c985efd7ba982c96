// Package git wraps the git command line behind a narrow client so the rest
// of the program never builds git invocations itself.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// GitError describes a failed git invocation.
type GitError struct {
	Operation string
	Args      []string
	Output    string
	Err       error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// Client runs git commands against a single repository working tree.
type Client struct {
	RepoPath string
	Runner   Runner
}

// New returns a Client for the repository at repoPath.
func New(repoPath string) *Client {
	return &Client{RepoPath: repoPath, Runner: ExecRunner{}}
}

// IsRepository reports whether the client's path is inside a git work tree.
func (c *Client) IsRepository(ctx context.Context) bool {
	_, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// AddAll stages every change in the working tree.
func (c *Client) AddAll(ctx context.Context) error {
	_, err := c.run(ctx, "add", ".")
	return err
}

// Commit creates a commit with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

// Push pushes the current branch to its upstream.
func (c *Client) Push(ctx context.Context) error {
	_, err := c.run(ctx, "push")
	return err
}

// Pull fetches and integrates the latest remote state.
func (c *Client) Pull(ctx context.Context) error {
	_, err := c.run(ctx, "pull")
	return err
}

// RemoteURL returns the fetch URL of the named remote.
func (c *Client) RemoteURL(ctx context.Context, name string) (string, error) {
	out, err := c.run(ctx, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetRemoteURL rewrites the URL of the named remote.
func (c *Client) SetRemoteURL(ctx context.Context, name, url string) error {
	_, err := c.run(ctx, "remote", "set-url", name, url)
	return err
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", c.RepoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := c.Runner.Run(cmd)
	if err != nil {
		return output, &GitError{Operation: args[0], Args: args[1:], Output: output, Err: err}
	}
	return output, nil
}
