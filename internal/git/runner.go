package git

import (
	"bytes"
	"os/exec"
)

// Runner executes external commands. It exists so the git and SSH
// interactions, whose success is inferred from exit status and captured
// output, can be scripted in tests.
type Runner interface {
	// Run executes a command, returning its combined output and any error.
	Run(cmd *exec.Cmd) (output string, err error)

	// RunSplit executes a command and returns stdout and stderr separately.
	// Both streams are returned even when the command exits non-zero.
	RunSplit(cmd *exec.Cmd) (stdout, stderr string, err error)
}

// ExecRunner is the default Runner backed by os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(cmd *exec.Cmd) (string, error) {
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (ExecRunner) RunSplit(cmd *exec.Cmd) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
