// Package runner executes the external tools repomirror orchestrates.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// Result is the captured outcome of a command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status 0
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs a shell command line. A non-zero exit status is reported in
// Result.ExitCode, not as an error; the error is reserved for commands that
// could not be started or were interrupted.
type Runner interface {
	Run(ctx context.Context, command string, display bool) (Result, error)
}

// Func adapts a function to the Runner interface
type Func func(ctx context.Context, command string, display bool) (Result, error)

// Run calls f
func (f Func) Run(ctx context.Context, command string, display bool) (Result, error) {
	return f(ctx, command, display)
}

// Shell runs commands through bash
type Shell struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewShell creates a Shell that displays live output on the process stdio
func NewShell() *Shell {
	return &Shell{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes command with bash -c. When display is set the output is
// streamed while it is being captured.
func (s *Shell) Run(ctx context.Context, command string, display bool) (Result, error) {
	logrus.Debugf("Running: %s", command)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Env = os.Environ()
	if display {
		cmd.Stdout = io.MultiWriter(&stdout, s.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, s.Stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return res, fmt.Errorf("command interrupted: %w", ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("failed to start command: %w", err)
	}

	logrus.Debugf("Command exited with %d", res.ExitCode)
	return res, nil
}

// Join quotes args into a single shell command line
func Join(args ...string) string {
	return shellquote.Join(args...)
}
