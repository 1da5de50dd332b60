// Package runner executes plan test commands.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Runner runs a shell command line in a directory.
type Runner interface {
	Run(ctx context.Context, dir, command string) error
}

// CommandError is a test command that exited unsuccessfully.
type CommandError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ShellRunner runs commands with sh -c, streaming their output.
type ShellRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner creates a ShellRunner writing to the process's stdout and stderr.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes command with dir as the working directory.
func (r *ShellRunner) Run(ctx context.Context, dir, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &CommandError{Command: command, ExitCode: -1, Err: ctxErr}
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &CommandError{Command: command, ExitCode: code, Err: err}
	}
	return nil
}

// FakeRunner records commands instead of running them.
type FakeRunner struct {
	mu       sync.Mutex
	Commands []string

	// Fail maps a command line to the error Run returns for it
	Fail map[string]error

	// OnRun, if set, is called before each command is recorded
	OnRun func(command string)
}

// NewFakeRunner creates a FakeRunner where every command succeeds.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Fail: map[string]error{}}
}

// Run records command and returns the configured failure, if any.
func (r *FakeRunner) Run(ctx context.Context, dir, command string) error {
	if r.OnRun != nil {
		r.OnRun(command)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Commands = append(r.Commands, command)
	if err := r.Fail[command]; err != nil {
		return err
	}
	return nil
}
