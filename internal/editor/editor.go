// Package editor hands plan text to the user for editing.
package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Fallback is used when no editor is configured anywhere.
const Fallback = "vi"

// Editor lets the user edit text and returns the edited result.
type Editor interface {
	Edit(ctx context.Context, text string) (string, error)
}

// Func adapts a function to the Editor interface.
type Func func(ctx context.Context, text string) (string, error)

// Edit calls f.
func (f Func) Edit(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Command edits text in a temporary file with an external editor command.
// The command is run through sh so that values such as "code --wait" work.
type Command struct {
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewCommand creates a Command editor attached to the process's terminal.
func NewCommand(command string) *Command {
	return &Command{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit writes text to a temp file, waits for the editor to exit and reads the file back.
func (c *Command) Edit(ctx context.Context, text string) (string, error) {
	f, err := os.CreateTemp("", "stackplan-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", c.Command+` "$@"`, "stackplan-editor", path)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %q failed: %w", c.Command, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited plan: %w", err)
	}
	return string(data), nil
}

// Resolve picks the editor command: the configured value, then git's
// core.editor, then $VISUAL, then $EDITOR, then Fallback.
func Resolve(configured, gitEditor string) string {
	for _, candidate := range []string{configured, gitEditor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if candidate != "" {
			return candidate
		}
	}
	return Fallback
}
