package gitx

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Run executes git with args in dir and returns trimmed stdout.
// A non-zero exit is reported as a *GitError carrying stderr.
func Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &GitError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}
