package gitx

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNotRepository is returned when no git repository encloses the working directory.
	ErrNotRepository = errors.New("not in a git repository")

	// ErrMergeCommit is returned when the commit range contains a merge commit.
	ErrMergeCommit = errors.New("merge commits are not supported in the commit range")

	// ErrNoBaseBranch is returned when no base branch can be determined.
	ErrNoBaseBranch = errors.New("no base branch found (tried origin/HEAD, main, master)")

	// ErrNoMergeBase is returned when HEAD and the base share no history.
	ErrNoMergeBase = errors.New("no common ancestor with the base branch")

	// ErrBranchCheckedOut is returned when moving the branch that HEAD is on.
	ErrBranchCheckedOut = errors.New("branch is checked out")
)

// GitError is a failed invocation of the git binary.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status of the git process, or -1 if it did not run to completion.
func (e *GitError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
