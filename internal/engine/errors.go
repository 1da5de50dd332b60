package engine

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/stackplan/internal/planner"
)

var (
	// ErrNotInRepo indicates the current directory is not in a git repository.
	ErrNotInRepo = errors.New("not in a git repository")

	// ErrNoCommits indicates there are no commits between the base and HEAD.
	ErrNoCommits = errors.New("no commits to plan")

	// ErrCheckedOutBranch indicates the plan moves the branch HEAD is on away from HEAD.
	ErrCheckedOutBranch = errors.New("cannot move the checked-out branch")

	// ErrNoEditor indicates an interactive operation was requested without an editor.
	ErrNoEditor = errors.New("no editor configured")
)

// OperationFailure reports the operation that failed during execution.
// Operations before it were applied and are not rolled back.
type OperationFailure struct {
	// Index is the position of Op in the operation plan
	Index int

	// Op is the operation that failed
	Op planner.Operation

	// Completed are the operations that ran successfully before Op
	Completed []ExecutedOperation

	Err error
}

func (f *OperationFailure) Error() string {
	return fmt.Sprintf("operation %d (%s) failed after %d completed: %v", f.Index+1, f.Op, len(f.Completed), f.Err)
}

func (f *OperationFailure) Unwrap() error {
	return f.Err
}
