package planner

import (
	"fmt"

	"github.com/danieljhkim/stackplan/internal/plan"
)

// OperationPlan is the compiled, totally ordered list of operations.
type OperationPlan struct {
	// Operations is the ordered list of operations to execute
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Operation represents a single step against the repository or remote.
type Operation struct {
	// Type is the operation type: "checkout", "run_test", "update_branch", "push_branch"
	Type string `json:"type" yaml:"type"`

	// Commit is the commit checked out or pointed at (checkout, run_test, update_branch)
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty"`

	// Branch is the branch updated or pushed (update_branch, push_branch)
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`

	// Remote is the resolved remote (update_branch, push_branch)
	Remote string `json:"remote,omitempty" yaml:"remote,omitempty"`

	// Command is the test command line (run_test)
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
}

// Operation type constants
const (
	OpCheckout     = "checkout"
	OpRunTest      = "run_test"
	OpUpdateBranch = "update_branch"
	OpPushBranch   = "push_branch"
)

// Checkout returns a checkout operation.
func Checkout(commit string) Operation {
	return Operation{Type: OpCheckout, Commit: commit}
}

// RunTest returns a run_test operation for a command run against commit.
func RunTest(commit, command string) Operation {
	return Operation{Type: OpRunTest, Commit: commit, Command: command}
}

// UpdateBranch returns an update_branch operation.
func UpdateBranch(branch, commit, remote string) Operation {
	return Operation{Type: OpUpdateBranch, Branch: branch, Commit: commit, Remote: remote}
}

// PushBranch returns a push_branch operation. Commit is informational.
func PushBranch(branch, remote, commit string) Operation {
	return Operation{Type: OpPushBranch, Branch: branch, Remote: remote, Commit: commit}
}

// String renders the operation for display.
func (op Operation) String() string {
	switch op.Type {
	case OpCheckout:
		return fmt.Sprintf("checkout %s", plan.ShortHash(op.Commit))
	case OpRunTest:
		return fmt.Sprintf("run %q at %s", op.Command, plan.ShortHash(op.Commit))
	case OpUpdateBranch:
		return fmt.Sprintf("update %s -> %s", op.Branch, plan.ShortHash(op.Commit))
	case OpPushBranch:
		return fmt.Sprintf("push %s to %s", op.Branch, op.Remote)
	default:
		return op.Type
	}
}

// NewOperationPlan creates a new empty OperationPlan.
func NewOperationPlan() *OperationPlan {
	return &OperationPlan{Operations: []Operation{}}
}

// AddOperation adds an operation to the plan.
func (p *OperationPlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// Count returns the number of operations of the given type.
func (p *OperationPlan) Count(opType string) int {
	n := 0
	for _, op := range p.Operations {
		if op.Type == opType {
			n++
		}
	}
	return n
}

// IsEmpty returns true if there is nothing to execute.
func (p *OperationPlan) IsEmpty() bool {
	return len(p.Operations) == 0
}
