package planner

import (
	"github.com/danieljhkim/stackplan/internal/reconcile"
)

// DefaultRemote is used when neither the target nor the options name a remote.
const DefaultRemote = "origin"

// Options control which operation kinds Compile emits.
type Options struct {
	// DefaultRemote fills targets that do not name a remote
	DefaultRemote string

	// SkipTests drops checkout and run_test operations
	SkipTests bool

	// SkipBranches drops update_branch and push_branch operations
	SkipBranches bool

	// SkipPush drops push_branch operations
	SkipPush bool
}

// Compile turns a reconciled mapping into a totally ordered operation list.
//
// Commits are walked oldest to newest: a commit with tests yields a
// checkout followed by one run_test per command in declared order, and a
// commit with a target yields an update_branch. Pushes are deferred until
// every update and test has been emitted, and a stacked branch is never
// pushed before the branches in its StackedAncestors.
func Compile(r *reconcile.Result, opts Options) *OperationPlan {
	defaultRemote := opts.DefaultRemote
	if defaultRemote == "" {
		defaultRemote = DefaultRemote
	}

	ops := NewOperationPlan()
	var pushes []pendingPush

	for _, a := range r.Assignments {
		if len(a.Tests) > 0 && !opts.SkipTests {
			ops.AddOperation(Checkout(a.Commit.Hash))
			for _, t := range a.Tests {
				ops.AddOperation(RunTest(a.Commit.Hash, t.Command))
			}
		}

		if a.Target == nil || opts.SkipBranches {
			continue
		}

		remote := a.Target.Remote
		if remote == "" {
			remote = defaultRemote
		}
		ops.AddOperation(UpdateBranch(a.Target.Branch, a.Commit.Hash, remote))
		if !opts.SkipPush {
			pushes = append(pushes, pendingPush{
				op:        PushBranch(a.Target.Branch, remote, a.Commit.Hash),
				ancestors: a.StackedAncestors,
			})
		}
	}

	for _, op := range orderPushes(pushes) {
		ops.AddOperation(op)
	}

	return ops
}

type pendingPush struct {
	op        Operation
	ancestors []string
}

// orderPushes emits each push once every ancestor with a pending push has
// been emitted. Ties keep their input order. Ancestors without a push, and
// cycles, never block: the remaining pushes are flushed in input order.
func orderPushes(pending []pendingPush) []Operation {
	waiting := make(map[string]bool, len(pending))
	for _, p := range pending {
		waiting[p.op.Commit] = true
	}

	out := make([]Operation, 0, len(pending))
	done := make([]bool, len(pending))
	for len(out) < len(pending) {
		progressed := false
		for i, p := range pending {
			if done[i] || !ready(p.ancestors, waiting) {
				continue
			}
			out = append(out, p.op)
			done[i] = true
			waiting[p.op.Commit] = false
			progressed = true
		}
		if progressed {
			continue
		}
		for i, p := range pending {
			if !done[i] {
				out = append(out, p.op)
				done[i] = true
			}
		}
	}
	return out
}

func ready(ancestors []string, waiting map[string]bool) bool {
	for _, h := range ancestors {
		if waiting[h] {
			return false
		}
	}
	return true
}
