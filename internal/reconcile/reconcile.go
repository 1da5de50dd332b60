// Package reconcile compares an edited plan against the real commit history
// and derives, for each commit, the branch state it must reach.
package reconcile

import (
	"github.com/danieljhkim/stackplan/internal/plan"
)

// Assignment is the reconciled state for one commit.
type Assignment struct {
	// Commit is the history record; the plan's title is ignored
	Commit plan.CommitRecord

	// Target is the branch that must point at Commit, if any
	Target *plan.Target

	// Tests are the commands to run with Commit checked out, in order
	Tests []plan.TestCommand

	// StackedAncestors are the hashes of the older branch-assigned commits,
	// oldest first. Only set when Target is set.
	StackedAncestors []string
}

// Result is the reconciled mapping, oldest commit first.
type Result struct {
	Assignments []Assignment
}

// Reconcile checks that p lists exactly the commits of history in the same
// order and carries the plan's annotations over onto the history records.
func Reconcile(history []plan.CommitRecord, p *plan.Plan) (*Result, error) {
	if err := compareHashes(history, p.Hashes()); err != nil {
		return nil, err
	}

	result := &Result{Assignments: make([]Assignment, 0, len(history))}
	var branched []string

	for i, commit := range history {
		entry := p.Entries[i]
		commit.Index = i

		a := Assignment{
			Commit: commit,
			Tests:  cloneTests(entry.Tests),
		}
		if entry.Target != nil {
			target := *entry.Target
			a.Target = &target
			a.StackedAncestors = append([]string(nil), branched...)
			branched = append(branched, commit.Hash)
		}
		result.Assignments = append(result.Assignments, a)
	}

	return result, nil
}

// compareHashes returns a HistoryMutationRejected describing the first
// divergence between want and got, or nil if they are identical.
func compareHashes(history []plan.CommitRecord, got []string) error {
	want := make([]string, len(history))
	inHistory := make(map[string]bool, len(history))
	for i, c := range history {
		want[i] = c.Hash
		inHistory[c.Hash] = true
	}
	inPlan := make(map[string]bool, len(got))
	for _, h := range got {
		inPlan[h] = true
	}

	for i := 0; i < len(want) || i < len(got); i++ {
		switch {
		case i >= len(got):
			return &HistoryMutationRejected{Kind: MutationRemoved, Index: i, Expected: want[i]}
		case i >= len(want):
			return &HistoryMutationRejected{Kind: MutationInserted, Index: i, Found: got[i]}
		case want[i] == got[i]:
			continue
		}

		err := &HistoryMutationRejected{Index: i, Expected: want[i], Found: got[i]}
		switch {
		case !inHistory[got[i]] && inPlan[want[i]]:
			err.Kind = MutationInserted
		case !inHistory[got[i]]:
			err.Kind = MutationEdited
		case !inPlan[want[i]]:
			err.Kind = MutationRemoved
		default:
			err.Kind = MutationReordered
		}
		return err
	}

	return nil
}

func cloneTests(tests []plan.TestCommand) []plan.TestCommand {
	if len(tests) == 0 {
		return nil
	}
	return append([]plan.TestCommand(nil), tests...)
}

// Branches returns the branch-assigned assignments, oldest first.
func (r *Result) Branches() []Assignment {
	var out []Assignment
	for _, a := range r.Assignments {
		if a.Target != nil {
			out = append(out, a)
		}
	}
	return out
}

// Annotations returns the plan equivalent of r, with history titles.
func (r *Result) Annotations() *plan.Plan {
	p := &plan.Plan{Entries: make([]plan.Entry, 0, len(r.Assignments))}
	for _, a := range r.Assignments {
		entry := plan.Entry{Commit: a.Commit, Tests: cloneTests(a.Tests)}
		if a.Target != nil {
			target := *a.Target
			entry.Target = &target
		}
		p.Entries = append(p.Entries, entry)
	}
	return p
}
