package reconcile

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/stackplan/internal/plan"
)

// ErrHistoryMutation matches every HistoryMutationRejected error.
var ErrHistoryMutation = errors.New("history mutation rejected")

// Mutation kinds
const (
	MutationInserted  = "inserted"
	MutationRemoved   = "removed"
	MutationReordered = "reordered"
	MutationEdited    = "edited"
)

// HistoryMutationRejected reports that the edited plan's commits differ
// from the real history. Commit content and order in the plan are advisory
// only and are never applied.
type HistoryMutationRejected struct {
	// Kind is one of the Mutation* constants
	Kind string

	// Index is the first position (0-based) where the sequences diverge
	Index int

	// Expected is the history hash at Index, empty past the end of history
	Expected string

	// Found is the plan hash at Index, empty past the end of the plan
	Found string
}

func (e *HistoryMutationRejected) Error() string {
	switch e.Kind {
	case MutationInserted:
		return fmt.Sprintf("history mutation rejected: commit %s at position %d is not part of the history",
			plan.ShortHash(e.Found), e.Index+1)
	case MutationRemoved:
		return fmt.Sprintf("history mutation rejected: commit %s at position %d was removed from the plan",
			plan.ShortHash(e.Expected), e.Index+1)
	case MutationReordered:
		return fmt.Sprintf("history mutation rejected: commits were reordered at position %d (expected %s, found %s)",
			e.Index+1, plan.ShortHash(e.Expected), plan.ShortHash(e.Found))
	default:
		return fmt.Sprintf("history mutation rejected: commit at position %d changed from %s to %s",
			e.Index+1, plan.ShortHash(e.Expected), plan.ShortHash(e.Found))
	}
}

// Is makes errors.Is(err, ErrHistoryMutation) true.
func (e *HistoryMutationRejected) Is(target error) bool {
	return target == ErrHistoryMutation
}
