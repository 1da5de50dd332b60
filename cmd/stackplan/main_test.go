package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/danieljhkim/stackplan/internal/config"
	"github.com/danieljhkim/stackplan/internal/engine"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/planner"
	"github.com/danieljhkim/stackplan/internal/reconcile"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitError},
		{"not in repo", engine.ErrNotInRepo, ExitError},
		{"config", fmt.Errorf("%w: bad push.mode", config.ErrConfig), ExitConfigError},
		{"parse error", &plan.ParseError{Line: 1, Column: 1, Expected: "x", Found: "y"}, ExitPlanError},
		{"validation error", &plan.ValidationError{Kind: plan.KindDuplicateBranch, Subject: "a", Reason: "used twice"}, ExitPlanError},
		{"checked out branch", fmt.Errorf("%w: topic", engine.ErrCheckedOutBranch), ExitPlanError},
		{"history mutation", &reconcile.HistoryMutationRejected{Kind: reconcile.MutationRemoved}, ExitHistoryMutation},
		{"operation failure", &engine.OperationFailure{Op: planner.Checkout("a"), Err: errors.New("dirty tree")}, ExitOperationFailed},
		{"interrupted", &engine.OperationFailure{Op: planner.Checkout("a"), Err: context.Canceled}, ExitInterrupted},
		{"interrupted before running", fmt.Errorf("failed to read history: %w", context.Canceled), ExitInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
