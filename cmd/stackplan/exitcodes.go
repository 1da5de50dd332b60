package main

import (
	"context"
	"errors"

	"github.com/danieljhkim/stackplan/internal/config"
	"github.com/danieljhkim/stackplan/internal/engine"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/reconcile"
)

// Exit codes
const (
	ExitSuccess         = 0   // Success
	ExitError           = 1   // General error (not a repository, git failure, bad arguments)
	ExitConfigError     = 2   // Configuration file or environment is invalid
	ExitPlanError       = 3   // Plan text did not parse or validate
	ExitHistoryMutation = 4   // Plan edits, drops or reorders commits
	ExitOperationFailed = 5   // A test, branch update or push failed part way
	ExitInterrupted     = 130 // Interrupted by SIGINT or SIGTERM
)

// exitCode maps an error returned by the CLI to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, config.ErrConfig):
		return ExitConfigError
	case errors.Is(err, plan.ErrSyntax), errors.Is(err, plan.ErrInvalid), errors.Is(err, engine.ErrCheckedOutBranch):
		return ExitPlanError
	case errors.Is(err, reconcile.ErrHistoryMutation):
		return ExitHistoryMutation
	}

	var failure *engine.OperationFailure
	if errors.As(err, &failure) {
		return ExitOperationFailed
	}
	return ExitError
}
