package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/stackplan/internal/clock"
	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/planner"
)

// execute runs ops in order and stops at the first failure. After a fully
// successful run that moved HEAD, the original branch or commit is checked
// out again; after a failure HEAD is left where the failing step left it.
func (e *Engine) execute(ctx context.Context, s *session, ops *planner.OperationPlan, mode gitx.PushMode) ([]ExecutedOperation, bool, error) {
	executed := []ExecutedOperation{}
	movedHead := false

	for i, op := range ops.Operations {
		if err := ctx.Err(); err != nil {
			return executed, false, &OperationFailure{Index: i, Op: op, Completed: executed, Err: err}
		}

		e.logger.Debug("executing operation", "index", i, "type", op.Type, "op", op.String())
		start := e.clock.Now()
		if err := e.executeOperation(ctx, s.root, op, mode); err != nil {
			e.logger.Error("operation failed", "index", i, "op", op.String(), "error", err)
			return executed, false, &OperationFailure{Index: i, Op: op, Completed: executed, Err: err}
		}

		if op.Type == planner.OpCheckout {
			movedHead = true
		}
		executed = append(executed, ExecutedOperation{Operation: op, Duration: clock.Elapsed(e.clock, start)})
	}

	if !movedHead {
		return executed, false, nil
	}

	if err := e.gitRepo.Checkout(ctx, s.root, s.head); err != nil {
		return executed, false, fmt.Errorf("failed to restore HEAD: %w", err)
	}
	return executed, true, nil
}

// executeOperation executes a single operation.
func (e *Engine) executeOperation(ctx context.Context, root string, op planner.Operation, mode gitx.PushMode) error {
	switch op.Type {
	case planner.OpCheckout:
		return e.gitRepo.Checkout(ctx, root, gitx.Head{Hash: op.Commit})
	case planner.OpRunTest:
		return e.runner.Run(ctx, root, op.Command)
	case planner.OpUpdateBranch:
		return e.gitRepo.SetBranch(ctx, root, op.Branch, op.Commit)
	case planner.OpPushBranch:
		return e.gitRepo.Push(ctx, root, op.Remote, op.Branch, mode)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}
