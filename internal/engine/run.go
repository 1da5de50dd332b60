package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/planner"
	"github.com/danieljhkim/stackplan/internal/reconcile"
)

// runOptions selects what a run executes.
type runOptions struct {
	compile planner.Options
	mode    gitx.PushMode
	dryRun  bool
}

// Show renders the pre-filled plan and opens it in the editor. Whatever the
// editor returns is discarded.
func (e *Engine) Show(ctx context.Context, req *ShowRequest) (*ShowResult, error) {
	s, err := e.open(ctx, req.CWD, req.Onto)
	if err != nil {
		return nil, err
	}

	result := &ShowResult{
		Root: s.root,
		Onto: s.onto,
		Plan: s.prefill,
		Text: plan.Render(s.prefill),
	}

	if e.editor != nil {
		edited, err := e.editor.Edit(ctx, plan.RenderWithHelp(s.prefill))
		if err != nil {
			return nil, fmt.Errorf("failed to edit plan: %w", err)
		}
		result.Edited = edited
	}

	return result, nil
}

// Algorithm steps:
// 1. Discover repo, resolve base and read history
// 2. Pre-fill the plan from notes and local branches
// 3. Let the user edit it
// 4. Parse, validate and reconcile against the history
// 5. Save annotations (unless DryRun)
// 6. Compile and execute operations (unless DryRun)
func (e *Engine) Push(ctx context.Context, req *PushRequest) (*RunResult, error) {
	mode := e.settings.PushMode
	if req.Force {
		mode = gitx.PushForce
	}
	return e.editAndRun(ctx, req.CWD, req.Onto, runOptions{
		compile: planner.Options{SkipPush: req.NoPush},
		mode:    mode,
		dryRun:  req.DryRun,
	})
}

// Apply moves local branches as the edited plan says. Tests and pushes are skipped.
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) (*RunResult, error) {
	return e.editAndRun(ctx, req.CWD, req.Onto, runOptions{
		compile: planner.Options{SkipTests: true, SkipPush: true},
		dryRun:  req.DryRun,
	})
}

// Test runs the edited plan's test commands. No branch is moved or pushed.
func (e *Engine) Test(ctx context.Context, req *TestRequest) (*RunResult, error) {
	return e.editAndRun(ctx, req.CWD, req.Onto, runOptions{
		compile: planner.Options{SkipBranches: true},
		dryRun:  req.DryRun,
	})
}

// PlanFromText processes req.Text as if the editor had returned it.
func (e *Engine) PlanFromText(ctx context.Context, req *PlanRequest) (*RunResult, error) {
	s, err := e.open(ctx, req.CWD, req.Onto)
	if err != nil {
		return nil, err
	}

	mode := e.settings.PushMode
	if req.Force {
		mode = gitx.PushForce
	}
	return e.run(ctx, s, req.Text, runOptions{
		compile: planner.Options{SkipPush: req.NoPush},
		mode:    mode,
		dryRun:  !req.Execute,
	})
}

func (e *Engine) editAndRun(ctx context.Context, cwd, onto string, opts runOptions) (*RunResult, error) {
	if e.editor == nil {
		return nil, ErrNoEditor
	}

	s, err := e.open(ctx, cwd, onto)
	if err != nil {
		return nil, err
	}

	text, err := e.editor.Edit(ctx, plan.RenderWithHelp(s.prefill))
	if err != nil {
		return nil, fmt.Errorf("failed to edit plan: %w", err)
	}

	return e.run(ctx, s, text, opts)
}

// run checks text against the session's history and executes the result.
// Nothing is mutated unless parsing, validation and reconciliation all succeed.
func (e *Engine) run(ctx context.Context, s *session, text string, opts runOptions) (*RunResult, error) {
	r, err := e.reconcile(s, text)
	if err != nil {
		return nil, err
	}

	opts.compile.DefaultRemote = s.remote
	ops := planner.Compile(r, opts.compile)
	e.logger.Debug("compiled operations",
		"checkout", ops.Count(planner.OpCheckout),
		"run_test", ops.Count(planner.OpRunTest),
		"update_branch", ops.Count(planner.OpUpdateBranch),
		"push_branch", ops.Count(planner.OpPushBranch),
	)

	result := &RunResult{
		Root:       s.root,
		Onto:       s.onto,
		Plan:       r.Annotations(),
		Operations: ops,
		Executed:   []ExecutedOperation{},
		DryRun:     opts.dryRun,
	}
	if opts.dryRun {
		return result, nil
	}

	if err := e.saveAnnotations(ctx, s, r); err != nil {
		return nil, err
	}

	executed, restored, err := e.execute(ctx, s, ops, opts.mode)
	result.Executed = executed
	result.Restored = restored
	if err != nil {
		return result, err
	}
	return result, nil
}

// reconcile parses, validates and reconciles text against s.history.
func (e *Engine) reconcile(s *session, text string) (*reconcile.Result, error) {
	parsed, err := plan.Parse(text)
	if err != nil {
		return nil, err
	}
	if _, err := plan.Validate(parsed); err != nil {
		return nil, err
	}

	r, err := reconcile.Reconcile(s.history, parsed)
	if err != nil {
		return nil, err
	}

	for _, a := range r.Branches() {
		if a.Target.Branch == s.head.Branch && a.Commit.Hash != s.head.Hash {
			return nil, fmt.Errorf("%w: %s is checked out at %s, plan puts it at %s",
				ErrCheckedOutBranch, s.head.Branch, plan.ShortHash(s.head.Hash), plan.ShortHash(a.Commit.Hash))
		}
	}

	return r, nil
}
