// Package engine provides the core business logic for stackplan operations.
//
// The engine package acts as the orchestration layer between CLI commands and
// the lower-level packages. A run reads the commit history, pre-fills and
// edits the plan, checks it against the history and then executes the
// compiled operations in order.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Push/Apply/Test: edit, reconcile and execute a plan
//   - Show: render the pre-filled plan without mutating anything
//   - PlanFromText: the same pipeline fed from text instead of an editor
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/stackplan/internal/clock"
	"github.com/danieljhkim/stackplan/internal/editor"
	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/logging"
	"github.com/danieljhkim/stackplan/internal/notes"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/planner"
	"github.com/danieljhkim/stackplan/internal/runner"
)

// DefaultRemoteKey is the git config key that overrides the configured default remote.
const DefaultRemoteKey = "stackplan.defaultRemote"

// Settings are the configuration values the engine consults.
type Settings struct {
	// DefaultRemote is used for targets without a remote
	DefaultRemote string

	// PushMode applies unless a request forces
	PushMode gitx.PushMode

	// Onto is the base revision; empty means detect it
	Onto string
}

// Engine orchestrates all stackplan operations.
// It is the main API surface called by the CLI.
type Engine struct {
	gitRepo  gitx.GitRepo
	notes    notes.Store
	editor   editor.Editor
	runner   runner.Runner
	clock    clock.Clock
	logger   *slog.Logger
	settings Settings
}

// New creates a new Engine with the given dependencies. A nil notes store
// disables annotation persistence and a nil logger discards diagnostics.
func New(
	gitRepo gitx.GitRepo,
	notesStore notes.Store,
	ed editor.Editor,
	run runner.Runner,
	clk clock.Clock,
	logger *slog.Logger,
	settings Settings,
) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if settings.DefaultRemote == "" {
		settings.DefaultRemote = planner.DefaultRemote
	}
	if settings.PushMode == "" {
		settings.PushMode = gitx.PushForceWithLease
	}
	return &Engine{
		gitRepo:  gitRepo,
		notes:    notesStore,
		editor:   ed,
		runner:   run,
		clock:    clk,
		logger:   logger,
		settings: settings,
	}
}

// session is the repository state read before the plan is edited.
type session struct {
	root    string
	onto    string
	remote  string
	head    gitx.Head
	history []plan.CommitRecord
	prefill *plan.Plan
	noted   map[string]bool
}

// open discovers the repository and reads everything a run needs before editing.
func (e *Engine) open(ctx context.Context, cwd, onto string) (*session, error) {
	root, err := e.gitRepo.Discover(cwd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotInRepo, err)
	}

	s := &session{root: root}

	if s.remote, err = e.defaultRemote(ctx, root); err != nil {
		return nil, err
	}
	if s.onto, err = e.resolveOnto(ctx, root, onto, s.remote); err != nil {
		return nil, err
	}
	if s.head, err = e.gitRepo.CurrentHead(ctx, root); err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	s.history, err = e.gitRepo.ListCommits(ctx, root, s.onto)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits onto %s: %w", s.onto, err)
	}
	if len(s.history) == 0 {
		return nil, fmt.Errorf("%w: HEAD is at %s", ErrNoCommits, s.onto)
	}
	e.logger.Debug("read history", "root", root, "onto", s.onto, "commits", len(s.history))

	if s.prefill, s.noted, err = e.loadAnnotations(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

// defaultRemote returns the git config override if set, else the configured default.
func (e *Engine) defaultRemote(ctx context.Context, root string) (string, error) {
	override, err := e.gitRepo.ConfigValue(ctx, root, DefaultRemoteKey)
	if err != nil {
		return "", err
	}
	if override == "" {
		return e.settings.DefaultRemote, nil
	}
	if !plan.ValidRemoteName(override) {
		e.logger.Warn("ignoring invalid remote in git config", "key", DefaultRemoteKey, "value", override)
		return e.settings.DefaultRemote, nil
	}
	return override, nil
}

func (e *Engine) resolveOnto(ctx context.Context, root, requested, remote string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if e.settings.Onto != "" {
		return e.settings.Onto, nil
	}
	onto, err := e.gitRepo.BaseBranch(ctx, root, remote)
	if err != nil {
		return "", fmt.Errorf("failed to determine base branch (use --onto): %w", err)
	}
	return onto, nil
}
