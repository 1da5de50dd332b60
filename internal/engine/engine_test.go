package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/stackplan/internal/clock"
	"github.com/danieljhkim/stackplan/internal/editor"
	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/notes"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/planner"
	"github.com/danieljhkim/stackplan/internal/reconcile"
	"github.com/danieljhkim/stackplan/internal/runner"
)

const step = 10 * time.Millisecond

func hashOf(i int) string {
	return fmt.Sprintf("%040x", i+1)
}

type fixture struct {
	repo   *gitx.FakeGitRepo
	notes  *notes.FakeStore
	runner *runner.FakeRunner
	edited []string
}

// newFixture creates a repository on branch topic with n commits titled "commit i".
func newFixture(n int) *fixture {
	commits := make([]plan.CommitRecord, n)
	for i := range commits {
		commits[i] = plan.CommitRecord{Hash: hashOf(i), Title: fmt.Sprintf("commit %d", i)}
	}
	return &fixture{
		repo:   gitx.NewFakeGitRepo("/repo", commits),
		notes:  notes.NewFakeStore(),
		runner: runner.NewFakeRunner(),
	}
}

// engine returns an Engine whose editor records its input and returns text.
func (f *fixture) engine(text string) *Engine {
	ed := editor.Func(func(ctx context.Context, initial string) (string, error) {
		f.edited = append(f.edited, initial)
		return text, nil
	})
	return New(f.repo, f.notes, ed, f.runner, clock.NewSteppingClock(time.Unix(0, 0), step), nil, Settings{})
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestPush_TargetWithoutTests(t *testing.T) {
	f := newFixture(2)
	text := lines(
		hashOf(0)+" Add feature X",
		"-> origin:feature-x",
		hashOf(1)+" Fix bug Y",
	)

	result, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"branch feature-x " + hashOf(0),
		"push origin feature-x",
	}, f.repo.Calls)
	assert.Equal(t, []gitx.PushCall{{Remote: "origin", Branch: "feature-x", Mode: gitx.PushForceWithLease}}, f.repo.Pushes)
	assert.False(t, result.Restored, "no checkout, nothing to restore")
	assert.Len(t, result.Executed, 2)
	assert.Equal(t, "commit 0", result.Plan.Entries[0].Commit.Title, "titles come from history")

	assert.Equal(t, map[string]notes.Annotation{
		hashOf(0): {Branch: "feature-x", Remote: "origin"},
	}, f.notes.Notes)
}

func TestPush_TestsRunInOrderAndHeadIsRestored(t *testing.T) {
	f := newFixture(2)
	text := lines(
		hashOf(0)+" first",
		"$ cargo build",
		"$ cargo test",
		hashOf(1)+" second",
	)

	result, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cargo build", "cargo test"}, f.runner.Commands)
	assert.Equal(t, []string{"checkout " + hashOf(0), "checkout topic"}, f.repo.Calls)
	assert.True(t, result.Restored)
	assert.Equal(t, gitx.Head{Branch: "topic", Hash: hashOf(1)}, f.repo.Head)

	for _, op := range result.Executed {
		assert.Equal(t, step, op.Duration)
	}
}

func TestPush_DetachedHeadIsRestored(t *testing.T) {
	f := newFixture(2)
	f.repo.Head = gitx.Head{Hash: hashOf(1)}

	_, err := f.engine(lines(hashOf(0)+" a", "$ make", hashOf(1)+" b")).Push(context.Background(), &PushRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, gitx.Head{Hash: hashOf(1)}, f.repo.Head)
}

func TestPush_RejectedPlansHaveNoSideEffects(t *testing.T) {
	f := newFixture(3)
	f.notes.Notes[hashOf(2)] = notes.Annotation{Branch: "kept"}

	tests := []struct {
		name string
		text string
		is   error
	}{
		{
			name: "syntax error",
			text: lines(hashOf(0)+" a", "-> my branch!", hashOf(1)+" b", hashOf(2)+" c"),
			is:   plan.ErrSyntax,
		},
		{
			name: "duplicate branch",
			text: lines(hashOf(0)+" a", "-> x", "", hashOf(1)+" b", "-> x", "", hashOf(2)+" c"),
			is:   plan.ErrInvalid,
		},
		{
			name: "dropped commit",
			text: lines(hashOf(0)+" a", "-> x", "", hashOf(2)+" c"),
			is:   reconcile.ErrHistoryMutation,
		},
		{
			name: "reordered commits",
			text: lines(hashOf(1)+" b", hashOf(0)+" a", hashOf(2)+" c"),
			is:   reconcile.ErrHistoryMutation,
		},
		{
			name: "empty plan",
			text: "# nothing\n",
			is:   plan.ErrSyntax,
		},
		{
			name: "moves checked-out branch",
			text: lines(hashOf(0)+" a", "-> topic", "", hashOf(1)+" b", hashOf(2)+" c"),
			is:   ErrCheckedOutBranch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.engine(tt.text).Push(context.Background(), &PushRequest{CWD: "/repo"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
			assert.Nil(t, result)

			assert.Empty(t, f.repo.Calls)
			assert.Empty(t, f.runner.Commands)
			assert.Empty(t, f.notes.SaveCalls)
			assert.Empty(t, f.notes.DeleteCalls)
		})
	}
}

func TestPush_ParseErrorNamesOffendingCharacter(t *testing.T) {
	f := newFixture(2)
	text := lines(hashOf(0)+" a", "-> my branch!", hashOf(1)+" b")

	_, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo"})

	var parseErr *plan.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
	assert.Equal(t, "' '", parseErr.Found)
}

func TestPush_PartialFailureIsNotRolledBack(t *testing.T) {
	f := newFixture(3)
	pushErr := errors.New("remote rejected")
	f.repo.PushErr["second"] = pushErr
	text := lines(
		hashOf(0)+" a", "-> first", "",
		hashOf(1)+" b", "-> second", "",
		hashOf(2)+" c", "-> third",
	)

	result, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pushErr))

	var failure *OperationFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 4, failure.Index)
	assert.Equal(t, planner.PushBranch("second", "origin", hashOf(1)), failure.Op)
	assert.Len(t, failure.Completed, 4)

	assert.Equal(t, []gitx.PushCall{{Remote: "origin", Branch: "first", Mode: gitx.PushForceWithLease}}, f.repo.Pushes)
	assert.Equal(t, hashOf(0), f.repo.Branches["first"], "completed updates stay")
	assert.Equal(t, hashOf(2), f.repo.Branches["third"])
	require.NotNil(t, result)
	assert.Len(t, result.Executed, 4)
}

func TestPush_FailingTestLeavesHeadAtCommit(t *testing.T) {
	f := newFixture(2)
	f.runner.Fail["make test"] = &runner.CommandError{Command: "make test", ExitCode: 2}
	text := lines(
		hashOf(0)+" a", "-> never-pushed", "$ make test",
		hashOf(1)+" b",
	)

	_, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo"})
	require.Error(t, err)

	assert.Equal(t, gitx.Head{Hash: hashOf(0)}, f.repo.Head)
	assert.Empty(t, f.repo.Pushes)
	assert.NotContains(t, f.repo.Branches, "never-pushed", "branch is updated after its tests")
}

func TestPush_Cancellation(t *testing.T) {
	f := newFixture(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.runner.OnRun = func(string) { cancel() }
	text := lines(hashOf(0)+" a", "-> b", "$ first", "$ second", "", hashOf(1)+" b")

	_, err := f.engine(text).Push(ctx, &PushRequest{CWD: "/repo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var failure *OperationFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 2, failure.Index)
	assert.Equal(t, []string{"first"}, f.runner.Commands)
	assert.Empty(t, f.repo.Pushes)
}

func TestPush_Modes(t *testing.T) {
	text := lines(hashOf(0)+" a", "-> b", "$ make")

	t.Run("force", func(t *testing.T) {
		f := newFixture(1)
		f.repo.Head = gitx.Head{Branch: "elsewhere", Hash: hashOf(0)}

		_, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo", Force: true})
		require.NoError(t, err)
		require.Len(t, f.repo.Pushes, 1)
		assert.Equal(t, gitx.PushForce, f.repo.Pushes[0].Mode)
	})

	t.Run("configured mode", func(t *testing.T) {
		f := newFixture(1)
		e := f.engine(text)
		e.settings.PushMode = gitx.PushNormal

		_, err := e.Push(context.Background(), &PushRequest{CWD: "/repo"})
		require.NoError(t, err)
		require.Len(t, f.repo.Pushes, 1)
		assert.Equal(t, gitx.PushNormal, f.repo.Pushes[0].Mode)
	})

	t.Run("no push", func(t *testing.T) {
		f := newFixture(1)

		_, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo", NoPush: true})
		require.NoError(t, err)
		assert.Empty(t, f.repo.Pushes)
		assert.Equal(t, hashOf(0), f.repo.Branches["b"])
		assert.Equal(t, []string{"make"}, f.runner.Commands)
	})

	t.Run("dry run", func(t *testing.T) {
		f := newFixture(1)

		result, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo", DryRun: true})
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.Equal(t, 4, len(result.Operations.Operations))
		assert.Empty(t, result.Executed)
		assert.Empty(t, f.repo.Calls)
		assert.Empty(t, f.runner.Commands)
		assert.Empty(t, f.notes.SaveCalls)
	})
}

func TestPush_DefaultRemote(t *testing.T) {
	text := lines(hashOf(0)+" a", "-> b")

	t.Run("settings", func(t *testing.T) {
		f := newFixture(1)
		e := f.engine(text)
		e.settings.DefaultRemote = "upstream"

		_, err := e.Push(context.Background(), &PushRequest{CWD: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, "upstream", f.repo.Pushes[0].Remote)
	})

	t.Run("git config wins", func(t *testing.T) {
		f := newFixture(1)
		f.repo.Config[DefaultRemoteKey] = "fork"
		e := f.engine(text)
		e.settings.DefaultRemote = "upstream"

		_, err := e.Push(context.Background(), &PushRequest{CWD: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, "fork", f.repo.Pushes[0].Remote)
	})

	t.Run("invalid git config ignored", func(t *testing.T) {
		f := newFixture(1)
		f.repo.Config[DefaultRemoteKey] = "not/a/remote"

		_, err := f.engine(text).Push(context.Background(), &PushRequest{CWD: "/repo"})
		require.NoError(t, err)
		assert.Equal(t, planner.DefaultRemote, f.repo.Pushes[0].Remote)
	})
}

func TestApply_MovesBranchesOnly(t *testing.T) {
	f := newFixture(2)
	text := lines(hashOf(0)+" a", "-> first", "$ make", hashOf(1)+" b")

	result, err := f.engine(text).Apply(context.Background(), &ApplyRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"branch first " + hashOf(0)}, f.repo.Calls)
	assert.Empty(t, f.runner.Commands)
	assert.Empty(t, f.repo.Pushes)
	assert.False(t, result.Restored)
	assert.Equal(t, []string{"make"}, f.notes.Notes[hashOf(0)].Tests, "tests are still remembered")
}

func TestTest_RunsTestsOnly(t *testing.T) {
	f := newFixture(2)
	text := lines(hashOf(0)+" a", "-> first", "$ make", hashOf(1)+" b", "$ make check")

	result, err := f.engine(text).Test(context.Background(), &TestRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"make", "make check"}, f.runner.Commands)
	assert.Equal(t, []string{"checkout " + hashOf(0), "checkout " + hashOf(1), "checkout topic"}, f.repo.Calls)
	assert.NotContains(t, f.repo.Branches, "first")
	assert.Zero(t, result.Operations.Count(planner.OpUpdateBranch))
	assert.True(t, result.Restored)
}

func TestShow_PrefillsAndMutatesNothing(t *testing.T) {
	f := newFixture(3)
	f.repo.Branches["main"] = hashOf(0)
	f.repo.Branches["old-feature"] = hashOf(1)
	f.notes.Notes[hashOf(2)] = notes.Annotation{Branch: "saved", Remote: "fork", Tests: []string{"make"}}

	result, err := f.engine("garbage that is never parsed").Show(context.Background(), &ShowRequest{CWD: "/repo"})
	require.NoError(t, err)

	want := lines(
		hashOf(0)+" commit 0",
		hashOf(1)+" commit 1",
		"-> old-feature",
		"",
		hashOf(2)+" commit 2",
		"-> fork:saved",
		"$ make",
		"",
	)
	assert.Equal(t, want, result.Text)
	require.Len(t, f.edited, 1)
	assert.Equal(t, want+"\n"+plan.HelpText, f.edited[0])
	assert.Equal(t, "main", result.Onto)

	assert.Empty(t, f.repo.Calls)
	assert.Empty(t, f.notes.SaveCalls)
}

func TestShow_PrefillSkipsUnusableAnnotations(t *testing.T) {
	f := newFixture(2)
	f.notes.Notes[hashOf(0)] = notes.Annotation{Branch: "has space", Tests: []string{"", "ok"}}
	f.notes.Notes[hashOf(1)] = notes.Annotation{Branch: "dup"}
	f.repo.Branches["dup"] = hashOf(0)

	result, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/repo"})
	require.NoError(t, err)

	entries := result.Plan.Entries
	assert.Nil(t, entries[0].Target, "invalid stored branch and a branch already taken by a note")
	assert.Equal(t, []plan.TestCommand{{Command: "ok"}}, entries[0].Tests)
	assert.Equal(t, &plan.Target{Branch: "dup"}, entries[1].Target)

	_, err = plan.Parse(result.Text)
	assert.NoError(t, err, "pre-filled text always parses")
}

func TestPush_PrefillFromNotesIsAcceptedUnedited(t *testing.T) {
	f := newFixture(3)
	f.notes.Notes[hashOf(0)] = notes.Annotation{Branch: "topic", Tests: []string{"make"}}
	f.notes.Notes[hashOf(1)] = notes.Annotation{Branch: "main"}

	identity := editor.Func(func(ctx context.Context, text string) (string, error) { return text, nil })
	eng := New(f.repo, f.notes, identity, f.runner, clock.NewSteppingClock(time.Unix(0, 0), step), nil, Settings{})

	result, err := eng.Push(context.Background(), &PushRequest{CWD: "/repo"})
	require.NoError(t, err)

	entries := result.Plan.Entries
	assert.Nil(t, entries[0].Target, "checked-out branch is not offered below HEAD")
	assert.Equal(t, []plan.TestCommand{{Command: "make"}}, entries[0].Tests)
	assert.Nil(t, entries[1].Target, "base branch is not offered")
	assert.Equal(t, hashOf(2), f.repo.Branches["topic"])
	assert.Empty(t, f.repo.Pushes)
}

func TestShow_PrefillOffersCheckedOutBranchAtHead(t *testing.T) {
	f := newFixture(2)
	f.notes.Notes[hashOf(1)] = notes.Annotation{Branch: "topic", Remote: "fork"}

	result, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, &plan.Target{Remote: "fork", Branch: "topic"}, result.Plan.Entries[1].Target)
}

func TestShow_CorruptNoteIsIgnored(t *testing.T) {
	f := newFixture(1)
	f.notes.LoadErr = fmt.Errorf("%w: bad json", notes.ErrCorrupt)

	_, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/repo"})
	assert.NoError(t, err)
}

func TestRun_ClearsStaleAnnotations(t *testing.T) {
	f := newFixture(2)
	f.notes.Notes[hashOf(1)] = notes.Annotation{Branch: "gone"}

	_, err := f.engine(lines(hashOf(0)+" a", "-> kept", hashOf(1)+" b")).Apply(context.Background(), &ApplyRequest{CWD: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []string{hashOf(1)}, f.notes.DeleteCalls)
	assert.Equal(t, map[string]notes.Annotation{hashOf(0): {Branch: "kept"}}, f.notes.Notes)
}

func TestRun_NotesDisabled(t *testing.T) {
	f := newFixture(1)
	ed := editor.Func(func(ctx context.Context, initial string) (string, error) {
		return lines(hashOf(0)+" a", "-> b"), nil
	})
	e := New(f.repo, nil, ed, f.runner, nil, nil, Settings{})

	_, err := e.Apply(context.Background(), &ApplyRequest{CWD: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, hashOf(0), f.repo.Branches["b"])
}

func TestPlanFromText(t *testing.T) {
	text := lines(hashOf(0)+" a", "-> first", "$ make", hashOf(1)+" b")

	t.Run("compile only", func(t *testing.T) {
		f := newFixture(2)
		e := New(f.repo, f.notes, nil, f.runner, nil, nil, Settings{})

		result, err := e.PlanFromText(context.Background(), &PlanRequest{CWD: "/repo", Text: text})
		require.NoError(t, err)

		assert.Equal(t, []planner.Operation{
			planner.Checkout(hashOf(0)),
			planner.RunTest(hashOf(0), "make"),
			planner.UpdateBranch("first", hashOf(0), "origin"),
			planner.PushBranch("first", "origin", hashOf(0)),
		}, result.Operations.Operations)
		assert.True(t, result.DryRun)
		assert.Empty(t, f.repo.Calls)
		assert.Empty(t, f.notes.SaveCalls)
	})

	t.Run("execute", func(t *testing.T) {
		f := newFixture(2)
		e := New(f.repo, f.notes, nil, f.runner, nil, nil, Settings{})

		result, err := e.PlanFromText(context.Background(), &PlanRequest{CWD: "/repo", Text: text, Execute: true, NoPush: true})
		require.NoError(t, err)

		assert.Len(t, result.Executed, 3)
		assert.Empty(t, f.repo.Pushes)
		assert.Equal(t, hashOf(0), f.repo.Branches["first"])
	})

	t.Run("interactive operations need an editor", func(t *testing.T) {
		f := newFixture(2)
		e := New(f.repo, f.notes, nil, f.runner, nil, nil, Settings{})

		_, err := e.Push(context.Background(), &PushRequest{CWD: "/repo"})
		assert.True(t, errors.Is(err, ErrNoEditor))
	})
}

func TestOpen_Errors(t *testing.T) {
	t.Run("not in repo", func(t *testing.T) {
		f := newFixture(1)
		f.repo.DiscoverErr = gitx.ErrNotRepository

		_, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/tmp"})
		assert.True(t, errors.Is(err, ErrNotInRepo))
	})

	t.Run("no commits", func(t *testing.T) {
		f := newFixture(0)

		_, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/repo"})
		assert.True(t, errors.Is(err, ErrNoCommits))
	})

	t.Run("no base branch", func(t *testing.T) {
		f := newFixture(1)
		f.repo.Base = ""

		_, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/repo"})
		assert.True(t, errors.Is(err, gitx.ErrNoBaseBranch))
	})

	t.Run("explicit onto skips detection", func(t *testing.T) {
		f := newFixture(1)
		f.repo.Base = ""

		result, err := f.engine("").Show(context.Background(), &ShowRequest{CWD: "/repo", Onto: "develop"})
		require.NoError(t, err)
		assert.Equal(t, "develop", result.Onto)
	})
}
