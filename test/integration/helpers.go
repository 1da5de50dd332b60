package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/stackplan/internal/clock"
	"github.com/danieljhkim/stackplan/internal/editor"
	"github.com/danieljhkim/stackplan/internal/engine"
	"github.com/danieljhkim/stackplan/internal/gitx"
	"github.com/danieljhkim/stackplan/internal/notes"
	"github.com/danieljhkim/stackplan/internal/runner"
)

// testRepo is a repository on branch topic, stacked on main, with a bare
// repository configured as remote origin.
type testRepo struct {
	dir    string
	remote string
	hashes []string
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// git runs a git command in dir and returns trimmed stdout.
func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func setupTestRepo(t *testing.T, messages ...string) *testRepo {
	t.Helper()
	requireGit(t)

	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}

	r := &testRepo{
		dir:    filepath.Join(tmpDir, "repo"),
		remote: filepath.Join(tmpDir, "remote.git"),
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		t.Fatal(err)
	}

	git(t, tmpDir, "init", "--quiet", "--bare", r.remote)
	git(t, r.dir, "init", "--quiet")
	git(t, r.dir, "symbolic-ref", "HEAD", "refs/heads/main")
	git(t, r.dir, "config", "user.email", "test@example.com")
	git(t, r.dir, "config", "user.name", "Test User")
	git(t, r.dir, "remote", "add", "origin", r.remote)
	git(t, r.dir, "commit", "--allow-empty", "--quiet", "-m", "base")
	git(t, r.dir, "checkout", "--quiet", "-b", "topic")

	for _, m := range messages {
		git(t, r.dir, "commit", "--allow-empty", "--quiet", "-m", m)
		r.hashes = append(r.hashes, git(t, r.dir, "rev-parse", "HEAD"))
	}
	return r
}

// remoteRef returns the hash of refs/heads/branch on the bare remote, or "".
func (r *testRepo) remoteRef(t *testing.T, branch string) string {
	t.Helper()
	out, err := exec.Command("git", "--git-dir", r.remote, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// newEngine wires real git, notes and shell collaborators; the editor always
// returns whatever *edited holds when it is called.
func newEngine(edited *string) *engine.Engine {
	ed := editor.Func(func(ctx context.Context, text string) (string, error) {
		return *edited, nil
	})
	run := runner.NewShellRunner()
	run.Stdout, run.Stderr = nil, nil

	return engine.New(
		gitx.NewRealGitRepo(),
		notes.NewGitNotesStore(notes.DefaultRef),
		ed,
		run,
		clock.RealClock{},
		nil,
		engine.Settings{},
	)
}
