package gitx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/danieljhkim/stackplan/internal/plan"
)

// EmptyTitle stands in for commits whose message has no first line.
const EmptyTitle = "(no commit message)"

// PushMode selects how a branch is pushed.
type PushMode string

const (
	PushForceWithLease PushMode = "force-with-lease"
	PushForce          PushMode = "force"
	PushNormal         PushMode = "normal"
)

// Valid reports whether m is a known push mode.
func (m PushMode) Valid() bool {
	switch m {
	case PushForceWithLease, PushForce, PushNormal:
		return true
	}
	return false
}

// Head describes what is checked out: a branch, or a detached commit when Branch is empty.
type Head struct {
	Branch string
	Hash   string
}

// Detached reports whether HEAD points directly at a commit.
func (h Head) Detached() bool {
	return h.Branch == ""
}

// GitRepo provides an abstraction for git repository operations.
type GitRepo interface {
	// Discover finds the git repository root starting from cwd.
	Discover(cwd string) (root string, err error)

	// BaseBranch returns the revision the stack is based on: remote/HEAD's
	// target if known, else main, else master.
	BaseBranch(ctx context.Context, root, remote string) (string, error)

	// ListCommits returns the first-parent commits reachable from HEAD but
	// not from onto, oldest first.
	ListCommits(ctx context.Context, root, onto string) ([]plan.CommitRecord, error)

	// BranchesAt maps commit hashes to the local branches pointing at them.
	BranchesAt(ctx context.Context, root string) (map[string][]string, error)

	// CurrentHead returns what HEAD currently points at.
	CurrentHead(ctx context.Context, root string) (Head, error)

	// Checkout switches the working tree to a branch or a detached commit.
	Checkout(ctx context.Context, root string, head Head) error

	// SetBranch creates or moves a local branch to hash.
	SetBranch(ctx context.Context, root, branch, hash string) error

	// Push pushes a local branch to the same name on remote.
	Push(ctx context.Context, root, remote, branch string, mode PushMode) error

	// ConfigValue reads a git config key. Unset keys yield "".
	ConfigValue(ctx context.Context, root, key string) (string, error)
}

// RealGitRepo implements GitRepo with go-git for reads and ref updates and
// the git binary for checkout, push and config.
type RealGitRepo struct{}

// NewRealGitRepo creates a new RealGitRepo.
func NewRealGitRepo() *RealGitRepo {
	return &RealGitRepo{}
}

func (g *RealGitRepo) open(root string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// Discover finds the work tree root enclosing cwd.
func (g *RealGitRepo) Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := g.open(absPath)
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get work tree: %w", err)
	}

	return wt.Filesystem.Root(), nil
}

// BaseBranch resolves the default base for the stack.
func (g *RealGitRepo) BaseBranch(ctx context.Context, root, remote string) (string, error) {
	repo, err := g.open(root)
	if err != nil {
		return "", err
	}

	if remote != "" {
		ref, err := repo.Reference(plumbing.NewRemoteHEADReferenceName(remote), false)
		if err == nil && ref.Type() == plumbing.SymbolicReference {
			return ref.Target().Short(), nil
		}
	}

	for _, name := range []string{"main", "master"} {
		if _, err := repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
			return name, nil
		}
	}

	return "", ErrNoBaseBranch
}

// ListCommits walks first parents from HEAD back to the merge base with onto.
func (g *RealGitRepo) ListCommits(ctx context.Context, root, onto string) ([]plan.CommitRecord, error) {
	repo, err := g.open(root)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []plan.CommitRecord{}, nil
		}
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	tip, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD commit: %w", err)
	}

	ontoHash, err := repo.ResolveRevision(plumbing.Revision(onto))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", onto, err)
	}
	base, err := repo.CommitObject(*ontoHash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", ontoHash, err)
	}

	bases, err := tip.MergeBase(base)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge base: %w", err)
	}
	if len(bases) == 0 {
		return nil, ErrNoMergeBase
	}
	stop := make(map[plumbing.Hash]bool, len(bases))
	for _, b := range bases {
		stop[b.Hash] = true
	}

	var commits []plan.CommitRecord
	for c := tip; !stop[c.Hash]; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.NumParents() > 1 {
			return nil, fmt.Errorf("%w: %s", ErrMergeCommit, c.Hash)
		}
		commits = append(commits, plan.CommitRecord{Hash: c.Hash.String(), Title: title(c)})
		if c.NumParents() == 0 {
			break
		}
		if c, err = c.Parent(0); err != nil {
			return nil, fmt.Errorf("failed to read parent: %w", err)
		}
	}

	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	for i := range commits {
		commits[i].Index = i
	}
	if commits == nil {
		commits = []plan.CommitRecord{}
	}

	return commits, nil
}

func title(c *object.Commit) string {
	line, _, _ := strings.Cut(c.Message, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return EmptyTitle
	}
	return line
}

// BranchesAt returns local branch names keyed by the commit they point at.
func (g *RealGitRepo) BranchesAt(ctx context.Context, root string) (map[string][]string, error) {
	repo, err := g.open(root)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer iter.Close()

	out := make(map[string][]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		h := ref.Hash().String()
		out[h] = append(out[h], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	for _, names := range out {
		sort.Strings(names)
	}
	return out, nil
}

// CurrentHead reports the checked-out branch, or the commit when detached.
func (g *RealGitRepo) CurrentHead(ctx context.Context, root string) (Head, error) {
	repo, err := g.open(root)
	if err != nil {
		return Head{}, err
	}

	ref, err := repo.Head()
	if err != nil {
		return Head{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	head := Head{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		head.Branch = ref.Name().Short()
	}
	return head, nil
}

// Checkout switches to head.Branch, or detaches at head.Hash.
func (g *RealGitRepo) Checkout(ctx context.Context, root string, head Head) error {
	args := []string{"-c", "advice.detachedHead=false", "checkout", "--quiet"}
	if head.Detached() {
		args = append(args, "--detach", head.Hash)
	} else {
		args = append(args, head.Branch)
	}

	if _, err := Run(ctx, root, args...); err != nil {
		return fmt.Errorf("failed to checkout: %w", err)
	}
	return nil
}

// SetBranch points refs/heads/branch at hash. Moving the checked-out branch
// to another commit is refused since it would leave the work tree stale.
func (g *RealGitRepo) SetBranch(ctx context.Context, root, branch, hash string) error {
	repo, err := g.open(root)
	if err != nil {
		return err
	}

	target := plumbing.NewHash(hash)
	if _, err := repo.CommitObject(target); err != nil {
		return fmt.Errorf("failed to read commit %s: %w", plan.ShortHash(hash), err)
	}

	name := plumbing.NewBranchReferenceName(branch)
	if head, err := repo.Head(); err == nil && head.Name() == name && head.Hash() != target {
		return fmt.Errorf("%w: %s", ErrBranchCheckedOut, branch)
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(name, target)); err != nil {
		return fmt.Errorf("failed to update branch %s: %w", branch, err)
	}
	return nil
}

// Push pushes refs/heads/branch to the same ref on remote.
func (g *RealGitRepo) Push(ctx context.Context, root, remote, branch string, mode PushMode) error {
	args := []string{"push", "--quiet"}
	switch mode {
	case PushForce:
		args = append(args, "--force")
	case PushNormal:
	default:
		args = append(args, "--force-with-lease")
	}
	refspec := "refs/heads/" + branch
	args = append(args, remote, refspec+":"+refspec)

	if _, err := Run(ctx, root, args...); err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", branch, remote, err)
	}
	return nil
}

// ConfigValue reads key from the repository's effective git config.
func (g *RealGitRepo) ConfigValue(ctx context.Context, root, key string) (string, error) {
	out, err := Run(ctx, root, "config", "--get", key)
	if err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) && gitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("failed to read git config %s: %w", key, err)
	}
	return out, nil
}
