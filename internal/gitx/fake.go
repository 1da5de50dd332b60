package gitx

import (
	"context"
	"fmt"
	"sort"

	"github.com/danieljhkim/stackplan/internal/plan"
)

// PushCall records a Push made against a FakeGitRepo.
type PushCall struct {
	Remote string
	Branch string
	Mode   PushMode
}

// FakeGitRepo implements GitRepo over in-memory state for testing.
// Every mutating call is appended to Calls in the order it was made.
type FakeGitRepo struct {
	Root     string
	Base     string
	Commits  []plan.CommitRecord
	Branches map[string]string // branch name -> commit hash
	Head     Head
	Config   map[string]string

	Calls     []string
	Pushes    []PushCall
	Checkouts []Head

	// Configurable failures
	DiscoverErr  error
	ListErr      error
	CheckoutErr  map[string]error // keyed by commit hash or branch name
	SetBranchErr map[string]error // keyed by branch name
	PushErr      map[string]error // keyed by branch name
}

// NewFakeGitRepo creates a FakeGitRepo on branch "topic" whose history is commits.
func NewFakeGitRepo(root string, commits []plan.CommitRecord) *FakeGitRepo {
	head := Head{Branch: "topic"}
	if len(commits) > 0 {
		head.Hash = commits[len(commits)-1].Hash
	}
	branches := map[string]string{}
	if head.Hash != "" {
		branches["topic"] = head.Hash
	}
	return &FakeGitRepo{
		Root:         root,
		Base:         "main",
		Commits:      commits,
		Branches:     branches,
		Head:         head,
		Config:       map[string]string{},
		CheckoutErr:  map[string]error{},
		SetBranchErr: map[string]error{},
		PushErr:      map[string]error{},
	}
}

// Discover returns the predetermined root.
func (g *FakeGitRepo) Discover(cwd string) (string, error) {
	if g.DiscoverErr != nil {
		return "", g.DiscoverErr
	}
	return g.Root, nil
}

// BaseBranch returns Base, or ErrNoBaseBranch when unset.
func (g *FakeGitRepo) BaseBranch(ctx context.Context, root, remote string) (string, error) {
	if g.Base == "" {
		return "", ErrNoBaseBranch
	}
	return g.Base, nil
}

// ListCommits returns a copy of Commits.
func (g *FakeGitRepo) ListCommits(ctx context.Context, root, onto string) ([]plan.CommitRecord, error) {
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	out := make([]plan.CommitRecord, len(g.Commits))
	for i, c := range g.Commits {
		c.Index = i
		out[i] = c
	}
	return out, nil
}

// BranchesAt inverts Branches.
func (g *FakeGitRepo) BranchesAt(ctx context.Context, root string) (map[string][]string, error) {
	out := make(map[string][]string)
	for name, h := range g.Branches {
		out[h] = append(out[h], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out, nil
}

// CurrentHead returns Head.
func (g *FakeGitRepo) CurrentHead(ctx context.Context, root string) (Head, error) {
	return g.Head, nil
}

// Checkout records the checkout and moves Head.
func (g *FakeGitRepo) Checkout(ctx context.Context, root string, head Head) error {
	key := head.Branch
	if head.Detached() {
		key = head.Hash
	}
	if err := g.CheckoutErr[key]; err != nil {
		return err
	}

	if !head.Detached() {
		head.Hash = g.Branches[head.Branch]
	}
	g.Head = head
	g.Checkouts = append(g.Checkouts, head)
	g.Calls = append(g.Calls, "checkout "+key)
	return nil
}

// SetBranch records the update and moves the branch.
func (g *FakeGitRepo) SetBranch(ctx context.Context, root, branch, hash string) error {
	if err := g.SetBranchErr[branch]; err != nil {
		return err
	}
	if g.Head.Branch == branch && g.Head.Hash != hash {
		return fmt.Errorf("%w: %s", ErrBranchCheckedOut, branch)
	}

	g.Branches[branch] = hash
	g.Calls = append(g.Calls, fmt.Sprintf("branch %s %s", branch, hash))
	return nil
}

// Push records the push.
func (g *FakeGitRepo) Push(ctx context.Context, root, remote, branch string, mode PushMode) error {
	if err := g.PushErr[branch]; err != nil {
		return err
	}

	g.Pushes = append(g.Pushes, PushCall{Remote: remote, Branch: branch, Mode: mode})
	g.Calls = append(g.Calls, fmt.Sprintf("push %s %s", remote, branch))
	return nil
}

// ConfigValue returns Config[key].
func (g *FakeGitRepo) ConfigValue(ctx context.Context, root, key string) (string, error) {
	return g.Config[key], nil
}
