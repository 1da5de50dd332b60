// Package notes persists per-commit plan annotations so that a later
// invocation can pre-fill the plan with the branches and tests chosen before.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danieljhkim/stackplan/internal/gitx"
)

// DefaultRef is the notes ref annotations are stored under.
const DefaultRef = "refs/notes/stackplan"

// ErrCorrupt is returned when a note exists but does not decode.
var ErrCorrupt = errors.New("corrupt annotation note")

// Annotation is what the plan said about one commit.
type Annotation struct {
	Branch string   `json:"branch,omitempty"`
	Remote string   `json:"remote,omitempty"`
	Tests  []string `json:"tests,omitempty"`
}

// IsEmpty reports whether the annotation carries nothing worth storing.
func (a Annotation) IsEmpty() bool {
	return a.Branch == "" && len(a.Tests) == 0
}

// Store loads and saves annotations keyed by commit hash.
type Store interface {
	// Load returns the annotation for hash, or nil if there is none.
	Load(ctx context.Context, root, hash string) (*Annotation, error)

	// Save replaces the annotation for hash.
	Save(ctx context.Context, root, hash string, a Annotation) error

	// Delete removes the annotation for hash. Missing notes are not an error.
	Delete(ctx context.Context, root, hash string) error
}

// GitNotesStore keeps annotations as JSON in git notes.
type GitNotesStore struct {
	Ref string
}

// NewGitNotesStore creates a store under ref, or DefaultRef if ref is empty.
func NewGitNotesStore(ref string) *GitNotesStore {
	if ref == "" {
		ref = DefaultRef
	}
	return &GitNotesStore{Ref: ref}
}

func (s *GitNotesStore) refArg() string {
	return "--ref=" + s.Ref
}

// Load reads the note for hash. Only the last non-empty line is decoded,
// so notes appended to by other tools still load.
func (s *GitNotesStore) Load(ctx context.Context, root, hash string) (*Annotation, error) {
	out, err := gitx.Run(ctx, root, "notes", s.refArg(), "show", hash)
	if err != nil {
		var gitErr *gitx.GitError
		if errors.As(err, &gitErr) && gitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read note for %s: %w", hash, err)
	}

	return decode(out)
}

func decode(note string) (*Annotation, error) {
	lines := strings.Split(strings.TrimSpace(note), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return nil, nil
	}

	var a Annotation
	if err := json.Unmarshal([]byte(last), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if a.IsEmpty() {
		return nil, nil
	}
	return &a, nil
}

// Save overwrites the note for hash.
func (s *GitNotesStore) Save(ctx context.Context, root, hash string, a Annotation) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode annotation: %w", err)
	}

	if _, err := gitx.Run(ctx, root, "notes", s.refArg(), "add", "--force", "--message", string(data), hash); err != nil {
		return fmt.Errorf("failed to write note for %s: %w", hash, err)
	}
	return nil
}

// Delete removes the note for hash if present.
func (s *GitNotesStore) Delete(ctx context.Context, root, hash string) error {
	if _, err := gitx.Run(ctx, root, "notes", s.refArg(), "remove", "--ignore-missing", hash); err != nil {
		return fmt.Errorf("failed to remove note for %s: %w", hash, err)
	}
	return nil
}

// FakeStore is an in-memory Store for tests.
type FakeStore struct {
	mu    sync.Mutex
	Notes map[string]Annotation

	SaveCalls   []string
	DeleteCalls []string

	LoadErr error
	SaveErr error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{Notes: map[string]Annotation{}}
}

// Load returns a copy of the stored annotation.
func (s *FakeStore) Load(ctx context.Context, root, hash string) (*Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	a, ok := s.Notes[hash]
	if !ok {
		return nil, nil
	}
	a.Tests = append([]string(nil), a.Tests...)
	return &a, nil
}

// Save stores a.
func (s *FakeStore) Save(ctx context.Context, root, hash string, a Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Notes[hash] = a
	s.SaveCalls = append(s.SaveCalls, hash)
	return nil
}

// Delete drops the annotation for hash.
func (s *FakeStore) Delete(ctx context.Context, root, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Notes, hash)
	s.DeleteCalls = append(s.DeleteCalls, hash)
	return nil
}
