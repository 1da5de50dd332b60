package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/stackplan/internal/notes"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/reconcile"
)

// loadAnnotations builds the pre-filled plan for s.history. A stored note
// wins; otherwise a local branch at the commit becomes its target. The base
// branch is never offered, and the checked-out branch only at HEAD.
func (e *Engine) loadAnnotations(ctx context.Context, s *session) (*plan.Plan, map[string]bool, error) {
	p := plan.New(s.history)
	noted := make(map[string]bool)
	used := make(map[string]bool)

	if e.notes != nil {
		for i := range p.Entries {
			entry := &p.Entries[i]
			a, err := e.notes.Load(ctx, s.root, entry.Commit.Hash)
			if errors.Is(err, notes.ErrCorrupt) {
				e.logger.Warn("ignoring unreadable annotation", "commit", entry.Commit.Hash, "error", err)
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load annotations: %w", err)
			}
			if a == nil {
				continue
			}
			noted[entry.Commit.Hash] = true
			e.applyAnnotation(s, entry, *a, used)
		}
	}

	branches, err := e.gitRepo.BranchesAt(ctx, s.root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list branches: %w", err)
	}
	for i := range p.Entries {
		entry := &p.Entries[i]
		if entry.Target != nil {
			continue
		}
		for _, name := range branches[entry.Commit.Hash] {
			if used[name] || !plan.ValidBranchName(name) || isBaseBranch(name, s.onto) || name == s.head.Branch {
				continue
			}
			entry.Target = &plan.Target{Branch: name}
			used[name] = true
			break
		}
	}

	return p, noted, nil
}

// applyAnnotation copies the parts of a that would survive a parse and
// reconcile. The base branch is never offered, and the checked-out branch
// only at the commit HEAD is on.
func (e *Engine) applyAnnotation(s *session, entry *plan.Entry, a notes.Annotation, used map[string]bool) {
	offered := !isBaseBranch(a.Branch, s.onto) &&
		(a.Branch != s.head.Branch || entry.Commit.Hash == s.head.Hash)
	if a.Branch != "" && plan.ValidBranchName(a.Branch) && !used[a.Branch] && offered &&
		(a.Remote == "" || plan.ValidRemoteName(a.Remote)) {
		entry.Target = &plan.Target{Remote: a.Remote, Branch: a.Branch}
		used[a.Branch] = true
	} else if a.Branch != "" {
		e.logger.Warn("dropping stored branch", "commit", entry.Commit.Hash, "branch", a.Branch, "remote", a.Remote)
	}

	for _, cmd := range a.Tests {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" || strings.ContainsAny(cmd, "\r\n") {
			continue
		}
		entry.Tests = append(entry.Tests, plan.TestCommand{Command: cmd})
	}
}

func isBaseBranch(name, onto string) bool {
	return name == onto || strings.HasSuffix(onto, "/"+name)
}

// saveAnnotations records r in the notes store: annotated commits are
// written and previously noted commits that lost their annotation are cleared.
func (e *Engine) saveAnnotations(ctx context.Context, s *session, r *reconcile.Result) error {
	if e.notes == nil {
		return nil
	}

	for _, a := range r.Assignments {
		hash := a.Commit.Hash
		if a.Target == nil && len(a.Tests) == 0 {
			if s.noted[hash] {
				if err := e.notes.Delete(ctx, s.root, hash); err != nil {
					return fmt.Errorf("failed to clear annotation: %w", err)
				}
			}
			continue
		}

		note := notes.Annotation{}
		if a.Target != nil {
			note.Branch = a.Target.Branch
			note.Remote = a.Target.Remote
		}
		for _, t := range a.Tests {
			note.Tests = append(note.Tests, t.Command)
		}
		if err := e.notes.Save(ctx, s.root, hash, note); err != nil {
			return fmt.Errorf("failed to save annotation: %w", err)
		}
	}

	e.logger.Debug("saved annotations", "commits", len(r.Assignments))
	return nil
}
