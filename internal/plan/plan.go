package plan

// CommitRecord is an immutable commit read from history.
type CommitRecord struct {
	// Hash is the 40 hex digit commit identifier (lowercase)
	Hash string

	// Title is the first line of the commit message
	Title string

	// Index is the position of the commit, oldest first
	Index int
}

// Target names the branch that must point at a commit.
type Target struct {
	// Remote is the remote to push to; empty means the default remote
	Remote string

	// Branch is the local and remote branch name
	Branch string
}

// String renders the target the way it appears after "->".
func (t Target) String() string {
	if t.Remote == "" {
		return t.Branch
	}
	return t.Remote + ":" + t.Branch
}

// TestCommand is a validation command run with a commit checked out.
type TestCommand struct {
	Command string
}

// Entry is one commit block of a plan.
type Entry struct {
	Commit CommitRecord
	Target *Target
	Tests  []TestCommand
}

// Annotated reports whether the entry carries a target or tests.
func (e Entry) Annotated() bool {
	return e.Target != nil || len(e.Tests) > 0
}

// Plan is an ordered list of commit blocks, oldest commit first.
type Plan struct {
	Entries []Entry
}

// New creates an unannotated plan for the given history.
func New(history []CommitRecord) *Plan {
	p := &Plan{Entries: make([]Entry, 0, len(history))}
	for i, c := range history {
		c.Index = i
		p.Entries = append(p.Entries, Entry{Commit: c})
	}
	return p
}

// Hashes returns the commit hashes in plan order.
func (p *Plan) Hashes() []string {
	hashes := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		hashes[i] = e.Commit.Hash
	}
	return hashes
}

// ShortHash abbreviates a commit hash for display.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
