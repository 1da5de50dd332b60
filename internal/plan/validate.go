package plan

import "fmt"

// Validate checks p and returns it unchanged, or returns the first
// *ValidationError found. Checks run in order: commit hashes, branch
// uniqueness, then branch, remote and command syntax.
func Validate(p *Plan) (*Plan, error) {
	seen := make(map[string]int, len(p.Entries))
	for i, e := range p.Entries {
		if !IsHash(e.Commit.Hash) {
			return nil, &ValidationError{
				Kind:    KindMalformedHash,
				Subject: e.Commit.Hash,
				Reason:  fmt.Sprintf("commit %d is not %d hexadecimal digits", i+1, HashLength),
			}
		}
		if prev, ok := seen[e.Commit.Hash]; ok {
			return nil, &ValidationError{
				Kind:    KindDuplicateCommit,
				Subject: e.Commit.Hash,
				Reason:  fmt.Sprintf("listed at positions %d and %d", prev+1, i+1),
			}
		}
		seen[e.Commit.Hash] = i
	}

	owners := make(map[string]string)
	for _, e := range p.Entries {
		if e.Target == nil {
			continue
		}
		if owner, ok := owners[e.Target.Branch]; ok {
			return nil, &ValidationError{
				Kind:    KindDuplicateBranch,
				Subject: e.Target.Branch,
				Reason:  fmt.Sprintf("assigned to both %s and %s", ShortHash(owner), ShortHash(e.Commit.Hash)),
			}
		}
		owners[e.Target.Branch] = e.Commit.Hash
	}

	for _, e := range p.Entries {
		if e.Target != nil {
			if !ValidBranchName(e.Target.Branch) {
				return nil, &ValidationError{
					Kind:    KindInvalidBranch,
					Subject: e.Target.Branch,
					Reason:  "not a valid branch name for commit " + ShortHash(e.Commit.Hash),
				}
			}
			if e.Target.Remote != "" && !ValidRemoteName(e.Target.Remote) {
				return nil, &ValidationError{
					Kind:    KindInvalidRemote,
					Subject: e.Target.Remote,
					Reason:  "remote names are alphanumeric",
				}
			}
		}
		for _, t := range e.Tests {
			if t.Command == "" {
				return nil, &ValidationError{
					Kind:    KindEmptyCommand,
					Subject: e.Commit.Hash,
					Reason:  "test command is empty",
				}
			}
		}
	}

	return p, nil
}
