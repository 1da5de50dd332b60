package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax matches every ParseError.
	ErrSyntax = errors.New("plan syntax error")

	// ErrInvalid matches every ValidationError.
	ErrInvalid = errors.New("invalid plan")
)

// ParseError reports the first line of plan text that does not fit the grammar.
type ParseError struct {
	// Line is the 1-based line number
	Line int

	// Column is the 1-based column (in characters) of the offending input
	Column int

	// Expected describes what the grammar allows at this position
	Expected string

	// Found describes what was actually there
	Found string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: expected %s, found %s", e.Line, e.Column, e.Expected, e.Found)
}

// Is makes errors.Is(err, ErrSyntax) true for parse errors.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}

// ValidationError kinds
const (
	KindMalformedHash   = "malformed_hash"
	KindDuplicateCommit = "duplicate_commit"
	KindDuplicateBranch = "duplicate_branch"
	KindInvalidBranch   = "invalid_branch"
	KindInvalidRemote   = "invalid_remote"
	KindEmptyCommand    = "empty_command"
)

// ValidationError reports a plan that parses but breaks a plan invariant.
type ValidationError struct {
	// Kind is one of the Kind* constants
	Kind string

	// Subject is the offending commit hash, branch or remote name
	Subject string

	// Reason is a human-readable explanation
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid plan: %s %q: %s", e.Kind, e.Subject, e.Reason)
}

// Is makes errors.Is(err, ErrInvalid) true for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}
