// Package plan implements the editable plan language.
//
// A plan is a line-oriented text listing commits oldest first. Each commit
// line may be followed by one target line naming the branch that should
// point at it, and by any number of test lines naming commands to run with
// that commit checked out:
//
//	0123456789abcdef0123456789abcdef01234567 Add feature X
//	-> origin:feature-x
//	$ go test ./...
//
//	89abcdef0123456789abcdef0123456789abcdef Fix bug Y
//
// Key responsibilities:
//   - Parse plan text into a Plan, failing with a single line-addressed ParseError
//   - Render a Plan back into text (Render is the left inverse of Parse)
//   - Validate structural and naming invariants of a Plan
package plan
