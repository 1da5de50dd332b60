// Package planner compiles a reconciled plan into an ordered list of
// branch operations.
//
// The planner is pure: it performs no git or process I/O. The sequence it
// produces is totally ordered and must be executed in order by the caller,
// which aborts on the first failing operation.
//
// Key responsibilities:
//   - Emit checkout and run_test operations per commit, in declared order
//   - Emit update_branch operations oldest commit first
//   - Defer every push_branch to a final phase, oldest branch first
//   - Resolve the default remote for targets that do not name one
package planner
