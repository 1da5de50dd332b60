package engine

// ShowRequest represents a request to display the pre-filled plan.
type ShowRequest struct {
	// CWD is the current working directory
	CWD string

	// Onto overrides the base revision
	Onto string
}

// PushRequest represents a request to edit the plan, run its tests, move
// branches and push them.
type PushRequest struct {
	// CWD is the current working directory
	CWD string

	// Onto overrides the base revision
	Onto string

	// Force pushes with --force instead of the configured mode
	Force bool

	// NoPush moves local branches without pushing them
	NoPush bool

	// DryRun compiles operations without executing them or saving annotations
	DryRun bool
}

// ApplyRequest represents a request to move local branches only.
type ApplyRequest struct {
	// CWD is the current working directory
	CWD string

	// Onto overrides the base revision
	Onto string

	// DryRun compiles operations without executing them
	DryRun bool
}

// TestRequest represents a request to run only the plan's test commands.
type TestRequest struct {
	// CWD is the current working directory
	CWD string

	// Onto overrides the base revision
	Onto string

	// DryRun compiles operations without executing them
	DryRun bool
}

// PlanRequest represents a request to process plan text without an editor.
type PlanRequest struct {
	// CWD is the current working directory
	CWD string

	// Onto overrides the base revision
	Onto string

	// Text is the complete plan
	Text string

	// Execute runs the compiled operations; otherwise they are only returned
	Execute bool

	// NoPush skips push operations when executing
	NoPush bool

	// Force pushes with --force instead of the configured mode
	Force bool
}
