package engine

import (
	"time"

	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/planner"
)

// ShowResult is the plan as it would be presented for editing.
type ShowResult struct {
	// Root is the repository root
	Root string `json:"root" yaml:"root"`

	// Onto is the resolved base revision
	Onto string `json:"onto" yaml:"onto"`

	// Plan is the pre-filled plan
	Plan *plan.Plan `json:"-" yaml:"-"`

	// Text is the rendered plan without the help block
	Text string `json:"text" yaml:"text"`

	// Edited is what the editor returned; it is never acted on
	Edited string `json:"-" yaml:"-"`
}

// ExecutedOperation is an operation that completed successfully.
type ExecutedOperation struct {
	planner.Operation `yaml:",inline"`

	Duration time.Duration `json:"duration_ns" yaml:"duration"`
}

// RunResult represents the outcome of Push, Apply, Test and PlanFromText.
type RunResult struct {
	// Root is the repository root
	Root string `json:"root" yaml:"root"`

	// Onto is the resolved base revision
	Onto string `json:"onto" yaml:"onto"`

	// Plan is the reconciled plan, with titles from the history
	Plan *plan.Plan `json:"-" yaml:"-"`

	// Operations is the compiled operation plan
	Operations *planner.OperationPlan `json:"operations" yaml:"operations"`

	// Executed are the operations that ran (empty if nothing was executed)
	Executed []ExecutedOperation `json:"executed" yaml:"executed"`

	// Restored reports whether the original HEAD was checked out again
	Restored bool `json:"restored" yaml:"restored"`

	// DryRun reports that nothing was executed
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}
