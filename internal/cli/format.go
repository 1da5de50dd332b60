package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/danieljhkim/stackplan/internal/engine"
	"github.com/danieljhkim/stackplan/internal/plan"
	"github.com/danieljhkim/stackplan/internal/planner"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)

	// Writers for user-facing output; commands point them at cmd.OutOrStdout/ErrOrStderr
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func setOutput(out, errOut io.Writer) {
	stdout = out
	stderr = errOut
}

// PrintSection prints a section header
func PrintSection(title string) {
	_, _ = fmt.Fprintln(stdout)
	_, _ = headerColor.Fprintf(stdout, "▸ %s\n", title)
	_, _ = fmt.Fprintln(stdout)
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	_, _ = successColor.Fprintf(stdout, "✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	_, _ = warningColor.Fprintf(stdout, "⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(stderr, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	_, _ = fmt.Fprintln(stdout, msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(label, value string) {
	_, _ = labelColor.Fprintf(stdout, "  %s: ", label)
	_, _ = valueColor.Fprintln(stdout, value)
}

// PrintNumberedList prints a numbered list
func PrintNumberedList(items []string, indent int) {
	indentStr := strings.Repeat("  ", indent)
	for i, item := range items {
		_, _ = infoColor.Fprintf(stdout, "%s%d. %s\n", indentStr, i+1, item)
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(msg string) {
	_, _ = dimColor.Fprintf(stdout, "  %s\n", msg)
}

// PrintCount formats a count with the singular or plural noun
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// describeOperation renders an operation for the numbered list.
func describeOperation(op planner.Operation) string {
	switch op.Type {
	case planner.OpCheckout:
		return fmt.Sprintf("checkout  %s", plan.ShortHash(op.Commit))
	case planner.OpRunTest:
		return fmt.Sprintf("test      %s  $ %s", plan.ShortHash(op.Commit), op.Command)
	case planner.OpUpdateBranch:
		return fmt.Sprintf("branch    %s -> %s", op.Branch, plan.ShortHash(op.Commit))
	case planner.OpPushBranch:
		return fmt.Sprintf("push      %s to %s", op.Branch, op.Remote)
	default:
		return op.String()
	}
}

// printOperations prints a compiled operation plan.
func printOperations(ops *planner.OperationPlan) {
	if ops.IsEmpty() {
		PrintEmptyState("Nothing to do: no commit has a target or a test.")
		return
	}
	items := make([]string, 0, len(ops.Operations))
	for _, op := range ops.Operations {
		items = append(items, describeOperation(op))
	}
	PrintNumberedList(items, 1)
}

// printRunResult prints the outcome of a successful run.
func printRunResult(result *engine.RunResult, verb string) {
	if result.DryRun {
		PrintSection("Dry Run")
		PrintInfo(fmt.Sprintf("Would run %s:", PrintCount(len(result.Operations.Operations), "operation", "operations")))
		printOperations(result.Operations)
		return
	}

	if len(result.Executed) == 0 {
		PrintEmptyState("Nothing to do: no commit has a target or a test.")
		return
	}

	var total time.Duration
	for _, op := range result.Executed {
		total += op.Duration
	}
	PrintSuccess(fmt.Sprintf("%s: %s in %s", verb, PrintCount(len(result.Executed), "operation", "operations"), total.Round(time.Millisecond)))

	pushes := result.Operations.Count(planner.OpPushBranch)
	updates := result.Operations.Count(planner.OpUpdateBranch)
	tests := result.Operations.Count(planner.OpRunTest)
	if tests > 0 {
		PrintLabelValue("Tests", PrintCount(tests, "command passed", "commands passed"))
	}
	if updates > 0 {
		PrintLabelValue("Branches", PrintCount(updates, "branch updated", "branches updated"))
	}
	if pushes > 0 {
		PrintLabelValue("Pushed", PrintCount(pushes, "branch", "branches"))
	}
	if result.Restored {
		PrintLabelValue("HEAD", "restored")
	}
}

// printFailure explains a failed run: what completed and what broke.
func printFailure(err error) {
	var failure *engine.OperationFailure
	if !errors.As(err, &failure) {
		return
	}

	PrintSection("Stopped")
	if len(failure.Completed) > 0 {
		PrintInfo("Completed (not rolled back):")
		items := make([]string, 0, len(failure.Completed))
		for _, op := range failure.Completed {
			items = append(items, describeOperation(op.Operation))
		}
		PrintNumberedList(items, 1)
	}
	PrintWarning(fmt.Sprintf("Failed at step %d: %s", failure.Index+1, describeOperation(failure.Op)))
}
