package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stackplan/internal/engine"
)

var (
	pushForce  bool
	pushNoPush bool
	pushOnto   string
	pushDryRun bool
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Edit the plan, run its tests, then move and push its branches",
	Long: `Open the plan for the commits between the base branch and HEAD in your editor.

After the editor exits, the plan is checked against the history. Then every
"$ command" runs with its commit checked out, every "-> branch" is moved to its
commit, and the branches are pushed oldest first. The first failure stops the
run; steps already done are not undone.

Pushes use --force-with-lease unless configured otherwise or --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngineFunc(cmd, engineOptions{interactive: true})
		if err != nil {
			return err
		}

		cwd, err := currentDir()
		if err != nil {
			return err
		}

		result, err := eng.Push(cmd.Context(), &engine.PushRequest{
			CWD:    cwd,
			Onto:   pushOnto,
			Force:  pushForce,
			NoPush: pushNoPush,
			DryRun: pushDryRun,
		})
		return reportRun(result, err, "Pushed")
	},
}

// reportRun prints or encodes the outcome of a run and passes err through.
func reportRun(result *engine.RunResult, err error, verb string) error {
	if err != nil {
		if result != nil && !structuredOutput() {
			printFailure(err)
		}
		return err
	}

	if ok, err := writeStructured(result); ok {
		return err
	}
	printRunResult(result, verb)
	return nil
}

func init() {
	pushCmd.Flags().BoolVarP(&pushForce, "force", "f", false, "Push with --force instead of --force-with-lease")
	pushCmd.Flags().BoolVar(&pushNoPush, "no-push", false, "Run tests and move branches without pushing")
	pushCmd.Flags().StringVar(&pushOnto, "onto", "", "Base revision (default: origin/HEAD, main or master)")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Show the operations without running them")
}
