package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stackplan/internal/engine"
)

var (
	applyOnto   string
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Edit the plan and move local branches without testing or pushing",
	Long: `Open the plan in your editor and point each "-> branch" at its commit.

Test lines are kept in the plan but not run, and nothing is pushed.`,
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

		result, err := eng.Apply(cmd.Context(), &engine.ApplyRequest{
			CWD:    cwd,
			Onto:   applyOnto,
			DryRun: applyDryRun,
		})
		return reportRun(result, err, "Applied")
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyOnto, "onto", "", "Base revision (default: origin/HEAD, main or master)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show the operations without running them")
}
