package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stackplan/internal/engine"
)

var (
	testOnto   string
	testDryRun bool
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Edit the plan and run its test commands only",
	Long: `Open the plan in your editor and run every "$ command" with its commit
checked out. Branches are neither moved nor pushed. HEAD is restored when all
commands pass and left at the failing commit otherwise.`,
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

		result, err := eng.Test(cmd.Context(), &engine.TestRequest{
			CWD:    cwd,
			Onto:   testOnto,
			DryRun: testDryRun,
		})
		return reportRun(result, err, "Tested")
	},
}

func init() {
	testCmd.Flags().StringVar(&testOnto, "onto", "", "Base revision (default: origin/HEAD, main or master)")
	testCmd.Flags().BoolVar(&testDryRun, "dry-run", false, "Show the operations without running them")
}
