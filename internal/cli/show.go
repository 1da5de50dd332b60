package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stackplan/internal/engine"
)

var (
	showOnto   string
	showNoEdit bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current plan without changing anything",
	Long: `Render the plan for the commits between the base branch and HEAD, pre-filled
with remembered targets and tests and with local branches that point into the
stack. The plan opens in your editor for viewing; edits are discarded.

With --no-edit, or with --json/--output, the plan is printed instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive := !showNoEdit && !structuredOutput()
		eng, err := newEngineFunc(cmd, engineOptions{interactive: interactive})
		if err != nil {
			return err
		}

		cwd, err := currentDir()
		if err != nil {
			return err
		}

		result, err := eng.Show(cmd.Context(), &engine.ShowRequest{CWD: cwd, Onto: showOnto})
		if err != nil {
			return err
		}

		if ok, err := writeStructured(result); ok {
			return err
		}
		if !interactive {
			_, err = stdout.Write([]byte(result.Text))
			return err
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showOnto, "onto", "", "Base revision (default: origin/HEAD, main or master)")
	showCmd.Flags().BoolVar(&showNoEdit, "no-edit", false, "Print the plan instead of opening the editor")
}
