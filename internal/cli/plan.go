package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/stackplan/internal/engine"
)

var (
	planOnto    string
	planExecute bool
	planNoPush  bool
	planForce   bool
)

var planCmd = &cobra.Command{
	Use:   "plan [file]",
	Short: "Compile plan text from a file or stdin without an editor",
	Long: `Read a complete plan from [file], or from stdin when [file] is omitted or "-",
check it against the history and print the operations it compiles to.

With --execute the operations are run exactly as "push" would run them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readPlanText(cmd, args)
		if err != nil {
			return err
		}

		eng, err := newEngineFunc(cmd, engineOptions{})
		if err != nil {
			return err
		}

		cwd, err := currentDir()
		if err != nil {
			return err
		}

		result, err := eng.PlanFromText(cmd.Context(), &engine.PlanRequest{
			CWD:     cwd,
			Onto:    planOnto,
			Text:    text,
			Execute: planExecute,
			NoPush:  planNoPush,
			Force:   planForce,
		})
		return reportRun(result, err, "Executed")
	},
}

func readPlanText(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read plan: %w", err)
	}
	return string(data), nil
}

func init() {
	planCmd.Flags().StringVar(&planOnto, "onto", "", "Base revision (default: origin/HEAD, main or master)")
	planCmd.Flags().BoolVar(&planExecute, "execute", false, "Run the compiled operations")
	planCmd.Flags().BoolVar(&planNoPush, "no-push", false, "With --execute, skip pushes")
	planCmd.Flags().BoolVarP(&planForce, "force", "f", false, "With --execute, push with --force")
}
