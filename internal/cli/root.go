package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput   bool
	outputFormat string
	verbose      bool
	configFile   string

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// rootCmd is the root command for stackplan.
var rootCmd = &cobra.Command{
	Use:     "stackplan",
	Version: "dev",
	Short:   "Turn a stack of commits into pushable branches",
	Long: `stackplan turns the commits between your base branch and HEAD into a plan you
edit in your editor. Mark a commit with "-> branch" to point a branch at it, and
with "$ command" to test it. stackplan then runs the tests, moves the branches
and pushes them, oldest first.

History is never rewritten: commits cannot be dropped, reordered or edited.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		switch outputFormat {
		case formatText, formatJSON, formatYAML:
			return nil
		default:
			return fmt.Errorf("invalid --output %q (want text, json or yaml)", outputFormat)
		}
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Additional Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

func init() {
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (same as --output json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics at DEBUG level to stderr")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default is ~/.stackplan/config.yaml)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "stack",
		Title: "Stack Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspection",
		Title: "Inspection:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the stackplan CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _, err := rootCmd.Find(args)
			if err != nil {
				return err
			}
			return target.Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	// Stack commands
	pushCmd.GroupID = "stack"
	applyCmd.GroupID = "stack"
	testCmd.GroupID = "stack"
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(testCmd)

	// Inspection commands
	showCmd.GroupID = "inspection"
	planCmd.GroupID = "inspection"
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(planCmd)

	rootCmd.SetCompletionCommandGroupID("cli-tooling")
	rootCmd.InitDefaultCompletionCmd()
}

// ExecuteContext executes the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
