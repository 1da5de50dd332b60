package plan

import (
	"fmt"
	"strings"
)

// HelpText is appended to the rendered plan before it is handed to an editor.
const HelpText = `# Commands:
# -> <branch>           make <branch> point at the commit above
# -> <remote>:<branch>  same, pushing to <remote> instead of the default remote
# $ <command>           run <command> with the commit above checked out
#
# Lines starting with '#' are ignored. A blank line ends a commit block.
#
# This is not a rebase: commits cannot be edited, dropped or reordered.
# Branches are pushed oldest first, after every test has passed.
`

// Render renders p in the plan grammar, oldest commit first. Annotated
// blocks are followed by a blank line.
func Render(p *Plan) string {
	var b strings.Builder
	for _, e := range p.Entries {
		fmt.Fprintf(&b, "%s %s\n", e.Commit.Hash, e.Commit.Title)
		if e.Target != nil {
			fmt.Fprintf(&b, "%s %s\n", targetPrefix, e.Target)
		}
		for _, t := range e.Tests {
			fmt.Fprintf(&b, "%s %s\n", testPrefix, t.Command)
		}
		if e.Annotated() {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderWithHelp renders p followed by HelpText.
func RenderWithHelp(p *Plan) string {
	return Render(p) + "\n" + HelpText
}
