package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitscope/pkg/ident"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [id]",
		Short: "Browse the object graph interactively",
		Long: `Browse the object graph one node at a time, starting at the given
identifier (HEAD by default). Select an edge and press enter to follow it;
press backspace or left to go back.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeIdentifiers,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ident.Head()
			if len(args) == 1 {
				id, err := parseIdentifier(args[0])
				if err != nil {
					return err
				}
				start = id
			}

			engine, closeFn, err := c.openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			p := tea.NewProgram(NewExploreModel(ctx, engine, start), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}
