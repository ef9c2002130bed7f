package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"railctl/pkg/tui"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive TUI",
	Long:  `Launch the Text User Interface to check your commute, any station pair, and edit settings interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.RunTUI(cmd.Context(), func(ctx context.Context) (tui.Session, error) {
			a, err := openApp(ctx)
			if err != nil {
				return tui.Session{}, err
			}
			return tui.Session{Resolver: a.resolver, Close: a.Close}, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
