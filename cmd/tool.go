package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Inspect or call the agent tools",
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the tool definitions in OpenAI function format",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a.toolRegistry().List())
	},
}

var toolCallCmd = &cobra.Command{
	Use:   "call NAME [ARGS_JSON]",
	Short: "Execute a tool, e.g. railctl tool call get_train_status '{\"mode\":\"routine_morning\"}'",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		argsJSON := ""
		if len(args) == 2 {
			argsJSON = args[1]
		}

		var result string
		withSpinner(fmt.Sprintf("Running %s...", args[0]), func() {
			result, err = a.toolRegistry().Execute(cmd.Context(), args[0], argsJSON)
		})
		if err != nil {
			return err
		}

		fmt.Println(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolCmd)
	toolCmd.AddCommand(toolListCmd)
	toolCmd.AddCommand(toolCallCmd)
}
