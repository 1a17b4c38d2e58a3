package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

var (
	listQuery queryFlags
	listView  string
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the services matching the filters",
	Example: `  eoltracker list --vendor aws --proximity 90days
  eoltracker list -q lambda --view cards --lang ja
  eoltracker list --json | jq '.rows[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, ok := view.ParseMode(listView)
		if !ok {
			return fmt.Errorf("invalid --view %q (want cards or table)", listView)
		}

		f, err := listQuery.frame(cmd.Context(), mode)
		out := cmd.OutOrStdout()

		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(f); encErr != nil {
				return encErr
			}
			return err
		}

		if err != nil {
			fmt.Fprintln(os.Stderr, f.Message)
			return err
		}
		fmt.Fprint(out, renderFrame(f))
		return nil
	},
}

func init() {
	listQuery.register(listCmd)
	listCmd.Flags().StringVar(&listView, "view", string(view.ModeTable), "table or cards")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the frame as JSON")
}
