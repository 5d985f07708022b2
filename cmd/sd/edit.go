package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:     "edit <id> field=value... [<id> field=value...]",
	Short:   "Save inline edits to one or more shipment requests",
	GroupID: "views",
	Long: `Save edits to several requests at once. All saves run concurrently and
the command reports how many succeeded. Editable fields: name, status,
destination, estimated_delivery.

  sd edit sr-a1b2 status="In Review" sr-c3d4 estimated_delivery=2026-11-02`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		edits, err := parseEditArgs(args)
		if err != nil {
			return err
		}
		staged := edits.Len()
		res := newDispatcher(cmd).CommitEdits(cmd.Context(), edits)

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), map[string]int{
				"staged":    staged,
				"attempted": res.Attempted,
				"failed":    res.Failed,
			}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d\n", staged-res.Failed, staged)
		}
		if res.Failed > 0 {
			return fmt.Errorf("%d of %d edits failed", res.Failed, staged)
		}
		return nil
	},
}
