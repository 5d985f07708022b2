package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete one or more shipment requests",
	GroupID: "requests",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := apiClient.DeleteShipment(cmd.Context(), id, actor); err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
		return nil
	},
}

var undeleteCmd = &cobra.Command{
	Use:     "undelete <id>...",
	Short:   "Restore deleted shipment requests",
	GroupID: "requests",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if _, err := apiClient.UndeleteShipment(cmd.Context(), id, actor); err != nil {
				return fmt.Errorf("restoring %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", id)
		}
		return nil
	},
}
