package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show details of a shipment request",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := apiClient.GetShipment(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		printShipment(cmd.OutOrStdout(), r)
		return nil
	},
}
