package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ownerCmd = &cobra.Command{
	Use:     "owner",
	Short:   "Manage the agents requests can be assigned to",
	GroupID: "requests",
}

var ownerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List owners",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owners, err := apiClient.ListOwners(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing owners: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), owners)
		}
		printOwners(cmd.OutOrStdout(), owners)
		return nil
	},
}

var ownerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := apiClient.CreateOwner(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("adding owner: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), o)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", o.Name, o.ID)
		return nil
	},
}

func init() {
	ownerCmd.AddCommand(ownerListCmd, ownerAddCmd)
}
