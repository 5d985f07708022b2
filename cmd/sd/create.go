package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/shipdesk/internal/client"
	"github.com/alfredjeanlab/shipdesk/internal/model"
)

var createCmd = &cobra.Command{
	Use:     "create <name>",
	Short:   "Create a new shipment request",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		destination, _ := cmd.Flags().GetString("destination")
		eta, _ := cmd.Flags().GetString("eta")
		owner, _ := cmd.Flags().GetString("owner")

		r, err := apiClient.CreateShipment(cmd.Context(), &client.CreateRequest{
			Name:              args[0],
			Status:            model.Status(status),
			Destination:       destination,
			EstimatedDelivery: eta,
			OwnerID:           owner,
			CreatedBy:         actor,
		})
		if err != nil {
			return fmt.Errorf("creating shipment request: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		printShipment(cmd.OutOrStdout(), r)
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("status", "s", string(model.StatusSubmitted), "initial status")
	createCmd.Flags().StringP("destination", "d", "", "destination")
	createCmd.Flags().String("eta", "", "estimated delivery date (YYYY-MM-DD)")
	createCmd.Flags().String("owner", "", "owner id to assign")
}
