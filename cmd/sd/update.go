package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/shipdesk/internal/client"
	"github.com/alfredjeanlab/shipdesk/internal/model"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a shipment request",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateRequest{Fields: model.FieldDelta{}, UpdatedBy: actor}

		for flag, field := range map[string]string{
			"name":        model.FieldName,
			"status":      model.FieldStatus,
			"destination": model.FieldDestination,
			"eta":         model.FieldEstimatedDelivery,
		} {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				req.Fields[field] = v
			}
		}
		if cmd.Flags().Changed("owner") {
			v, _ := cmd.Flags().GetString("owner")
			req.OwnerID = &v
		}
		if len(req.Fields) == 0 && req.OwnerID == nil {
			return fmt.Errorf("nothing to update")
		}
		if err := model.ValidateDelta(req.Fields); err != nil {
			return err
		}

		r, err := apiClient.UpdateShipment(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating %s: %w", args[0], err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		printShipment(cmd.OutOrStdout(), r)
		return nil
	},
}

func init() {
	updateCmd.Flags().String("name", "", "request name")
	updateCmd.Flags().StringP("status", "s", "", "status")
	updateCmd.Flags().StringP("destination", "d", "", "destination")
	updateCmd.Flags().String("eta", "", `estimated delivery date (YYYY-MM-DD, "" clears)`)
	updateCmd.Flags().String("owner", "", `owner id ("" unassigns)`)
}
