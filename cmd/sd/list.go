package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/shipdesk/internal/client"
	"github.com/alfredjeanlab/shipdesk/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List shipment requests",
	GroupID: "requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")
		destination, _ := cmd.Flags().GetString("destination")
		owner, _ := cmd.Flags().GetString("owner")
		search, _ := cmd.Flags().GetString("search")
		sort, _ := cmd.Flags().GetString("sort")
		includeDeleted, _ := cmd.Flags().GetBool("include-deleted")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		statuses, err := parseStatuses(status)
		if err != nil {
			return err
		}

		resp, err := apiClient.ListShipments(cmd.Context(), &client.ListRequest{
			Status:         statuses,
			Destination:    destination,
			OwnerID:        owner,
			Search:         search,
			Sort:           sort,
			IncludeDeleted: includeDeleted,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			return fmt.Errorf("listing shipment requests: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printShipmentList(cmd.OutOrStdout(), resp.Shipments, resp.Total)
		return nil
	},
}

func parseStatuses(in []string) ([]model.Status, error) {
	out := make([]model.Status, 0, len(in))
	for _, s := range in {
		st := model.Status(s)
		if !st.IsValid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		out = append(out, st)
	}
	return out, nil
}

func init() {
	listCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	listCmd.Flags().String("destination", "", "filter by destination")
	listCmd.Flags().String("owner", "", "filter by owner id")
	listCmd.Flags().String("search", "", "substring match on name or destination")
	listCmd.Flags().String("sort", "", `sort field, "-" prefix for descending (e.g. -updated_at)`)
	listCmd.Flags().Bool("include-deleted", false, "include deleted requests")
	listCmd.Flags().Int("limit", 20, "maximum number of requests to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
