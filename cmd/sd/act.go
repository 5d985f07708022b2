package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/shipdesk/internal/diag"
	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/nav"
	"github.com/alfredjeanlab/shipdesk/internal/table"
)

// logSyncer stands in for a table when actions run outside one.
type logSyncer struct{ logger *slog.Logger }

func (s logSyncer) EditCommitted(res table.EditResult) {
	s.logger.Debug("edit committed", "attempted", res.Attempted, "failed", res.Failed)
}

func newDispatcher(cmd *cobra.Command) *table.Dispatcher {
	return table.NewDispatcher(apiClient, logSyncer{logger}, nav.NewLinkNavigator(httpURL, cmd.OutOrStdout()),
		diag.NewSlogSink(logger))
}

var actCmd = &cobra.Command{
	Use:     "act <view|edit> <id>",
	Short:   "Run a row action on a shipment request",
	GroupID: "views",
	Long: `Run a row action and print the page it lands on.

Viewing a request that is Assigned to Agent moves it to In Review first.
Every action ends on the request's edit page.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, id := args[0], args[1]
		r, err := apiClient.GetShipment(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("getting %s: %w", id, err)
		}
		newDispatcher(cmd).HandleRowAction(cmd.Context(), action, model.Enrich(r))
		return nil
	},
}
