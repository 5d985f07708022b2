package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printShipment(w io.Writer, r *model.ShipmentRequest) {
	fmt.Fprintf(w, "ID:          %s\n", r.ID)
	fmt.Fprintf(w, "Name:        %s\n", r.Name)
	fmt.Fprintf(w, "Status:      %s\n", ui.RenderStatus(r.Status))
	if r.Destination != "" {
		fmt.Fprintf(w, "Destination: %s\n", r.Destination)
	}
	if r.EstimatedDelivery != nil {
		fmt.Fprintf(w, "ETA:         %s\n", r.EstimatedDelivery.Format(model.DateLayout))
	}
	if r.Owner != nil {
		fmt.Fprintf(w, "Agent:       %s (%s)\n", r.Owner.Name, r.Owner.ID)
	}
	if r.CreatedBy != "" {
		fmt.Fprintf(w, "Created By:  %s\n", r.CreatedBy)
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created At:  %s\n", r.CreatedAt.Format(timeLayout))
	}
	if !r.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated At:  %s\n", r.UpdatedAt.Format(timeLayout))
	}
	if r.DeletedAt != nil {
		fmt.Fprintf(w, "Deleted At:  %s\n", ui.RenderError(r.DeletedAt.Format(timeLayout)))
	}
}

func printShipmentList(w io.Writer, shipments []*model.ShipmentRequest, total int) {
	rows := make([]model.Row, len(shipments))
	for i, s := range shipments {
		rows[i] = model.Enrich(s)
	}
	printRows(w, rows, append([]string{"id"}, model.FieldName, model.FieldStatus,
		model.FieldDestination, model.FieldEstimatedDelivery, model.FieldAssignedAgent))
	fmt.Fprintf(w, "\n%d shipment requests (%d total)\n", len(shipments), total)
}

// printRows renders rows as an aligned table of the given columns.
func printRows(w io.Writer, rows []model.Row, columns []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			v := r.Field(c)
			if c == model.FieldName && len(v) > 50 {
				v = v[:47] + "..."
			}
			if c == model.FieldStatus {
				v = ui.RenderStatus(r.Status)
			}
			cells[i] = v
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func printOwners(w io.Writer, owners []*model.Owner) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, o := range owners {
		fmt.Fprintf(tw, "%s\t%s\n", o.ID, o.Name)
	}
	tw.Flush()
}
