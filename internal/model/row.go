package model

import "time"

// Column names accepted by Row.Field and by FieldDelta keys.
const (
	FieldName              = "name"
	FieldStatus            = "status"
	FieldDestination       = "destination"
	FieldEstimatedDelivery = "estimated_delivery"
	FieldAssignedAgent     = "assigned_agent"
	FieldRecordLink        = "record_link"
)

// Columns lists the table columns in display order.
var Columns = []string{
	FieldName,
	FieldStatus,
	FieldDestination,
	FieldEstimatedDelivery,
	FieldAssignedAgent,
	FieldRecordLink,
}

// IsColumn reports whether name is a displayable column.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return name == "id"
}

// DateLayout is the display and input format for estimated delivery dates.
const DateLayout = "2006-01-02"

// Row is a shipment request as displayed in the table. AssignedAgent and
// RecordLink are derived at enrichment time and never written back.
type Row struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Status            Status     `json:"status"`
	Destination       string     `json:"destination,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	AssignedAgent     string     `json:"assigned_agent,omitempty"`
	RecordLink        string     `json:"record_link"`
}

// Enrich builds a display Row from a raw record. A missing owner yields an
// empty AssignedAgent.
func Enrich(r *ShipmentRequest) Row {
	row := Row{
		ID:                r.ID,
		Name:              r.Name,
		Status:            r.Status,
		Destination:       r.Destination,
		EstimatedDelivery: r.EstimatedDelivery,
		RecordLink:        RecordLink(r.ID),
	}
	if r.Owner != nil {
		row.AssignedAgent = r.Owner.Name
	}
	return row
}

// RecordLink returns the navigation path for a record id.
func RecordLink(id string) string {
	return "/" + id
}

// Field returns the display value of the named column, or "" for unknown
// columns.
func (r Row) Field(name string) string {
	switch name {
	case "id":
		return r.ID
	case FieldName:
		return r.Name
	case FieldStatus:
		return string(r.Status)
	case FieldDestination:
		return r.Destination
	case FieldEstimatedDelivery:
		if r.EstimatedDelivery == nil {
			return ""
		}
		return r.EstimatedDelivery.Format(DateLayout)
	case FieldAssignedAgent:
		return r.AssignedAgent
	case FieldRecordLink:
		return r.RecordLink
	}
	return ""
}
