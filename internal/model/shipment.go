package model

import "time"

// Status is a shipment request's lifecycle label. The set is fixed by the
// shipping desk workflow; labels are stored and displayed verbatim.
type Status string

const (
	StatusSubmitted       Status = "Submitted"
	StatusAssignedToAgent Status = "Assigned to Agent"
	StatusInReview        Status = "In Review"
	StatusApproved        Status = "Approved"
	StatusInTransit       Status = "In Transit"
	StatusDelivered       Status = "Delivered"
	StatusCancelled       Status = "Cancelled"
)

// Statuses lists every lifecycle label in workflow order.
var Statuses = []Status{
	StatusSubmitted,
	StatusAssignedToAgent,
	StatusInReview,
	StatusApproved,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusAssignedToAgent, StatusInReview, StatusApproved,
		StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ObjectType is the entity name used in navigation targets and change events.
const ObjectType = "shipment_request"

// Owner is the agent a shipment request is assigned to.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShipmentRequest is the raw record as stored and served by the backend.
type ShipmentRequest struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Status            Status     `json:"status"`
	Destination       string     `json:"destination,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	OwnerID           string     `json:"owner_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CreatedBy         string     `json:"created_by,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`

	// Owner is populated by queries from the owners table; nil when the
	// request is unassigned.
	Owner *Owner `json:"owner,omitempty"`
}
