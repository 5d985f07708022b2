// Package client provides a transport-agnostic interface for the shipdesk
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// ShipmentClient is the interface the sd CLI uses to talk to the shipdesk
// server. It is implemented by HTTPClient.
type ShipmentClient interface {
	// Shipment requests
	CreateShipment(ctx context.Context, req *CreateRequest) (*model.ShipmentRequest, error)
	GetShipment(ctx context.Context, id string) (*model.ShipmentRequest, error)
	ListShipments(ctx context.Context, req *ListRequest) (*ListResponse, error)
	UpdateShipment(ctx context.Context, id string, req *UpdateRequest) (*model.ShipmentRequest, error)
	DeleteShipment(ctx context.Context, id, actor string) error
	UndeleteShipment(ctx context.Context, id, actor string) (*model.ShipmentRequest, error)

	// Owners
	CreateOwner(ctx context.Context, name string) (*model.Owner, error)
	ListOwners(ctx context.Context) ([]*model.Owner, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateRequest holds the parameters for creating a shipment request.
type CreateRequest struct {
	Name              string       `json:"name"`
	Status            model.Status `json:"status,omitempty"`
	Destination       string       `json:"destination,omitempty"`
	EstimatedDelivery string       `json:"estimated_delivery,omitempty"` // YYYY-MM-DD
	OwnerID           string       `json:"owner_id,omitempty"`
	CreatedBy         string       `json:"created_by,omitempty"`
}

// ListRequest holds the parameters for listing shipment requests.
type ListRequest struct {
	Status         []model.Status
	Destination    string
	OwnerID        string
	Search         string
	Sort           string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ListFromFilter converts a stored filter into list parameters.
func ListFromFilter(f model.ShipmentFilter) *ListRequest {
	return &ListRequest{
		Status:         f.Status,
		Destination:    f.Destination,
		OwnerID:        f.OwnerID,
		Search:         f.Search,
		Sort:           f.Sort,
		IncludeDeleted: f.IncludeDeleted,
		Limit:          f.Limit,
		Offset:         f.Offset,
	}
}

// ListResponse holds the result of listing shipment requests.
type ListResponse struct {
	Shipments []*model.ShipmentRequest `json:"shipments"`
	Total     int                      `json:"total"`
}

// UpdateRequest holds the parameters for updating a shipment request. Only
// the fields present in Fields are changed; a non-nil OwnerID reassigns
// (empty string unassigns).
type UpdateRequest struct {
	Fields    model.FieldDelta `json:"fields,omitempty"`
	OwnerID   *string          `json:"owner_id,omitempty"`
	UpdatedBy string           `json:"updated_by,omitempty"`
}
