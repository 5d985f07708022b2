package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// ErrNotFound is returned when a record does not exist, or is soft-deleted
// and the operation does not consider deleted records.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for shipment requests.
type Store interface {
	// Shipment requests
	CreateShipmentRequest(ctx context.Context, r *model.ShipmentRequest) error
	GetShipmentRequest(ctx context.Context, id string) (*model.ShipmentRequest, error)
	ListShipmentRequests(ctx context.Context, filter model.ShipmentFilter) ([]*model.ShipmentRequest, int, error) // returns requests, total count, error
	UpdateShipmentRequest(ctx context.Context, r *model.ShipmentRequest) error
	DeleteShipmentRequest(ctx context.Context, id string) error
	UndeleteShipmentRequest(ctx context.Context, id string) (*model.ShipmentRequest, error)

	// Owners
	CreateOwner(ctx context.Context, o *model.Owner) error
	GetOwner(ctx context.Context, id string) (*model.Owner, error)
	ListOwners(ctx context.Context) ([]*model.Owner, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
