package store

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// ListQuery is a table query served directly from a Store, for views that
// run next to the database instead of through the HTTP API.
type ListQuery struct {
	Store  Store
	Filter model.ShipmentFilter
}

// Fetch lists the shipment requests matching q.Filter.
func (q ListQuery) Fetch(ctx context.Context) ([]*model.ShipmentRequest, error) {
	rs, _, err := q.Store.ListShipmentRequests(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("list shipment requests: %w", err)
	}
	return rs, nil
}
