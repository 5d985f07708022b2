package client

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// DefaultPageSize is the page size ShipmentQuery requests when the filter
// sets no limit.
const DefaultPageSize = 500

// ShipmentQuery fetches the full record set for a view over the HTTP API.
// When Filter.Limit is zero it pages through every matching record;
// otherwise it returns a single page of at most Filter.Limit records.
type ShipmentQuery struct {
	Client ShipmentClient
	Filter model.ShipmentFilter
}

// Fetch returns the records matching the query, in server order.
func (q *ShipmentQuery) Fetch(ctx context.Context) ([]*model.ShipmentRequest, error) {
	req := ListFromFilter(q.Filter)
	if q.Filter.Limit > 0 {
		resp, err := q.Client.ListShipments(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("list shipments: %w", err)
		}
		return resp.Shipments, nil
	}

	req.Limit = DefaultPageSize
	var all []*model.ShipmentRequest
	for {
		resp, err := q.Client.ListShipments(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("list shipments (offset %d): %w", req.Offset, err)
		}
		all = append(all, resp.Shipments...)
		if len(resp.Shipments) < req.Limit || len(all) >= resp.Total {
			return all, nil
		}
		req.Offset += len(resp.Shipments)
	}
}
