package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// pagedClient serves ListShipments from an in-memory slice.
type pagedClient struct {
	ShipmentClient
	records []*model.ShipmentRequest
	err     error
	calls   []ListRequest
}

func (p *pagedClient) ListShipments(_ context.Context, req *ListRequest) (*ListResponse, error) {
	p.calls = append(p.calls, *req)
	if p.err != nil {
		return nil, p.err
	}
	end := len(p.records)
	if req.Limit > 0 && req.Offset+req.Limit < end {
		end = req.Offset + req.Limit
	}
	var page []*model.ShipmentRequest
	if req.Offset < len(p.records) {
		page = p.records[req.Offset:end]
	}
	return &ListResponse{Shipments: page, Total: len(p.records)}, nil
}

func makeRecords(n int) []*model.ShipmentRequest {
	out := make([]*model.ShipmentRequest, n)
	for i := range out {
		out[i] = &model.ShipmentRequest{ID: fmt.Sprintf("sr-%04d", i), Name: "r", Status: model.StatusSubmitted}
	}
	return out
}

func TestShipmentQuery_PagesThroughEverything(t *testing.T) {
	pc := &pagedClient{records: makeRecords(DefaultPageSize*2 + 7)}
	q := &ShipmentQuery{Client: pc, Filter: model.ShipmentFilter{Status: []model.Status{model.StatusSubmitted}}}

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != len(pc.records) {
		t.Fatalf("got %d records, want %d", len(got), len(pc.records))
	}
	if len(pc.calls) != 3 {
		t.Fatalf("got %d list calls, want 3", len(pc.calls))
	}
	if pc.calls[2].Offset != DefaultPageSize*2 {
		t.Fatalf("third page offset = %d", pc.calls[2].Offset)
	}
	if len(pc.calls[0].Status) != 1 {
		t.Fatalf("filter not forwarded: %+v", pc.calls[0])
	}
	if got[len(got)-1].ID != pc.records[len(pc.records)-1].ID {
		t.Fatal("records out of order")
	}
}

func TestShipmentQuery_ExactPageBoundary(t *testing.T) {
	pc := &pagedClient{records: makeRecords(DefaultPageSize)}
	q := &ShipmentQuery{Client: pc}

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != DefaultPageSize || len(pc.calls) != 1 {
		t.Fatalf("got %d records in %d calls", len(got), len(pc.calls))
	}
}

func TestShipmentQuery_ExplicitLimit(t *testing.T) {
	pc := &pagedClient{records: makeRecords(50)}
	q := &ShipmentQuery{Client: pc, Filter: model.ShipmentFilter{Limit: 20}}

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 20 || len(pc.calls) != 1 {
		t.Fatalf("got %d records in %d calls, want 20 in 1", len(got), len(pc.calls))
	}
}

func TestShipmentQuery_Error(t *testing.T) {
	boom := errors.New("boom")
	q := &ShipmentQuery{Client: &pagedClient{err: boom}}

	_, err := q.Fetch(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped boom", err)
	}
	if !strings.HasPrefix(err.Error(), "list shipments") {
		t.Fatalf("got %q", err.Error())
	}
}
