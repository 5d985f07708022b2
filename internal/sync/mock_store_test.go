package sync

import (
	"context"

	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// mockStore is a minimal in-memory store.Store for export tests. Only the
// read paths ExportJSONL uses do real work.
type mockStore struct {
	requests map[string]*model.ShipmentRequest
	owners   map[string]*model.Owner

	listErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		requests: make(map[string]*model.ShipmentRequest),
		owners:   make(map[string]*model.Owner),
	}
}

func (m *mockStore) CreateShipmentRequest(_ context.Context, r *model.ShipmentRequest) error {
	m.requests[r.ID] = r
	return nil
}

func (m *mockStore) GetShipmentRequest(_ context.Context, id string) (*model.ShipmentRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (m *mockStore) ListShipmentRequests(_ context.Context, filter model.ShipmentFilter) ([]*model.ShipmentRequest, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var result []*model.ShipmentRequest
	for _, r := range m.requests {
		if r.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		clone := *r
		clone.Owner = m.owners[r.OwnerID]
		result = append(result, &clone)
	}
	return result, len(result), nil
}

func (m *mockStore) UpdateShipmentRequest(_ context.Context, r *model.ShipmentRequest) error {
	m.requests[r.ID] = r
	return nil
}

func (m *mockStore) DeleteShipmentRequest(_ context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

func (m *mockStore) UndeleteShipmentRequest(_ context.Context, id string) (*model.ShipmentRequest, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) CreateOwner(_ context.Context, o *model.Owner) error {
	m.owners[o.ID] = o
	return nil
}

func (m *mockStore) GetOwner(_ context.Context, id string) (*model.Owner, error) {
	o, ok := m.owners[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return o, nil
}

func (m *mockStore) ListOwners(_ context.Context) ([]*model.Owner, error) {
	var result []*model.Owner
	for _, o := range m.owners {
		result = append(result, o)
	}
	return result, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
