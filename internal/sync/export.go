package sync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	ShipmentCount int       `json:"shipment_count"`
	OwnerCount    int       `json:"owner_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Snapshot describes one export of the store.
type Snapshot struct {
	Data []byte

	// Digest is the hex SHA-256 of every line after the header. Two exports
	// of unchanged data share a digest even though their timestamps differ.
	Digest string

	Owners           int
	ShipmentRequests int
	Deleted          int
}

// Summary returns a one-line description, e.g. for commit messages.
func (s Snapshot) Summary() string {
	return fmt.Sprintf("%d shipment requests (%d deleted), %d owners", s.ShipmentRequests, s.Deleted, s.Owners)
}

// Export renders the store into a Snapshot.
func Export(ctx context.Context, s store.Store) (Snapshot, error) {
	var buf bytes.Buffer
	snap, err := ExportJSONL(ctx, s, &buf)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Data = buf.Bytes()
	return snap, nil
}

// ExportJSONL writes every owner and shipment request, soft-deleted ones
// included, from the store as JSONL to w. Owners come first so a loader can
// resolve owner_id references in one pass. Both are sorted by ID. The
// returned Snapshot carries counts and digest but no Data.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) (Snapshot, error) {
	owners, err := s.ListOwners(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list owners: %w", err)
	}
	sort.Slice(owners, func(i, j int) bool {
		return owners[i].ID < owners[j].ID
	})

	requests, _, err := s.ListShipmentRequests(ctx, model.ShipmentFilter{IncludeDeleted: true, Sort: "created_at"})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list shipment requests: %w", err)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].ID < requests[j].ID
	})

	snap := Snapshot{Owners: len(owners), ShipmentRequests: len(requests)}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	for _, o := range owners {
		if err := enc.Encode(record{Type: "owner", Data: o}); err != nil {
			return Snapshot{}, fmt.Errorf("encode owner %s: %w", o.ID, err)
		}
	}
	for _, r := range requests {
		if r.DeletedAt != nil {
			snap.Deleted++
		}
		// The owner is exported on its own line.
		clone := *r
		clone.Owner = nil
		if err := enc.Encode(record{Type: model.ObjectType, Data: &clone}); err != nil {
			return Snapshot{}, fmt.Errorf("encode shipment request %s: %w", r.ID, err)
		}
	}
	sum := sha256.Sum256(body.Bytes())
	snap.Digest = hex.EncodeToString(sum[:])

	hdr := json.NewEncoder(w)
	hdr.SetEscapeHTML(false)
	if err := hdr.Encode(header{
		Version:       "1",
		Type:          "header",
		Timestamp:     time.Now().UTC(),
		ShipmentCount: snap.ShipmentRequests,
		OwnerCount:    snap.Owners,
	}); err != nil {
		return Snapshot{}, fmt.Errorf("encode header: %w", err)
	}
	if _, err := body.WriteTo(w); err != nil {
		return Snapshot{}, fmt.Errorf("write records: %w", err)
	}
	return snap, nil
}
