package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	snap, err := ExportJSONL(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"; snap.Digest != want {
		t.Errorf("empty export digest = %s, want %s", snap.Digest, want)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.ShipmentCount != 0 || h.OwnerCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_WithShipmentsAndOwners(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()

	ms.owners["ow-1"] = &model.Owner{ID: "ow-1", Name: "Dana"}
	// Add requests out of ID order to verify sorting.
	ms.requests["sr-zzz"] = &model.ShipmentRequest{ID: "sr-zzz", Name: "Second", Status: model.StatusSubmitted, CreatedAt: now, UpdatedAt: now}
	ms.requests["sr-aaa"] = &model.ShipmentRequest{ID: "sr-aaa", Name: "First", Status: model.StatusAssignedToAgent, OwnerID: "ow-1", CreatedAt: now, UpdatedAt: now}
	ms.requests["sr-mmm"] = &model.ShipmentRequest{ID: "sr-mmm", Name: "Gone", Status: model.StatusCancelled, CreatedAt: now, UpdatedAt: now, DeletedAt: &now}

	var buf bytes.Buffer
	snap, err := ExportJSONL(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ShipmentRequests != 3 || snap.Deleted != 1 || snap.Owners != 1 {
		t.Errorf("got %s, want 3 requests, 1 deleted, 1 owner", snap.Summary())
	}

	lines := nonEmptyLines(buf.String())
	// 1 header + 1 owner + 3 requests
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.ShipmentCount != 3 || h.OwnerCount != 1 {
		t.Fatalf("header counts: shipment=%d owner=%d", h.ShipmentCount, h.OwnerCount)
	}

	var ownerRec struct {
		Type string      `json:"type"`
		Data model.Owner `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &ownerRec); err != nil {
		t.Fatalf("unmarshal owner: %v", err)
	}
	if ownerRec.Type != "owner" || ownerRec.Data.Name != "Dana" {
		t.Fatalf("got owner line %+v", ownerRec)
	}

	var ids []string
	for i, line := range lines[2:] {
		var rec struct {
			Type string                `json:"type"`
			Data model.ShipmentRequest `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+2, err)
		}
		if rec.Type != "shipment_request" {
			t.Fatalf("expected shipment_request type, got %q", rec.Type)
		}
		if rec.Data.Owner != nil {
			t.Fatalf("owner should not be embedded in %s", rec.Data.ID)
		}
		ids = append(ids, rec.Data.ID)
	}
	if strings.Join(ids, ",") != "sr-aaa,sr-mmm,sr-zzz" {
		t.Fatalf("requests not sorted or deleted one missing: %v", ids)
	}
	if !strings.Contains(lines[2], `"owner_id":"ow-1"`) {
		t.Fatalf("expected owner_id reference, got %s", lines[2])
	}
}

func TestExportJSONL_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.listErr = errors.New("db gone")
	_, err := ExportJSONL(context.Background(), ms, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "list shipment requests") {
		t.Fatalf("got %v", err)
	}
}

func TestExport_DigestIgnoresTimestamp(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()
	ms.requests["sr-1"] = &model.ShipmentRequest{ID: "sr-1", Name: "R1", Status: model.StatusSubmitted, CreatedAt: now, UpdatedAt: now}

	first, err := Export(context.Background(), ms)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := Export(context.Background(), ms)
	if err != nil {
		t.Fatal(err)
	}
	if first.Digest != second.Digest {
		t.Error("digest changed for unchanged data")
	}
	if len(first.Data) == 0 {
		t.Fatal("Export returned no data")
	}

	ms.requests["sr-1"].Status = model.StatusApproved
	third, err := Export(context.Background(), ms)
	if err != nil {
		t.Fatal(err)
	}
	if third.Digest == first.Digest {
		t.Error("digest unchanged after an edit")
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
