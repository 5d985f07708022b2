package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// mockDestination records calls to Write.
type mockDestination struct {
	writes atomic.Int64
	last   atomic.Value // Snapshot
	fail   atomic.Bool
}

func (d *mockDestination) Name() string { return "mock" }

func (d *mockDestination) Write(_ context.Context, snap Snapshot) error {
	d.writes.Add(1)
	if d.fail.Load() {
		return errors.New("unreachable")
	}
	d.last.Store(snap)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func seededStore() *mockStore {
	ms := newMockStore()
	now := time.Now().UTC()
	ms.requests["sr-1"] = &model.ShipmentRequest{ID: "sr-1", Name: "R1", Status: model.StatusSubmitted, CreatedAt: now, UpdatedAt: now}
	ms.owners["ow-1"] = &model.Owner{ID: "ow-1", Name: "Dana"}
	return ms
}

func TestSchedulerStartStop(t *testing.T) {
	dest := &mockDestination{}
	sched := NewScheduler(seededStore(), []Destination{dest}, 20*time.Millisecond, testLogger())
	sched.Start()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	// The data never changes, so only the initial export is written.
	if writes := dest.writes.Load(); writes != 1 {
		t.Fatalf("got %d writes, want 1", writes)
	}
	snap, ok := dest.last.Load().(Snapshot)
	if !ok {
		t.Fatal("no snapshot written")
	}
	// 1 header + 1 owner + 1 request
	if lines := nonEmptyLines(string(snap.Data)); len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(newMockStore(), nil, time.Minute, testLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSyncOnce_SkipsUnchanged(t *testing.T) {
	ms := seededStore()
	dest := &mockDestination{}
	sched := NewScheduler(ms, []Destination{dest}, time.Minute, testLogger())
	ctx := context.Background()

	sched.SyncOnce(ctx)
	sched.SyncOnce(ctx)
	if got := dest.writes.Load(); got != 1 {
		t.Fatalf("got %d writes after two identical exports, want 1", got)
	}

	ms.requests["sr-1"].Status = model.StatusInReview
	sched.SyncOnce(ctx)
	if got := dest.writes.Load(); got != 2 {
		t.Fatalf("got %d writes after an edit, want 2", got)
	}
}

func TestSyncOnce_RetriesFailedDestination(t *testing.T) {
	ok, bad := &mockDestination{}, &mockDestination{}
	bad.fail.Store(true)
	sched := NewScheduler(seededStore(), []Destination{ok, bad}, time.Minute, testLogger())
	ctx := context.Background()

	sched.SyncOnce(ctx)
	bad.fail.Store(false)
	sched.SyncOnce(ctx)

	if got := ok.writes.Load(); got != 1 {
		t.Errorf("healthy destination: got %d writes, want 1", got)
	}
	if got := bad.writes.Load(); got != 2 {
		t.Errorf("failing destination: got %d writes, want 2", got)
	}
}

func TestSyncOnce_ExportError(t *testing.T) {
	ms := newMockStore()
	ms.listErr = errors.New("db gone")
	dest := &mockDestination{}
	NewScheduler(ms, []Destination{dest}, time.Minute, testLogger()).SyncOnce(context.Background())
	if got := dest.writes.Load(); got != 0 {
		t.Fatalf("got %d writes, want 0", got)
	}
}
