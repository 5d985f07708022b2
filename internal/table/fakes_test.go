package table

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/events"
	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// fakeQuery returns a configurable record set. When gate is non-nil each
// Fetch blocks until the test sends on it.
type fakeQuery struct {
	mu      sync.Mutex
	records []*model.ShipmentRequest
	err     error
	calls   int
	gate    chan struct{}
}

func (q *fakeQuery) Fetch(ctx context.Context) ([]*model.ShipmentRequest, error) {
	q.mu.Lock()
	q.calls++
	recs := append([]*model.ShipmentRequest(nil), q.records...)
	err := q.err
	gate := q.gate
	q.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return recs, err
}

func (q *fakeQuery) set(records []*model.ShipmentRequest, err error) {
	q.mu.Lock()
	q.records = records
	q.err = err
	q.mu.Unlock()
}

func (q *fakeQuery) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

type fakeTransport struct {
	mu           sync.Mutex
	subErr       error
	unsubErr     error
	onMessage    func([]byte)
	errFns       []func(error)
	subscribes   int
	unsubscribes int
	last         events.Handle

	// duringUnsub runs at the start of Unsubscribe, outside the lock.
	duringUnsub func()
}

func (f *fakeTransport) Subscribe(_ context.Context, channel string, replayFrom int64, onMessage func([]byte)) (events.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	if f.subErr != nil {
		return events.Handle{}, f.subErr
	}
	f.onMessage = onMessage
	f.last = events.Handle{ID: "sub-test", Channel: channel, ReplayFrom: replayFrom}
	return f.last, nil
}

func (f *fakeTransport) Unsubscribe(_ context.Context, _ events.Handle) error {
	if f.duringUnsub != nil {
		f.duringUnsub()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribes++
	f.onMessage = nil
	return f.unsubErr
}

func (f *fakeTransport) OnError(fn func(error)) {
	f.mu.Lock()
	f.errFns = append(f.errFns, fn)
	f.mu.Unlock()
}

func (f *fakeTransport) deliver(raw []byte) {
	f.mu.Lock()
	fn := f.onMessage
	f.mu.Unlock()
	if fn != nil {
		fn(raw)
	}
}

func (f *fakeTransport) fail(err error) {
	f.mu.Lock()
	fns := append([]func(error){}, f.errFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (f *fakeTransport) counts() (subs, unsubs, listeners int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes, f.unsubscribes, len(f.errFns)
}

func record(id, name string, status model.Status, owner string) *model.ShipmentRequest {
	r := &model.ShipmentRequest{ID: id, Name: name, Status: status}
	if owner != "" {
		r.OwnerID = "ow-" + owner
		r.Owner = &model.Owner{ID: r.OwnerID, Name: owner}
	}
	return r
}

func changePayload(t *testing.T, kind model.ChangeKind, ids ...string) []byte {
	t.Helper()
	b, err := json.Marshal(events.NewChangeEvent(kind, "tester", nil, ids...))
	if err != nil {
		t.Fatalf("marshal change event: %v", err)
	}
	return b
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
