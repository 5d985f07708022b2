// Package diag is the structured diagnostics sink used by the table sync
// core. Every non-fatal failure in the core is recorded here instead of
// being returned, so hosts can route it to slog and tests can assert on it.
package diag

import (
	"context"
	"log/slog"
	"sync"
)

// Kind classifies a recorded diagnostic.
type Kind string

const (
	// DecodeFailure: a change-stream payload could not be decoded; the
	// message was dropped.
	DecodeFailure Kind = "decode_failure"
	// FetchFailure: a bulk fetch or refresh failed; the previous rows were kept.
	FetchFailure Kind = "fetch_failure"
	// PersistenceFailure: an edit or status transition was rejected.
	PersistenceFailure Kind = "persistence_failure"
	// SubscriptionFailure: subscribe or unsubscribe failed at the transport.
	SubscriptionFailure Kind = "subscription_failure"
	// StreamError: the transport reported an asynchronous streaming error.
	StreamError Kind = "stream_error"
	// DuplicateRow: a fetch returned the same id twice; the later row was dropped.
	DuplicateRow Kind = "duplicate_row"
)

// Sink receives diagnostics.
type Sink interface {
	Record(ctx context.Context, kind Kind, err error, attrs ...any)
}

// SlogSink writes diagnostics to a slog.Logger at warn level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink backed by logger (slog.Default() when nil).
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Record(ctx context.Context, kind Kind, err error, attrs ...any) {
	args := make([]any, 0, len(attrs)+4)
	args = append(args, "kind", string(kind))
	if err != nil {
		args = append(args, "err", err)
	}
	args = append(args, attrs...)
	s.logger.WarnContext(ctx, "table: "+string(kind), args...)
}

// Entry is one recorded diagnostic.
type Entry struct {
	Kind  Kind
	Err   error
	Attrs []any
}

// Recorder keeps diagnostics in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Record(_ context.Context, kind Kind, err error, attrs ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Kind: kind, Err: err, Attrs: attrs})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns the number of entries of the given kind.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Tee fans a diagnostic out to several sinks.
type Tee []Sink

func (t Tee) Record(ctx context.Context, kind Kind, err error, attrs ...any) {
	for _, s := range t {
		s.Record(ctx, kind, err, attrs...)
	}
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, kind Kind, err error, attrs ...any)

func (f SinkFunc) Record(ctx context.Context, kind Kind, err error, attrs ...any) {
	f(ctx, kind, err, attrs...)
}

type discard struct{}

func (discard) Record(context.Context, Kind, error, ...any) {}

// Discard drops every diagnostic.
var Discard Sink = discard{}
