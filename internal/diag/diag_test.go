package diag

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogSink_Record(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	sink.Record(context.Background(), FetchFailure, errors.New("boom"), "query", "all")

	out := buf.String()
	for _, want := range []string{"level=WARN", "kind=fetch_failure", "err=boom", "query=all"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	r.Record(ctx, DecodeFailure, errors.New("bad"))
	r.Record(ctx, PersistenceFailure, errors.New("denied"), "id", "sr-1")
	r.Record(ctx, PersistenceFailure, errors.New("denied"), "id", "sr-2")

	if got := r.Count(PersistenceFailure); got != 2 {
		t.Errorf("Count(PersistenceFailure) = %d, want 2", got)
	}
	if got := r.Count(StreamError); got != 0 {
		t.Errorf("Count(StreamError) = %d, want 0", got)
	}
	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(entries))
	}
	if entries[0].Kind != DecodeFailure {
		t.Errorf("entries[0].Kind = %q", entries[0].Kind)
	}
}

func TestTee(t *testing.T) {
	var a, b Recorder
	Tee{&a, &b}.Record(context.Background(), StreamError, nil)
	if a.Count(StreamError) != 1 || b.Count(StreamError) != 1 {
		t.Error("expected both sinks to receive the entry")
	}
}

func TestSinkFunc(t *testing.T) {
	var got Kind
	sink := SinkFunc(func(_ context.Context, kind Kind, _ error, _ ...any) { got = kind })
	sink.Record(context.Background(), FetchFailure, errors.New("boom"))
	if got != FetchFailure {
		t.Errorf("got %q, want %q", got, FetchFailure)
	}
}
