package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alfredjeanlab/shipdesk/internal/events"
	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// Server serves the shipment request API and publishes a change event for
// every successful mutation.
type Server struct {
	store     store.Store
	publisher events.Publisher
	feed      *changeFeed
	logger    *slog.Logger
}

// NewServer returns a new Server backed by the given store and publisher.
func NewServer(s store.Store, p events.Publisher) *Server {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	return &Server{
		store:     s,
		publisher: p,
		feed:      newChangeFeed(),
		logger:    slog.Default(),
	}
}

// WithLogger replaces the server's logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

// publishChange fans a change event out to NATS and to SSE clients. The
// replay id is shared by both so a consumer can correlate them. Failures are
// logged and never fail the mutation that caused them.
func (s *Server) publishChange(ctx context.Context, kind model.ChangeKind, actor string, fields model.FieldDelta, ids ...string) {
	ev := events.NewChangeEvent(kind, actor, fields, ids...)
	ev.ReplayID = int64(s.feed.nextID())

	if err := s.publisher.Publish(ctx, ev.Channel, ev); err != nil {
		s.logger.Warn("failed to publish change", "channel", ev.Channel, "ids", ids, "error", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("failed to marshal change for SSE", "channel", ev.Channel, "error", err)
		return
	}
	s.feed.deliver(uint64(ev.ReplayID), ev.Channel, payload)
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
