package events

import (
	"context"
	"sort"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// ChannelShipmentRequestChanges is the change stream for the shipment
// request entity. Every create, update, delete and undelete is published here.
const ChannelShipmentRequestChanges = "shipdesk.shipment_request.changes"

// Replay positions accepted by Transport.Subscribe.
const (
	// ReplayNew delivers only events published after the subscription is live.
	ReplayNew int64 = -1
	// ReplayAll asks for every retained event. The NATS transport does not
	// retain events and rejects it.
	ReplayAll int64 = -2
)

// ChangeEvent is the wire envelope published on a change channel.
type ChangeEvent struct {
	Channel  string            `json:"channel"`
	ReplayID int64             `json:"replay_id"`
	Header   *ChangeHeader     `json:"header"`
	Fields   map[string]string `json:"fields,omitempty"` // new values of ChangedFields
}

// ChangeHeader identifies what changed.
type ChangeHeader struct {
	Entity        string           `json:"entity"`
	RecordIDs     []string         `json:"record_ids"`
	ChangeType    model.ChangeKind `json:"change_type"`
	ChangedFields []string         `json:"changed_fields,omitempty"`
	CommitTime    time.Time        `json:"commit_time"`
	CommitUser    string           `json:"commit_user,omitempty"`
}

// NewChangeEvent builds the envelope for a change to the given records.
// ChangedFields is sorted.
func NewChangeEvent(kind model.ChangeKind, actor string, fields model.FieldDelta, ids ...string) ChangeEvent {
	ev := ChangeEvent{
		Channel: ChannelShipmentRequestChanges,
		Header: &ChangeHeader{
			Entity:     model.ObjectType,
			RecordIDs:  ids,
			ChangeType: kind,
			CommitTime: time.Now().UTC(),
			CommitUser: actor,
		},
	}
	if len(fields) > 0 {
		ev.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			ev.Header.ChangedFields = append(ev.Header.ChangedFields, k)
			ev.Fields[k] = v
		}
		sort.Strings(ev.Header.ChangedFields)
	}
	return ev
}

// Handle identifies a live subscription. The zero value means "not subscribed".
type Handle struct {
	ID         string `json:"id"`
	Channel    string `json:"channel"`
	ReplayFrom int64  `json:"replay_from"`
}

// IsZero reports whether h refers to no subscription.
func (h Handle) IsZero() bool {
	return h.ID == ""
}

// Publisher is the interface for emitting change events.
type Publisher interface {
	Publish(ctx context.Context, channel string, event any) error
	Close() error
}

// NoopPublisher drops every event. The server falls back to it when NATS is
// not configured; SSE subscribers are fed independently.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
