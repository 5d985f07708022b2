package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/shipdesk/internal/idgen"
)

var (
	// ErrReplayUnsupported is returned for replay positions other than ReplayNew.
	ErrReplayUnsupported = errors.New("replay position not supported")
	// ErrUnknownHandle is returned when unsubscribing a handle this transport
	// did not issue or already released.
	ErrUnknownHandle = errors.New("unknown subscription handle")
)

// NATSPublisher publishes change events to NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, channel string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return p.conn.Publish(channel, data)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSTransport is the streaming transport the table view subscribes
// through. Each Subscribe call creates one NATS subscription identified by
// an opaque Handle.
type NATSTransport struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs map[string]*nats.Subscription

	errMu       sync.RWMutex
	errHandlers []func(error)
}

// NewNATSTransport connects to NATS with automatic reconnection support.
// Asynchronous connection and subscription errors are delivered to the
// handlers registered with OnError. Extra nats.Option values are appended
// after the defaults.
func NewNATSTransport(url string, opts ...nats.Option) (*NATSTransport, error) {
	t := &NATSTransport{subs: make(map[string]*nats.Subscription)}
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				err = fmt.Errorf("subscription %s: %w", sub.Subject, err)
			}
			t.emitError(err)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				t.emitError(fmt.Errorf("disconnected: %w", err))
			}
		}),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	t.conn = nc
	return t, nil
}

// Subscribe starts delivering raw payloads published on channel to
// onMessage. Only ReplayNew is supported. onMessage runs on the NATS
// delivery goroutine, one message at a time.
func (t *NATSTransport) Subscribe(ctx context.Context, channel string, replayFrom int64, onMessage func([]byte)) (Handle, error) {
	if replayFrom != ReplayNew {
		return Handle{}, fmt.Errorf("%w: %d", ErrReplayUnsupported, replayFrom)
	}
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	id, err := idgen.New(idgen.Subscription)
	if err != nil {
		return Handle{}, err
	}

	sub, err := t.conn.Subscribe(channel, func(msg *nats.Msg) {
		onMessage(msg.Data)
	})
	if err != nil {
		return Handle{}, fmt.Errorf("subscribing to %s: %w", channel, err)
	}
	// Flush ensures the subscription is registered on the server before
	// returning, so that messages published on other connections are routed.
	if err := t.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return Handle{}, fmt.Errorf("flushing subscription: %w", err)
	}

	t.mu.Lock()
	t.subs[id] = sub
	t.mu.Unlock()

	return Handle{ID: id, Channel: channel, ReplayFrom: replayFrom}, nil
}

// Unsubscribe releases the subscription behind h.
func (t *NATSTransport) Unsubscribe(_ context.Context, h Handle) error {
	t.mu.Lock()
	sub, ok := t.subs[h.ID]
	delete(t.subs, h.ID)
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHandle, h.ID)
	}
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", h.Channel, err)
	}
	return nil
}

// OnError registers a handler for asynchronous transport errors.
func (t *NATSTransport) OnError(fn func(error)) {
	t.errMu.Lock()
	t.errHandlers = append(t.errHandlers, fn)
	t.errMu.Unlock()
}

func (t *NATSTransport) emitError(err error) {
	t.errMu.RLock()
	handlers := t.errHandlers
	t.errMu.RUnlock()
	for _, fn := range handlers {
		fn(err)
	}
}

// Connected reports whether the underlying connection is up.
func (t *NATSTransport) Connected() bool {
	return t.conn.IsConnected()
}

func (t *NATSTransport) Close() error {
	t.conn.Close()
	return nil
}
