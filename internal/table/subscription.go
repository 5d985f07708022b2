package table

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alfredjeanlab/shipdesk/internal/diag"
	"github.com/alfredjeanlab/shipdesk/internal/events"
)

// ErrAlreadySubscribed is returned by Subscribe when the manager already
// holds, or is acquiring or releasing, a subscription.
var ErrAlreadySubscribed = errors.New("subscription already active")

// Transport is the streaming side of the change stream.
type Transport interface {
	Subscribe(ctx context.Context, channel string, replayFrom int64, onMessage func([]byte)) (events.Handle, error)
	Unsubscribe(ctx context.Context, h events.Handle) error
	OnError(fn func(error))
}

// State is the lifecycle state of a SubscriptionManager.
type State int32

const (
	Unsubscribed State = iota
	Subscribing
	Subscribed
	Unsubscribing
)

func (s State) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	case Unsubscribing:
		return "unsubscribing"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// SubscriptionManager owns at most one live subscription on a Transport.
// Raw messages are handed to the onMessage callback given at construction.
type SubscriptionManager struct {
	transport Transport
	onMessage func([]byte)
	diag      diag.Sink

	// op serializes Subscribe and Unsubscribe; mu guards state and handle.
	op     sync.Mutex
	mu     sync.Mutex
	state  State
	handle events.Handle

	listenOnce sync.Once
}

// NewSubscriptionManager creates a manager in the Unsubscribed state.
func NewSubscriptionManager(t Transport, onMessage func([]byte), sink diag.Sink) *SubscriptionManager {
	if sink == nil {
		sink = diag.Discard
	}
	return &SubscriptionManager{transport: t, onMessage: onMessage, diag: sink}
}

// State returns the current lifecycle state.
func (m *SubscriptionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Handle returns the live handle; it is zero unless the state is Subscribed.
func (m *SubscriptionManager) Handle() events.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

func (m *SubscriptionManager) setState(s State, h events.Handle) {
	m.mu.Lock()
	m.state = s
	m.handle = h
	m.mu.Unlock()
}

// Subscribe opens a subscription on channel. A transport failure leaves the
// manager Unsubscribed, records a SubscriptionFailure and is not retried.
func (m *SubscriptionManager) Subscribe(ctx context.Context, channel string, replayFrom int64) (events.Handle, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if st := m.State(); st != Unsubscribed {
		return events.Handle{}, fmt.Errorf("subscribe %s (%s): %w", channel, st, ErrAlreadySubscribed)
	}
	m.listenOnce.Do(func() {
		m.transport.OnError(func(err error) {
			m.diag.Record(context.Background(), diag.StreamError, err)
		})
	})

	m.setState(Subscribing, events.Handle{})
	h, err := m.transport.Subscribe(ctx, channel, replayFrom, m.deliver)
	if err != nil {
		m.setState(Unsubscribed, events.Handle{})
		err = fmt.Errorf("subscribe %s: %w", channel, err)
		m.diag.Record(ctx, diag.SubscriptionFailure, err, "channel", channel)
		return events.Handle{}, err
	}
	m.setState(Subscribed, h)
	return h, nil
}

// Unsubscribe releases the live subscription. It is a no-op when nothing is
// subscribed. The manager ends Unsubscribed whether or not the transport
// call succeeds; a failure is only recorded.
func (m *SubscriptionManager) Unsubscribe(ctx context.Context) {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.Lock()
	if m.state == Unsubscribed {
		m.mu.Unlock()
		return
	}
	h := m.handle
	m.state = Unsubscribing
	m.handle = events.Handle{}
	m.mu.Unlock()

	if err := m.transport.Unsubscribe(ctx, h); err != nil {
		m.diag.Record(ctx, diag.SubscriptionFailure, fmt.Errorf("unsubscribe %s: %w", h.Channel, err),
			"channel", h.Channel, "handle", h.ID)
	}
	m.setState(Unsubscribed, events.Handle{})
}

func (m *SubscriptionManager) deliver(raw []byte) {
	if m.onMessage != nil {
		m.onMessage(raw)
	}
}
