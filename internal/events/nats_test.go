package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNATSTransport_ReceivesMessages(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	tr, err := NewNATSTransport(url)
	if err != nil {
		t.Fatalf("creating transport: %v", err)
	}
	defer tr.Close()

	got := make(chan []byte, 1)
	h, err := tr.Subscribe(context.Background(), ChannelShipmentRequestChanges, ReplayNew, func(b []byte) {
		got <- b
	})
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	if h.IsZero() || h.Channel != ChannelShipmentRequestChanges || h.ReplayFrom != ReplayNew {
		t.Fatalf("unexpected handle: %+v", h)
	}

	if err := pub.conn.Publish(ChannelShipmentRequestChanges, []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-got:
		if string(msg) != `{"id":"1"}` {
			t.Errorf("got %q, want %q", msg, `{"id":"1"}`)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSTransport_Unsubscribe(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	tr, err := NewNATSTransport(url)
	if err != nil {
		t.Fatalf("creating transport: %v", err)
	}
	defer tr.Close()

	var (
		mu    sync.Mutex
		count int
	)
	h, err := tr.Subscribe(context.Background(), ChannelShipmentRequestChanges, ReplayNew, func([]byte) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	if err := tr.Unsubscribe(context.Background(), h); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	_ = pub.conn.Publish(ChannelShipmentRequestChanges, []byte(`{}`))
	pub.conn.Flush()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("received %d messages after unsubscribe", count)
	}

	// A second unsubscribe of the same handle is reported.
	if err := tr.Unsubscribe(context.Background(), h); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("second Unsubscribe error = %v, want ErrUnknownHandle", err)
	}
}

func TestNATSTransport_ReplayUnsupported(t *testing.T) {
	url := startTestNATS(t)

	tr, err := NewNATSTransport(url)
	if err != nil {
		t.Fatalf("creating transport: %v", err)
	}
	defer tr.Close()

	_, err = tr.Subscribe(context.Background(), ChannelShipmentRequestChanges, ReplayAll, func([]byte) {})
	if !errors.Is(err, ErrReplayUnsupported) {
		t.Fatalf("Subscribe error = %v, want ErrReplayUnsupported", err)
	}
}

func TestNATSTransport_CancelledContext(t *testing.T) {
	url := startTestNATS(t)

	tr, err := NewNATSTransport(url)
	if err != nil {
		t.Fatalf("creating transport: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Subscribe(ctx, ChannelShipmentRequestChanges, ReplayNew, func([]byte) {}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Subscribe error = %v, want context.Canceled", err)
	}
}

func TestNATSTransport_OnError(t *testing.T) {
	url := startTestNATS(t)

	tr, err := NewNATSTransport(url)
	if err != nil {
		t.Fatalf("creating transport: %v", err)
	}
	defer tr.Close()

	if !tr.Connected() {
		t.Fatal("expected transport to be connected")
	}

	got := make(chan error, 1)
	tr.OnError(func(err error) {
		select {
		case got <- err:
		default:
		}
	})
	tr.emitError(errors.New("slow consumer"))

	select {
	case err := <-got:
		if err.Error() != "slow consumer" {
			t.Errorf("got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error handler not called")
	}
}
