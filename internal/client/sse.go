package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/alfredjeanlab/shipdesk/internal/events"
	"github.com/alfredjeanlab/shipdesk/internal/idgen"
)

// SSETransport streams change events from the server's
// /v1/events/stream endpoint. It is the alternative to NATS for clients
// that can only reach the HTTP API. The server keeps a bounded backlog, so
// unlike NATS it honours ReplayAll and explicit replay ids.
type SSETransport struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu   sync.Mutex
	subs map[string]*sseStream

	errMu       sync.RWMutex
	errHandlers []func(error)
}

type sseStream struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSSETransport returns a transport for the server at baseURL.
func NewSSETransport(baseURL, token string) *SSETransport {
	return &SSETransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// No timeout: streams stay open until unsubscribed.
		httpClient: &http.Client{},
		subs:       make(map[string]*sseStream),
	}
}

// Subscribe opens a stream for channel and delivers each event's data to
// onMessage on a dedicated goroutine. It returns once the server has
// accepted the stream.
func (t *SSETransport) Subscribe(ctx context.Context, channel string, replayFrom int64, onMessage func([]byte)) (events.Handle, error) {
	var lastID string
	switch {
	case replayFrom == events.ReplayNew:
	case replayFrom == events.ReplayAll:
		lastID = "0"
	case replayFrom >= 0:
		lastID = strconv.FormatInt(replayFrom, 10)
	default:
		return events.Handle{}, fmt.Errorf("%w: %d", events.ErrReplayUnsupported, replayFrom)
	}
	if err := ctx.Err(); err != nil {
		return events.Handle{}, err
	}
	id, err := idgen.New(idgen.Subscription)
	if err != nil {
		return events.Handle{}, err
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	u := t.baseURL + "/v1/events/stream?" + url.Values{"channels": {channel}}.Encode()
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return events.Handle{}, fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if lastID != "" {
		req.Header.Set("Last-Event-ID", lastID)
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	// The caller's ctx bounds connecting only.
	stop := context.AfterFunc(ctx, cancel)
	resp, err := t.httpClient.Do(req)
	if !stop() {
		if err == nil {
			resp.Body.Close()
		}
		return events.Handle{}, fmt.Errorf("subscribing to %s: %w", channel, ctx.Err())
	}
	if err != nil {
		cancel()
		return events.Handle{}, fmt.Errorf("subscribing to %s: %w", channel, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return events.Handle{}, fmt.Errorf("subscribing to %s: %w", channel, apiError(resp.StatusCode, body))
	}

	s := &sseStream{cancel: cancel, done: make(chan struct{})}
	t.mu.Lock()
	t.subs[id] = s
	t.mu.Unlock()

	go func() {
		defer close(s.done)
		defer resp.Body.Close()
		err := readEvents(resp.Body, onMessage)
		if streamCtx.Err() != nil {
			return
		}
		if err == nil {
			err = io.EOF
		}
		t.emitError(fmt.Errorf("stream %s closed: %w", channel, err))
	}()

	return events.Handle{ID: id, Channel: channel, ReplayFrom: replayFrom}, nil
}

// readEvents parses an SSE body and hands each complete event's data to fn.
// Multi-line data fields are joined with newlines.
func readEvents(r io.Reader, fn func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case line == "" && len(data) > 0:
			fn([]byte(strings.Join(data, "\n")))
			data = data[:0]
		}
	}
	return scanner.Err()
}

// Unsubscribe closes the stream behind h and waits for its reader to exit
// or ctx to expire.
func (t *SSETransport) Unsubscribe(ctx context.Context, h events.Handle) error {
	t.mu.Lock()
	s, ok := t.subs[h.ID]
	delete(t.subs, h.ID)
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", events.ErrUnknownHandle, h.ID)
	}
	s.cancel()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("unsubscribing from %s: %w", h.Channel, ctx.Err())
	}
}

// OnError registers fn to receive stream failures.
func (t *SSETransport) OnError(fn func(error)) {
	t.errMu.Lock()
	t.errHandlers = append(t.errHandlers, fn)
	t.errMu.Unlock()
}

func (t *SSETransport) emitError(err error) {
	t.errMu.RLock()
	defer t.errMu.RUnlock()
	for _, fn := range t.errHandlers {
		fn(err)
	}
}

// Close cancels every open stream.
func (t *SSETransport) Close() error {
	t.mu.Lock()
	subs := t.subs
	t.subs = make(map[string]*sseStream)
	t.mu.Unlock()
	for _, s := range subs {
		s.cancel()
		<-s.done
	}
	return nil
}
