package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// replayCapacity bounds how far back a reconnecting client can resume
	// with Last-Event-ID.
	replayCapacity = 1000

	keepaliveEvery = 15 * time.Second

	// subscriberBuffer is the per-client backlog. A client that falls
	// further behind is disconnected and may resume from the replay log
	// with Last-Event-ID.
	subscriberBuffer = 64
)

type feedEvent struct {
	id      uint64
	channel string
	data    []byte
}

// replayLog keeps the most recent events in id order.
type replayLog struct {
	buf   []feedEvent
	start int
}

func (l *replayLog) add(e feedEvent) {
	if len(l.buf) < replayCapacity {
		l.buf = append(l.buf, e)
		return
	}
	l.buf[l.start] = e
	l.start = (l.start + 1) % replayCapacity
}

// since returns events with id greater than after, oldest first.
func (l *replayLog) since(after uint64) []feedEvent {
	var out []feedEvent
	for i := range l.buf {
		if e := l.buf[(l.start+i)%len(l.buf)]; e.id > after {
			out = append(out, e)
		}
	}
	return out
}

// changeFeed fans change events out to SSE subscribers.
type changeFeed struct {
	mu   sync.Mutex
	seq  uint64
	log  replayLog
	subs map[*feedSub]struct{}
}

type feedSub struct {
	patterns []string // empty matches every channel
	events   chan feedEvent
}

func newChangeFeed() *changeFeed {
	return &changeFeed{subs: make(map[*feedSub]struct{})}
}

// nextID reserves the replay id for the next event.
func (f *changeFeed) nextID() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq
}

// deliver records an event and hands it to matching subscribers without
// blocking. A subscriber whose buffer is full is dropped and its channel
// closed once the buffered events drain.
func (f *changeFeed) deliver(id uint64, channel string, data []byte) {
	e := feedEvent{id: id, channel: channel, data: data}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add(e)
	for s := range f.subs {
		if !s.wants(channel) {
			continue
		}
		select {
		case s.events <- e:
		default:
			delete(f.subs, s)
			close(s.events)
		}
	}
}

// subscribe registers a subscriber. When resume is true it also returns the
// recorded events after lastID that the subscriber wants; the backlog and
// the registration are taken atomically so nothing falls between them.
func (f *changeFeed) subscribe(patterns []string, resume bool, lastID uint64) (*feedSub, []feedEvent) {
	s := &feedSub{patterns: patterns, events: make(chan feedEvent, subscriberBuffer)}
	f.mu.Lock()
	defer f.mu.Unlock()
	var backlog []feedEvent
	if resume {
		for _, e := range f.log.since(lastID) {
			if s.wants(e.channel) {
				backlog = append(backlog, e)
			}
		}
	}
	f.subs[s] = struct{}{}
	return s, backlog
}

func (f *changeFeed) unsubscribe(s *feedSub) {
	f.mu.Lock()
	delete(f.subs, s)
	f.mu.Unlock()
}

func (f *changeFeed) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (s *feedSub) wants(channel string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, p := range s.patterns {
		if channelMatches(strings.Split(p, "."), strings.Split(channel, ".")) {
			return true
		}
	}
	return false
}

// channelMatches compares dot-separated tokens NATS style: "*" matches one
// token, a trailing ">" matches one or more.
func channelMatches(pattern, channel []string) bool {
	if len(pattern) == 0 {
		return len(channel) == 0
	}
	switch {
	case pattern[0] == ">":
		return len(channel) > 0
	case len(channel) == 0:
		return false
	case pattern[0] != "*" && pattern[0] != channel[0]:
		return false
	}
	return channelMatches(pattern[1:], channel[1:])
}

// parseChannels splits the comma-separated channels query parameter.
func parseChannels(q string) []string {
	var out []string
	for _, c := range strings.Split(q, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// handleEventStream handles GET /v1/events/stream.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	lastID, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	sub, backlog := s.feed.subscribe(parseChannels(r.URL.Query().Get("channels")), err == nil, lastID)
	defer s.feed.unsubscribe(sub)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	for _, e := range backlog {
		writeFeedEvent(w, e)
	}
	flusher.Flush()

	ping := time.NewTicker(keepaliveEvery)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-sub.events:
			if !ok {
				return
			}
			writeFeedEvent(w, e)
		case <-ping.C:
			fmt.Fprint(w, ":keepalive\n\n")
		}
		flusher.Flush()
	}
}

func writeFeedEvent(w http.ResponseWriter, e feedEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", e.id, e.channel, e.data)
}
