// Package nav turns row-level navigation requests into something a host
// can act on: a printed link for the CLI, a recorded request for tests.
package nav

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

// Page actions.
const (
	ActionView = "view"
	ActionEdit = "edit"
)

// PageRef is a navigation target for a single record.
type PageRef struct {
	RecordID   string `json:"record_id"`
	ObjectType string `json:"object_type"`
	Action     string `json:"action"`
}

// Navigator receives navigation requests. Navigate is fire-and-forget.
type Navigator interface {
	Navigate(ref PageRef)
}

// LinkNavigator writes the URL of each target page to w.
type LinkNavigator struct {
	baseURL string
	w       io.Writer
	mu      sync.Mutex
}

// NewLinkNavigator returns a navigator that prints links rooted at baseURL.
func NewLinkNavigator(baseURL string, w io.Writer) *LinkNavigator {
	return &LinkNavigator{baseURL: strings.TrimRight(baseURL, "/"), w: w}
}

// URL returns the page URL for ref.
func (n *LinkNavigator) URL(ref PageRef) string {
	return fmt.Sprintf("%s/r/%s/%s/%s", n.baseURL,
		url.PathEscape(ref.ObjectType), url.PathEscape(ref.RecordID), url.PathEscape(ref.Action))
}

func (n *LinkNavigator) Navigate(ref PageRef) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "-> %s\n", n.URL(ref))
}

// Recorder keeps every navigation request in memory.
type Recorder struct {
	mu   sync.Mutex
	refs []PageRef
}

func (r *Recorder) Navigate(ref PageRef) {
	r.mu.Lock()
	r.refs = append(r.refs, ref)
	r.mu.Unlock()
}

// Refs returns a copy of the recorded requests.
func (r *Recorder) Refs() []PageRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PageRef, len(r.refs))
	copy(out, r.refs)
	return out
}
