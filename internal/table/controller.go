package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/diag"
	"github.com/alfredjeanlab/shipdesk/internal/events"
	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// DefaultDebounce is the window within which refresh triggers collapse into
// a single fetch.
const DefaultDebounce = 200 * time.Millisecond

var (
	ErrStarted = errors.New("controller already started")
	ErrNoQuery = errors.New("controller has no query")
)

// SignalKind enumerates the inputs the Controller decides on.
type SignalKind int

const (
	SignalInitialLoad SignalKind = iota
	SignalChange
	SignalEditCommit
	SignalManual
)

func (k SignalKind) String() string {
	switch k {
	case SignalInitialLoad:
		return "initial_load"
	case SignalChange:
		return "change"
	case SignalEditCommit:
		return "edit_commit"
	case SignalManual:
		return "manual"
	default:
		return fmt.Sprintf("signal(%d)", int(k))
	}
}

// EditResult summarizes a settled edit commit.
type EditResult struct {
	// Attempted counts persistence calls that were issued.
	Attempted int
	Failed    int
}

// Signal is one input to Decide. Only the field matching Kind is read.
type Signal struct {
	Kind   SignalKind
	Change model.ChangeNotification
	Edit   EditResult
	Reason string
}

// RefreshDecision is the outcome of Decide.
type RefreshDecision struct {
	Refresh bool
	Reason  string
}

// Stats are monotonically increasing fetch counters.
type Stats struct {
	FetchesIssued    int64
	FetchesCompleted int64
	FetchFailures    int64
	Replacements     int64
	Signals          int64
}

// Config configures a Controller.
type Config struct {
	Query       Query     // required
	Transport   Transport // optional; nil disables live updates
	Channel     string    // defaults to events.ChannelShipmentRequestChanges
	Diagnostics diag.Sink

	// Debounce is the trailing window refresh triggers collapse into. Zero
	// selects DefaultDebounce. A negative value issues each trigger at
	// once, so a repeated notification may cost a follow-up fetch.
	Debounce time.Duration

	// OnReplace is called from the controller goroutine after every
	// successful RowCache replacement.
	OnReplace func(RowSet)
}

// Controller keeps a RowCache in sync with the backend. All refresh
// decisions are made on a single goroutine started by Start.
type Controller struct {
	cfg   Config
	cache *RowCache
	subs  *SubscriptionManager

	signals chan Signal

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	seq       atomic.Uint64
	issued    atomic.Int64
	completed atomic.Int64
	failures  atomic.Int64
	replaced  atomic.Int64
	received  atomic.Int64
}

type fetchResult struct {
	token   FetchToken
	records []*model.ShipmentRequest
	err     error
	reason  string
}

// New creates a stopped Controller.
func New(cfg Config) *Controller {
	if cfg.Channel == "" {
		cfg.Channel = events.ChannelShipmentRequestChanges
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = diag.Discard
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	c := &Controller{
		cfg:     cfg,
		cache:   &RowCache{},
		signals: make(chan Signal, 64),
	}
	if cfg.Transport != nil {
		c.subs = NewSubscriptionManager(cfg.Transport, c.handleMessage, cfg.Diagnostics)
	}
	return c
}

// Cache returns the controller's RowCache.
func (c *Controller) Cache() *RowCache { return c.cache }

// Subscription returns the subscription manager, or nil when the
// controller runs without a transport.
func (c *Controller) Subscription() *SubscriptionManager { return c.subs }

// Rows returns the current RowSet; ok is false until the first load lands.
func (c *Controller) Rows() (RowSet, bool) { return c.cache.Current() }

// Stats returns a snapshot of the fetch counters.
func (c *Controller) Stats() Stats {
	return Stats{
		FetchesIssued:    c.issued.Load(),
		FetchesCompleted: c.completed.Load(),
		FetchFailures:    c.failures.Load(),
		Replacements:     c.replaced.Load(),
		Signals:          c.received.Load(),
	}
}

// Start issues the initial fetch and opens the change subscription. A
// failed subscription is recorded and the view stays static; it does not
// fail Start.
func (c *Controller) Start(ctx context.Context) error {
	if c.cfg.Query == nil {
		return ErrNoQuery
	}
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrStarted
	}
	c.started = true
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	go c.run(loopCtx, done)

	if c.subs != nil {
		// The manager records failures itself.
		_, _ = c.subs.Subscribe(ctx, c.cfg.Channel, events.ReplayNew)
	}
	return nil
}

// Stop releases the subscription and stops the controller goroutine,
// abandoning any fetch still in flight. It is safe to call more than once,
// and a stopped controller may be started again with its cache intact.
func (c *Controller) Stop(ctx context.Context) {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.started = false
	c.mu.Unlock()

	if c.subs != nil {
		c.subs.Unsubscribe(ctx)
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Notify feeds a decoded change notification to the controller.
func (c *Controller) Notify(n model.ChangeNotification) {
	c.send(Signal{Kind: SignalChange, Change: n})
}

// EditCommitted reports a settled local edit commit.
func (c *Controller) EditCommitted(res EditResult) {
	c.send(Signal{Kind: SignalEditCommit, Edit: res})
}

// Refresh requests an unconditional re-fetch.
func (c *Controller) Refresh(reason string) {
	c.send(Signal{Kind: SignalManual, Reason: reason})
}

func (c *Controller) send(sig Signal) {
	c.mu.Lock()
	running := c.cancel != nil
	done := c.done
	c.mu.Unlock()
	if !running {
		return
	}
	select {
	case c.signals <- sig:
	case <-done:
	}
}

// Decide reports whether sig requires a re-fetch, judged against the
// current RowCache. It has no side effects.
func (c *Controller) Decide(sig Signal) RefreshDecision {
	switch sig.Kind {
	case SignalChange:
		rs, ok := c.cache.Current()
		if !ok {
			return RefreshDecision{Reason: "cache not loaded"}
		}
		if rs.ContainsAny(sig.Change.RecordIDs) {
			return RefreshDecision{Refresh: true, Reason: "change touches cached rows"}
		}
		if sig.Change.Kind == model.ChangeCreate {
			return RefreshDecision{Refresh: true, Reason: "record created"}
		}
		return RefreshDecision{Reason: "change outside view"}
	case SignalEditCommit:
		if sig.Edit.Attempted > 0 {
			return RefreshDecision{Refresh: true, Reason: "edits committed"}
		}
		return RefreshDecision{Reason: "nothing persisted"}
	case SignalManual:
		reason := sig.Reason
		if reason == "" {
			reason = "manual"
		}
		return RefreshDecision{Refresh: true, Reason: reason}
	default:
		return RefreshDecision{Reason: "load result"}
	}
}

func (c *Controller) handleMessage(raw []byte) {
	n, err := events.Decode(raw)
	if err != nil {
		c.cfg.Diagnostics.Record(context.Background(), diag.DecodeFailure, err, "bytes", len(raw))
		return
	}
	c.Notify(n)
}

func (c *Controller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Each run owns its results channel so a fetch abandoned by an earlier
	// run can never be applied by this one.
	results := make(chan fetchResult)

	var (
		inFlight bool
		dirty    bool
		reason   string
		timer    *time.Timer
		timerC   <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	issue := func(why string) {
		if inFlight {
			dirty = true
			return
		}
		inFlight = true
		c.fetch(ctx, results, why)
	}

	issue("initial load")

	for {
		select {
		case <-ctx.Done():
			return

		case sig := <-c.signals:
			if d := c.Decide(sig); d.Refresh {
				if c.cfg.Debounce < 0 {
					issue(d.Reason)
				} else {
					reason = d.Reason
					if timer == nil {
						timer = time.NewTimer(c.cfg.Debounce)
					} else {
						timer.Reset(c.cfg.Debounce)
					}
					timerC = timer.C
				}
			}
			c.received.Add(1)

		case <-timerC:
			timerC = nil
			issue(reason)

		case res := <-results:
			inFlight = false
			c.apply(ctx, res)
			if dirty {
				dirty = false
				issue("coalesced")
			}
		}
	}
}

// fetch runs the query off the controller goroutine. A refresh re-issues
// the query of the current token, or the configured query before any load
// has succeeded.
func (c *Controller) fetch(ctx context.Context, results chan<- fetchResult, reason string) {
	q := c.cfg.Query
	if rs, ok := c.cache.Current(); ok && !rs.Token.IsZero() {
		q = rs.Token.Query()
	}
	token := FetchToken{query: q, Seq: c.seq.Add(1)}
	c.issued.Add(1)

	go func() {
		records, err := q.Fetch(ctx)
		token.FetchedAt = time.Now()
		select {
		case results <- fetchResult{token: token, records: records, err: err, reason: reason}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) apply(ctx context.Context, res fetchResult) {
	c.completed.Add(1)
	if res.err != nil {
		c.failures.Add(1)
		c.cfg.Diagnostics.Record(ctx, diag.FetchFailure, fmt.Errorf("fetch rows: %w", res.err),
			"reason", res.reason, "seq", res.token.Seq)
		return
	}
	rs, dupes := c.cache.Load(res.records, res.token)
	c.replaced.Add(1)
	for _, id := range dupes {
		c.cfg.Diagnostics.Record(ctx, diag.DuplicateRow, fmt.Errorf("duplicate row %s dropped", id), "id", id)
	}
	if c.cfg.OnReplace != nil {
		c.cfg.OnReplace(rs)
	}
}
