package table

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/shipdesk/internal/diag"
	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/nav"
)

// DefaultCommitConcurrency bounds concurrent persistence calls in CommitEdits.
const DefaultCommitConcurrency = 8

// Persister applies a field delta to one shipment request.
type Persister interface {
	UpdateShipmentRequest(ctx context.Context, id string, delta model.FieldDelta) error
}

// Syncer receives refresh requests from the dispatcher. *Controller
// implements it.
type Syncer interface {
	EditCommitted(res EditResult)
}

// Dispatcher handles row actions and edit commits.
type Dispatcher struct {
	persister Persister
	sync      Syncer
	nav       nav.Navigator
	diag      diag.Sink
	limit     int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCommitConcurrency bounds the number of concurrent persistence calls.
func WithCommitConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.limit = n
		}
	}
}

// NewDispatcher creates a Dispatcher. sink may be nil.
func NewDispatcher(p Persister, s Syncer, n nav.Navigator, sink diag.Sink, opts ...DispatcherOption) *Dispatcher {
	if sink == nil {
		sink = diag.Discard
	}
	d := &Dispatcher{persister: p, sync: s, nav: n, diag: sink, limit: DefaultCommitConcurrency}
	for _, o := range opts {
		o(d)
	}
	return d
}

// HandleRowAction runs a row action. Viewing a row that is assigned to an
// agent moves it to In Review before the view re-syncs. Every action,
// including unknown ones, ends on the record's edit page.
func (d *Dispatcher) HandleRowAction(ctx context.Context, action string, row model.Row) {
	if action == nav.ActionView && row.Status == model.StatusAssignedToAgent {
		res := EditResult{Attempted: 1}
		delta := model.FieldDelta{model.FieldStatus: string(model.StatusInReview)}
		if err := d.persister.UpdateShipmentRequest(ctx, row.ID, delta); err != nil {
			res.Failed = 1
			d.diag.Record(ctx, diag.PersistenceFailure,
				fmt.Errorf("move %s to %s: %w", row.ID, model.StatusInReview, err), "id", row.ID)
		}
		d.sync.EditCommitted(res)
	}
	d.nav.Navigate(nav.PageRef{
		RecordID:   row.ID,
		ObjectType: model.ObjectType,
		Action:     nav.ActionEdit,
	})
}

// CommitEdits persists every staged delta concurrently, waits for all of
// them to settle, clears the staged edits and signals one refresh. Each
// failure is recorded once; successes are not rolled back.
func (d *Dispatcher) CommitEdits(ctx context.Context, edits *PendingEdits) EditResult {
	ids := edits.IDs()
	var (
		attempted atomic.Int64
		failed    atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for _, id := range ids {
		delta, ok := edits.Delta(id)
		if !ok {
			continue
		}
		if err := model.ValidateDelta(delta); err != nil {
			failed.Add(1)
			d.diag.Record(ctx, diag.PersistenceFailure, fmt.Errorf("validate edits for %s: %w", id, err), "id", id)
			continue
		}
		g.Go(func() error {
			attempted.Add(1)
			if err := d.persister.UpdateShipmentRequest(gctx, id, delta); err != nil {
				failed.Add(1)
				d.diag.Record(ctx, diag.PersistenceFailure, fmt.Errorf("save edits for %s: %w", id, err), "id", id)
			}
			// Failures are reported per row; siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	edits.Clear()
	res := EditResult{Attempted: int(attempted.Load()), Failed: int(failed.Load())}
	d.sync.EditCommitted(res)
	return res
}
