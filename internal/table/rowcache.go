package table

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// Query issues the bulk fetch behind a table view.
type Query interface {
	Fetch(ctx context.Context) ([]*model.ShipmentRequest, error)
}

// QueryFunc adapts a function to the Query interface.
type QueryFunc func(ctx context.Context) ([]*model.ShipmentRequest, error)

func (f QueryFunc) Fetch(ctx context.Context) ([]*model.ShipmentRequest, error) { return f(ctx) }

// FetchToken identifies the query and fetch that produced a RowSet. Re-issuing
// its query refreshes exactly the same logical view.
type FetchToken struct {
	query     Query
	Seq       uint64
	FetchedAt time.Time
}

// Query returns the query that produced the RowSet.
func (t FetchToken) Query() Query { return t.query }

// IsZero reports whether the token refers to no fetch.
func (t FetchToken) IsZero() bool { return t.query == nil }

// RowSet is an immutable collection of rows plus the token of the fetch that
// produced it. Row ids are unique.
type RowSet struct {
	Rows  []model.Row
	Token FetchToken

	ids map[string]int
}

// NewRowSet enriches raw records into rows. Records whose id was already
// seen are dropped and returned in dupes.
func NewRowSet(records []*model.ShipmentRequest, token FetchToken) (rs RowSet, dupes []string) {
	rs = RowSet{
		Rows:  make([]model.Row, 0, len(records)),
		Token: token,
		ids:   make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if _, ok := rs.ids[rec.ID]; ok {
			dupes = append(dupes, rec.ID)
			continue
		}
		rs.ids[rec.ID] = len(rs.Rows)
		rs.Rows = append(rs.Rows, model.Enrich(rec))
	}
	return rs, dupes
}

// Len returns the number of rows.
func (rs RowSet) Len() int { return len(rs.Rows) }

// Row returns the row with the given id.
func (rs RowSet) Row(id string) (model.Row, bool) {
	i, ok := rs.ids[id]
	if !ok {
		return model.Row{}, false
	}
	return rs.Rows[i], true
}

// ContainsAny reports whether any of ids is present in the set.
func (rs RowSet) ContainsAny(ids []string) bool {
	for _, id := range ids {
		if _, ok := rs.ids[id]; ok {
			return true
		}
	}
	return false
}

// IDs returns the row ids in arrival order.
func (rs RowSet) IDs() []string {
	out := make([]string, len(rs.Rows))
	for i, r := range rs.Rows {
		out[i] = r.ID
	}
	return out
}

// RowCache holds the last-known RowSet. Replace swaps the whole set
// atomically, so a concurrent reader sees either the old or the new set.
type RowCache struct {
	cur atomic.Pointer[RowSet]
}

// Current returns the cached RowSet; ok is false before the first load.
func (c *RowCache) Current() (rs RowSet, ok bool) {
	p := c.cur.Load()
	if p == nil {
		return RowSet{}, false
	}
	return *p, true
}

// Replace discards the previous RowSet and publishes rs.
func (c *RowCache) Replace(rs RowSet) {
	c.cur.Store(&rs)
}

// Load enriches records into a RowSet, replaces the cache with it and
// returns it along with any duplicate ids that were dropped.
func (c *RowCache) Load(records []*model.ShipmentRequest, token FetchToken) (RowSet, []string) {
	rs, dupes := NewRowSet(records, token)
	c.Replace(rs)
	return rs, dupes
}

// IDs returns the ids of the cached rows, or nil before the first load.
func (c *RowCache) IDs() []string {
	rs, ok := c.Current()
	if !ok {
		return nil
	}
	return rs.IDs()
}

// Contains reports whether the cached set holds any of ids. It is false
// before the first load.
func (c *RowCache) Contains(ids ...string) bool {
	rs, ok := c.Current()
	return ok && rs.ContainsAny(ids)
}
