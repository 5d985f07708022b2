package table

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// PendingEdits holds unsaved field edits keyed by row id.
type PendingEdits struct {
	mu    sync.Mutex
	edits map[string]model.FieldDelta
}

// NewPendingEdits returns an empty edit set.
func NewPendingEdits() *PendingEdits {
	return &PendingEdits{edits: make(map[string]model.FieldDelta)}
}

// Set stages value for field on row id. Only editable fields are accepted.
func (p *PendingEdits) Set(id, field, value string) error {
	if id == "" {
		return fmt.Errorf("set %s: row id is required", field)
	}
	if !model.IsEditable(field) {
		return fmt.Errorf("set %s on %s: field is not editable", field, id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edits == nil {
		p.edits = make(map[string]model.FieldDelta)
	}
	d, ok := p.edits[id]
	if !ok {
		d = model.FieldDelta{}
		p.edits[id] = d
	}
	d[field] = value
	return nil
}

// Delta returns a copy of the staged delta for id.
func (p *PendingEdits) Delta(id string) (model.FieldDelta, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.edits[id]
	if !ok {
		return nil, false
	}
	out := make(model.FieldDelta, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out, true
}

// IDs returns the ids with staged edits, sorted.
func (p *PendingEdits) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.edits))
	for id := range p.edits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of rows with staged edits.
func (p *PendingEdits) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.edits)
}

// Clear discards every staged edit.
func (p *PendingEdits) Clear() {
	p.mu.Lock()
	p.edits = make(map[string]model.FieldDelta)
	p.mu.Unlock()
}
