// Package sync backs up shipment requests and owners as JSONL to external
// destinations on a fixed interval.
package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/store"
)

// Destination receives exported snapshots.
type Destination interface {
	// Name identifies the destination in logs.
	Name() string
	Write(ctx context.Context, snap Snapshot) error
}

// Scheduler exports the store on an interval and writes each snapshot to
// every destination whose last successful write had a different digest.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	// written[i] is the digest last delivered to destinations[i].
	written []string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		written:      make([]string, len(destinations)),
	}
}

// Start exports once immediately, then on every tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.SyncOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SyncOnce(ctx)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for an in-progress export.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// SyncOnce runs a single export. It must not be called concurrently with a
// running scheduler.
func (s *Scheduler) SyncOnce(ctx context.Context) {
	snap, err := Export(ctx, s.store)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}

	var wrote, skipped int
	for i, dest := range s.destinations {
		if s.written[i] == snap.Digest {
			skipped++
			continue
		}
		if err := dest.Write(ctx, snap); err != nil {
			s.logger.Error("sync write failed", "destination", dest.Name(), "err", err)
			continue
		}
		s.written[i] = snap.Digest
		wrote++
	}

	s.logger.Info("sync completed",
		"shipment_requests", snap.ShipmentRequests,
		"owners", snap.Owners,
		"written", wrote,
		"unchanged", skipped,
		"bytes", len(snap.Data),
	)
}
