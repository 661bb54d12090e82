package ingest

import (
	"context"
	"log"
	"time"

	"pothole-heatmap-backend/config"
	"pothole-heatmap-backend/internal/archive"
	"pothole-heatmap-backend/internal/notification"
)

// Refresher keeps the snapshot cache warm by running a bulk-mode session on
// a fixed interval, archiving each completed dataset and notifying push
// subscribers. Client-initiated sessions are unaffected by it; they run
// their own sweeps.
type Refresher struct {
	cfg     *config.Config
	session *Session
	store   archive.Store
	pool    *notification.WorkerPool
}

// NewRefresher creates a background refresher. Both store and pool may be
// nil, in which case archiving and notifications are skipped.
func NewRefresher(cfg *config.Config, session *Session, store archive.Store, pool *notification.WorkerPool) *Refresher {
	return &Refresher{cfg: cfg, session: session, store: store, pool: pool}
}

// Run starts the refresh loop and blocks until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	if !r.cfg.Refresher.Enabled {
		log.Println("Background refresher is disabled. Not starting.")
		return
	}
	log.Println("Starting background refresher...")

	if r.pool != nil {
		r.pool.Start(ctx)
	}

	r.RefreshOnce(ctx)

	timer := time.NewTimer(r.cfg.Refresher.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Background refresher shutting down.")
			return
		case <-timer.C:
			r.RefreshOnce(ctx)
			timer.Reset(r.cfg.Refresher.Interval)
		}
	}
}

// RefreshOnce performs a single full sweep. A failed sweep leaves the cache
// and archive untouched; the next tick retries from scratch.
func (r *Refresher) RefreshOnce(ctx context.Context) {
	log.Println("Executing refresh cycle...")
	now := time.Now().UTC()

	records, err := r.session.Fetch(ctx)
	if err != nil {
		log.Printf("Refresh cycle aborted: %v", err)
		return
	}
	log.Printf("Refresh cycle fetched %d records", len(records))

	if r.store != nil {
		if err := r.store.SaveSnapshot(ctx, now, records); err != nil {
			log.Printf("Error archiving snapshot: %v", err)
		}
	}

	if r.pool != nil {
		r.pool.Dispatch(notification.RefreshEvent{Total: len(records), FetchedAt: now})
	}

	log.Println("Refresh cycle finished.")
}
