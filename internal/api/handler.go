package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"pothole-heatmap-backend/internal/archive"
	"pothole-heatmap-backend/internal/cache"
	"pothole-heatmap-backend/internal/ingest"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cache    *cache.SnapshotCache
	source   ingest.PageSource
	store    archive.Store
	webpush  *webpush.Options
	pageSize int
}

// NewHandler creates a new API handler. The archive store may be nil when no
// database is configured.
func NewHandler(c *cache.SnapshotCache, source ingest.PageSource, store archive.Store, webpushOptions *webpush.Options, pageSize int) *Handler {
	return &Handler{
		cache:    c,
		source:   source,
		store:    store,
		webpush:  webpushOptions,
		pageSize: pageSize,
	}
}
