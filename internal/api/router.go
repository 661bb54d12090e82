package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"pothole-heatmap-backend/config"
	"pothole-heatmap-backend/internal/archive"
	"pothole-heatmap-backend/internal/cache"
	"pothole-heatmap-backend/internal/ingest"
	"pothole-heatmap-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, snapCache *cache.SnapshotCache, source ingest.PageSource, store archive.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(snapCache, source, store, webpushOptions, cfg.Upstream.PageSize)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)

	respTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	responseCache := gocache.New(respTTL, 2*respTTL)
	caching := mw.Cache(responseCache, respTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// The instant read and the stream are deliberately uncached at the
		// response layer: the snapshot cache already governs their
		// freshness, and the stream is a long-lived push channel.
		api.GET("/potholes", handler.GetPotholes)
		api.GET("/potholes/stream", handler.StreamPotholes)

		api.GET("/snapshot", caching, handler.GetSnapshot)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
