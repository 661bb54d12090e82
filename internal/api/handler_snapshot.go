package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pothole-heatmap-backend/internal/model"
)

// GetSnapshot handles GET /api/snapshot: the latest archived dataset as a
// plain JSON array. This is the export used to regenerate the bundled
// client fallback file; an empty archive yields an empty array.
func (h *Handler) GetSnapshot(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot archive is not configured"})
		return
	}

	fetchedAt, records, err := h.store.LatestSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, []model.PotholeRecord{})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load archived snapshot"})
		return
	}

	c.Header("X-Fetched-At", fetchedAt.Format(time.RFC3339))
	c.JSON(http.StatusOK, records)
}
