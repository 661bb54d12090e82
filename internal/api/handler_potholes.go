package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pothole-heatmap-backend/internal/model"
)

// GetPotholes handles the GET /api/potholes instant read. A fresh cache
// entry is served as-is; an empty or expired cache yields an explicit empty
// array, which tells the client to fall back to the incremental session.
func (h *Handler) GetPotholes(c *gin.Context) {
	entry, found := h.cache.Read()
	if !found {
		c.JSON(http.StatusOK, []model.PotholeRecord{})
		return
	}

	c.Header("X-Fetched-At", entry.FetchedAt.Format(time.RFC3339))
	c.JSON(http.StatusOK, entry.Records)
}
