package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pothole-heatmap-backend/internal/cache"
	"pothole-heatmap-backend/internal/model"
)

func setupPotholesRouter(c *cache.SnapshotCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(c, nil, nil, nil, 1000)
	r.GET("/api/potholes", handler.GetPotholes)
	return r
}

func TestGetPotholes_FreshCache(t *testing.T) {
	snapCache := cache.New(time.Hour)
	snapCache.Write([]model.PotholeRecord{
		{ID: 1, Status: model.StatusOpen, Address: "123 Main St"},
		{ID: 2, Status: model.StatusClosed},
	})
	router := setupPotholesRouter(snapCache)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/potholes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Fetched-At"))

	var got []model.PotholeRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "123 Main St", got[0].Address)
}

func TestGetPotholes_EmptyCacheIsNotAnError(t *testing.T) {
	router := setupPotholesRouter(cache.New(time.Hour))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/potholes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String(), "a cache miss is an explicit empty result, not an error")
}

func TestGetPotholes_ExpiredCacheReadsEmpty(t *testing.T) {
	snapCache := cache.New(30 * time.Millisecond)
	snapCache.Write([]model.PotholeRecord{{ID: 1}})
	router := setupPotholesRouter(snapCache)

	time.Sleep(60 * time.Millisecond)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/potholes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
