package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pothole-heatmap-backend/internal/ingest"
	"pothole-heatmap-backend/internal/model"
)

// StreamPotholes handles GET /api/potholes/stream: it opens a long-lived
// push channel and runs a fresh ingestion session in batch mode over it.
// Each frame is one JSON object followed by a blank line. The response ends
// right after the terminal done or error frame; a client that disconnects
// mid-session gets no replay and must start a new session.
func (h *Handler) StreamPotholes(c *gin.Context) {
	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	session := ingest.NewSession(h.source, h.cache, h.pageSize)
	sink := &frameSink{w: c.Writer}

	// The request context is cancelled on client disconnect, which aborts
	// the next upstream call; writes after a disconnect fail and stop the
	// session without touching other sessions.
	if err := session.Stream(c.Request.Context(), sink); err != nil {
		log.Printf("Streaming session ended with error: %v", err)
	}
}

// frameSink encodes session events as wire frames onto the HTTP response,
// flushing after each frame so batches reach the client before the next
// page is fetched.
type frameSink struct {
	w gin.ResponseWriter
}

func (s *frameSink) Batch(records []model.PotholeRecord, total int) error {
	return s.writeFrame(ingest.BatchFrame{Batch: records, Total: total})
}

func (s *frameSink) Done(total int) error {
	return s.writeFrame(ingest.DoneFrame{Done: true, Total: total})
}

func (s *frameSink) Error(message string) error {
	return s.writeFrame(ingest.ErrorFrame{Error: message})
}

func (s *frameSink) writeFrame(frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(append(data, '\n', '\n')); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}
