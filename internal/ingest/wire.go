package ingest

import "pothole-heatmap-backend/internal/model"

// Wire encoding of session events: each frame is a single JSON object on the
// push channel, terminated by a blank line. A session emits zero or more
// batch frames in fetch order, then exactly one terminal frame, done or
// error, never both.

// BatchFrame carries one page of records and the running total.
type BatchFrame struct {
	Batch []model.PotholeRecord `json:"batch"`
	Total int                   `json:"total"`
}

// DoneFrame is the terminal success frame.
type DoneFrame struct {
	Done  bool `json:"done"`
	Total int  `json:"total"`
}

// ErrorFrame is the terminal failure frame.
type ErrorFrame struct {
	Error string `json:"error"`
}

// Frame is the decode-side union of the three frame shapes. Consumers branch
// on Error, then Done, then Batch.
type Frame struct {
	Batch []model.PotholeRecord `json:"batch,omitempty"`
	Total int                   `json:"total,omitempty"`
	Done  bool                  `json:"done,omitempty"`
	Error string                `json:"error,omitempty"`
}
