package ingest

import (
	"context"
	"errors"
	"fmt"

	"pothole-heatmap-backend/internal/cache"
	"pothole-heatmap-backend/internal/model"
)

// PageSource supplies one page of records at a time. The upstream client is
// the production implementation; tests inject scripted sources.
type PageSource interface {
	FetchPage(ctx context.Context, offset, pageSize int) ([]model.PotholeRecord, bool, error)
}

// Sink receives the typed events of a batch-mode session. Implementations
// range from a chunked HTTP response to an in-process queue in tests.
type Sink interface {
	Batch(records []model.PotholeRecord, total int) error
	Done(total int) error
	Error(message string) error
}

// SinkWriteError reports a failed event write, usually a client that
// disconnected mid-stream. Once it occurs no further events are written.
type SinkWriteError struct {
	Err error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("channel write failed: %v", e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }

// Session drives one complete pagination sweep against a page source. It is
// ephemeral: created per delivery, destroyed on completion, disconnect or
// upstream error, never persisted.
type Session struct {
	src      PageSource
	cache    *cache.SnapshotCache
	pageSize int
}

// NewSession creates a session over the given source. Every successful
// completion publishes the accumulated dataset to the snapshot cache.
func NewSession(src PageSource, c *cache.SnapshotCache, pageSize int) *Session {
	return &Session{src: src, cache: c, pageSize: pageSize}
}

// Fetch runs the session in bulk mode: no intermediate events, the full
// accumulated dataset is returned once pagination terminates.
func (s *Session) Fetch(ctx context.Context) ([]model.PotholeRecord, error) {
	records, err := s.sweep(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.cache.Write(records)
	return records, nil
}

// Stream runs the session in batch mode, emitting each fetched page to the
// sink before requesting the next one. Exactly one terminal event is
// emitted: Done on success, Error on upstream failure. A sink write failure
// abandons the session silently since the client is unreachable. Partial
// results are never cached.
func (s *Session) Stream(ctx context.Context, sink Sink) error {
	records, err := s.sweep(ctx, sink)
	if err != nil {
		var writeErr *SinkWriteError
		if errors.As(err, &writeErr) {
			return err
		}
		if emitErr := sink.Error(err.Error()); emitErr != nil {
			return &SinkWriteError{Err: emitErr}
		}
		return err
	}

	s.cache.Write(records)
	if err := sink.Done(len(records)); err != nil {
		return &SinkWriteError{Err: err}
	}
	return nil
}

// sweep is the pagination loop shared by both modes. Starting at offset 0 it
// fetches page after page, advancing the offset by exactly the page size
// while pages come back full. Page fullness is the sole termination signal:
// the upstream does not reliably report totals, so an upstream that pads a
// full final page costs one extra empty-terminal call, which is normal.
func (s *Session) sweep(ctx context.Context, sink Sink) ([]model.PotholeRecord, error) {
	var accumulated []model.PotholeRecord
	offset := 0
	for {
		page, final, err := s.src.FetchPage(ctx, offset, s.pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) > 0 {
			accumulated = append(accumulated, page...)
			if sink != nil {
				if err := sink.Batch(page, len(accumulated)); err != nil {
					return nil, &SinkWriteError{Err: err}
				}
			}
		}
		if final {
			return accumulated, nil
		}
		offset += s.pageSize
	}
}
