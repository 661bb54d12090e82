package client

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"pothole-heatmap-backend/internal/ingest"
	"pothole-heatmap-backend/internal/model"
)

// State tracks the fallback chain's progress.
type State int

const (
	StateIdle State = iota
	StateTryingCache
	StateStreaming
	StateSettled
)

// Source is the final provenance of the dataset once the chain settles.
type Source string

const (
	// SourceLive means the instant read returned a fresh cached snapshot.
	SourceLive Source = "live"
	// SourceStreamingLive means the dataset arrived over an incremental
	// session.
	SourceStreamingLive Source = "streaming-live"
	// SourceLocal means the bundled static snapshot was used as last resort.
	SourceLocal Source = "local"
)

//go:embed fallback.json
var fallbackFS embed.FS

// maxFrameSize bounds a single wire frame; a 1000-record batch with full
// addresses runs well under this.
const maxFrameSize = 16 * 1024 * 1024

// Ingestor is the client-side orchestrator: it tries the cached snapshot,
// falls back to the incremental session, and falls back again to the
// bundled static snapshot, merging arriving batches into its local store in
// arrival order.
type Ingestor struct {
	baseURL string
	client  *http.Client

	mu      sync.Mutex
	started bool
	state   State
	source  Source
	records []model.PotholeRecord
}

// NewIngestor creates an ingestor against the given service base URL.
// A nil httpClient selects http.DefaultClient.
func NewIngestor(baseURL string, httpClient *http.Client) *Ingestor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Ingestor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpClient,
		state:   StateIdle,
	}
}

// Start runs the fallback chain. It executes at most once per ingestor
// lifetime: repeated calls (a consuming view remounting) are no-ops. The
// returned error is non-nil only when every tier, including the bundled
// snapshot, is unusable.
func (i *Ingestor) Start(ctx context.Context) error {
	i.mu.Lock()
	if i.started {
		i.mu.Unlock()
		return nil
	}
	i.started = true
	i.state = StateTryingCache
	i.mu.Unlock()

	if records, err := i.instantRead(ctx); err == nil && len(records) > 0 {
		i.settle(SourceLive, records)
		return nil
	} else if err != nil {
		log.Printf("Instant read failed: %v", err)
	}

	i.setState(StateStreaming)
	if err := i.consumeStream(ctx); err == nil {
		i.settleKeeping(SourceStreamingLive)
		return nil
	} else {
		log.Printf("Incremental session failed: %v", err)
	}

	records, err := loadFallback()
	if err != nil {
		return fmt.Errorf("fallback chain exhausted: %w", err)
	}
	// The local snapshot replaces any partial streamed data wholesale.
	i.settle(SourceLocal, records)
	return nil
}

// instantRead calls the delivery endpoint's cached read. An empty array is a
// normal miss, reported to the caller as zero records.
func (i *Ingestor) instantRead(ctx context.Context) ([]model.PotholeRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+"/api/potholes", nil)
	if err != nil {
		return nil, err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instant read returned status %d", resp.StatusCode)
	}

	var records []model.PotholeRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// consumeStream opens an incremental session and processes its frames
// strictly in arrival order. Batches are appended to the local store as they
// arrive; no deduplication is performed. Returns nil only after a done frame.
func (i *Ingestor) consumeStream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+"/api/potholes/stream", nil)
	if err != nil {
		return err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var frame ingest.Frame
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			return fmt.Errorf("malformed frame: %w", err)
		}
		switch {
		case frame.Error != "":
			return errors.New(frame.Error)
		case frame.Done:
			return nil
		case frame.Batch != nil:
			i.append(frame.Batch)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("stream closed without a terminal frame")
}

// loadFallback reads the bundled static snapshot.
func loadFallback() ([]model.PotholeRecord, error) {
	data, err := fallbackFS.ReadFile("fallback.json")
	if err != nil {
		return nil, err
	}
	var records []model.PotholeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (i *Ingestor) append(records []model.PotholeRecord) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.records = append(i.records, records...)
}

func (i *Ingestor) setState(s State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = s
}

// settle replaces the local store and marks the chain settled.
func (i *Ingestor) settle(source Source, records []model.PotholeRecord) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.records = records
	i.state = StateSettled
	i.source = source
}

// settleKeeping marks the chain settled without touching the accumulated
// store.
func (i *Ingestor) settleKeeping(source Source) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = StateSettled
	i.source = source
}

// State returns the chain's current state.
func (i *Ingestor) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// SettledSource returns the dataset's provenance once settled.
func (i *Ingestor) SettledSource() Source {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.source
}

// Records returns the local store's current contents.
func (i *Ingestor) Records() []model.PotholeRecord {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]model.PotholeRecord, len(i.records))
	copy(out, i.records)
	return out
}
