package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pothole-heatmap-backend/config"
	"pothole-heatmap-backend/internal/model"
	"pothole-heatmap-backend/internal/parse"
)

// outSR is the spatial reference requested for coordinates (WGS 84).
const outSR = "4326"

// Client fetches pages of pothole records from the upstream feature service
// and normalizes them into the canonical record shape.
type Client struct {
	cfg    config.UpstreamConfig
	client *http.Client
}

// NewClient creates a feature service client from the upstream configuration.
func NewClient(cfg config.UpstreamConfig) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Upstream client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// FetchPage requests one page of records starting at the given offset.
//
// The returned final flag is true iff the page came back empty or shorter
// than pageSize. The service does not reliably report total counts, so page
// fullness is the sole termination signal.
func (c *Client) FetchPage(ctx context.Context, offset, pageSize int) ([]model.PotholeRecord, bool, error) {
	params := url.Values{}
	params.Set("where", c.cfg.Where)
	params.Set("outFields", c.cfg.OutFields)
	params.Set("outSR", outSR)
	params.Set("f", "json")
	params.Set("resultRecordCount", strconv.Itoa(pageSize))
	params.Set("resultOffset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, &TransportError{Err: fmt.Errorf("received non-200 status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var queryResp queryResponse
	if err := json.Unmarshal(body, &queryResp); err != nil {
		return nil, false, &FormatError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if queryResp.Error != nil {
		return nil, false, &FormatError{Reason: fmt.Sprintf("service error %d: %s", queryResp.Error.Code, queryResp.Error.Message)}
	}
	if queryResp.Features == nil {
		return nil, false, &FormatError{Reason: "response has no feature array"}
	}

	records := make([]model.PotholeRecord, 0, len(queryResp.Features))
	for _, f := range queryResp.Features {
		records = append(records, normalize(f.Attributes))
	}

	final := len(records) == 0 || len(records) < pageSize
	return records, final, nil
}

// normalize maps one raw attribute set onto the canonical record shape.
// The secondary issue identifier is used only when the primary object
// identifier is absent.
func normalize(attrs featureAttributes) model.PotholeRecord {
	var id int64
	switch {
	case attrs.ObjectID != nil:
		id = *attrs.ObjectID
	case attrs.IssueID != nil:
		id = *attrs.IssueID
	default:
		log.Printf("Warning: feature has neither ObjectId nor issue_id; keeping with zero id")
	}

	createdAt, err := parse.EpochMillis(attrs.CreatedAt)
	if err != nil {
		log.Printf("Warning: could not parse created_at for record %d: %v", id, err)
	}
	closedAt, err := parse.EpochMillis(attrs.ClosedAt)
	if err != nil {
		log.Printf("Warning: could not parse closed_at for record %d: %v", id, err)
	}

	return model.PotholeRecord{
		ID:              id,
		Status:          attrs.Status,
		Address:         attrs.Address,
		Neighborhood:    attrs.Neighborhood,
		CouncilDistrict: attrs.CouncilDistrict,
		ZipCode:         attrs.ZipCode,
		CreatedAt:       createdAt,
		ClosedAt:        closedAt,
		Latitude:        attrs.Latitude,
		Longitude:       attrs.Longitude,
	}
}
