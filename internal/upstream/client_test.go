package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pothole-heatmap-backend/config"
)

func testConfig(serverURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		URL:            serverURL,
		Where:          "request_type LIKE '%Pothole%'",
		OutFields:      "ObjectId,status",
		TimeoutSeconds: 5,
	}
}

func TestFetchPage_NormalizesAndTerminates(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"where":             r.URL.Query().Get("where"),
			"outSR":             r.URL.Query().Get("outSR"),
			"f":                 r.URL.Query().Get("f"),
			"resultRecordCount": r.URL.Query().Get("resultRecordCount"),
			"resultOffset":      r.URL.Query().Get("resultOffset"),
		}
		w.Header().Set("Content-Type", "application/json")
		// Two records: one with primary id and numeric timestamp, one with
		// fallback id, string timestamp and no coordinates.
		w.Write([]byte(`{"features":[
			{"attributes":{"ObjectId":11,"status":"Open","address":"123 Main St","latitude":42.35,"longitude":-83.06,"created_at":1705761000000}},
			{"attributes":{"issue_id":22,"status":"Closed","created_at":"2024-01-20 14:30:00"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	records, final, err := client.FetchPage(context.Background(), 0, 1000)
	require.NoError(t, err)

	assert.Equal(t, "request_type LIKE '%Pothole%'", gotQuery["where"])
	assert.Equal(t, "4326", gotQuery["outSR"])
	assert.Equal(t, "json", gotQuery["f"])
	assert.Equal(t, "1000", gotQuery["resultRecordCount"])
	assert.Equal(t, "0", gotQuery["resultOffset"])

	require.Len(t, records, 2)
	assert.True(t, final, "a page shorter than pageSize is final")

	assert.Equal(t, int64(11), records[0].ID)
	assert.Equal(t, "Open", records[0].Status)
	assert.True(t, records[0].HasCoordinates())
	require.NotNil(t, records[0].CreatedAt)
	assert.Equal(t, int64(1705761000000), *records[0].CreatedAt)

	assert.Equal(t, int64(22), records[1].ID, "issue_id is the fallback identifier")
	assert.False(t, records[1].HasCoordinates())
	require.NotNil(t, records[1].CreatedAt, "string timestamps are normalized too")
}

func TestFetchPage_FullPageIsNotFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := queryResponse{Features: make([]feature, 3)}
		for i := range resp.Features {
			id := int64(i + 1)
			resp.Features[i].Attributes.ObjectID = &id
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	records, final, err := client.FetchPage(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.False(t, final, "a full page means there may be more")
}

func TestFetchPage_EmptyPageIsFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	records, final, err := client.FetchPage(context.Background(), 3000, 1000)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.True(t, final)
}

func TestFetchPage_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		handler   http.HandlerFunc
		transport bool
		format    bool
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			transport: true,
		},
		{
			name: "invalid JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"features": [`))
			},
			format: true,
		},
		{
			name: "missing feature array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"fields":[]}`))
			},
			format: true,
		},
		{
			name: "embedded service error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":{"code":400,"message":"Invalid query"}}`))
			},
			format: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			_, _, err := client.FetchPage(context.Background(), 0, 1000)
			require.Error(t, err)

			var transportErr *TransportError
			var formatErr *FormatError
			if tc.transport {
				assert.ErrorAs(t, err, &transportErr)
			}
			if tc.format {
				assert.ErrorAs(t, err, &formatErr)
			}
		})
	}
}

func TestFetchPage_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // shut down immediately so the dial fails

	client := NewClient(testConfig(server.URL))
	_, _, err := client.FetchPage(context.Background(), 0, 1000)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}
