package parse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochMillis(t *testing.T) {
	rfc3339 := time.Date(2024, 1, 20, 14, 30, 0, 0, time.UTC)
	plain := time.Date(2024, 1, 20, 14, 30, 0, 0, time.UTC)
	dateOnly := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		raw      string
		expected *int64
		wantErr  bool
	}{
		{name: "epoch milliseconds number", raw: `1705761000000`, expected: ptr(int64(1705761000000))},
		{name: "RFC3339 string", raw: `"2024-01-20T14:30:00Z"`, expected: ptr(rfc3339.UnixMilli())},
		{name: "space-separated datetime", raw: `"2024-01-20 14:30:00"`, expected: ptr(plain.UnixMilli())},
		{name: "date only", raw: `"2024-01-20"`, expected: ptr(dateOnly.UnixMilli())},
		{name: "null", raw: `null`, expected: nil},
		{name: "empty raw", raw: ``, expected: nil},
		{name: "empty string", raw: `""`, expected: nil},
		{name: "whitespace string", raw: `"   "`, expected: nil},
		{name: "unparseable string", raw: `"twenty past noon"`, wantErr: true},
		{name: "wrong json type", raw: `{"ms":1}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EpochMillis(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tc.expected, *got)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
