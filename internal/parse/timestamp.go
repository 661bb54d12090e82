package parse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// The upstream feature service is inconsistent about timestamp attributes:
// some responses carry epoch milliseconds as JSON numbers, others carry
// date strings. Everything is normalized to epoch milliseconds here, once,
// so downstream code never has to guess.

// dateLayouts are the string forms observed in upstream payloads, tried in
// order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// EpochMillis converts a raw upstream timestamp attribute into epoch
// milliseconds. A JSON null, missing value, or empty string yields (nil, nil).
func EpochMillis(raw json.RawMessage) (*int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	// Numeric form: already epoch milliseconds.
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return &ms, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("timestamp is neither number nor string: %s", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v := t.UnixMilli()
			return &v, nil
		}
	}
	return nil, fmt.Errorf("unable to parse timestamp %q", s)
}
