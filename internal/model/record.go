package model

// PotholeRecord is the canonical shape of one reported pothole issue,
// normalized from the upstream feature service's attribute map.
//
// Timestamps are epoch milliseconds; the upstream mixes numeric and string
// date forms, and the conversion happens once, at ingestion (see parse).
// Optional fields are pointers or empty strings and are omitted from JSON
// when absent.
type PotholeRecord struct {
	ID              int64    `json:"id"`
	Status          string   `json:"status"`
	Address         string   `json:"address,omitempty"`
	Neighborhood    string   `json:"neighborhood,omitempty"`
	CouncilDistrict string   `json:"council_district,omitempty"`
	ZipCode         string   `json:"zip_code,omitempty"`
	CreatedAt       *int64   `json:"created_at,omitempty"`
	ClosedAt        *int64   `json:"closed_at,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether the record can be placed on the map.
// Records without coordinates stay in the dataset but are excluded from
// spatial rendering.
func (r PotholeRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Well-known status values. The status field is an open enum: any other
// upstream string passes through unchanged.
const (
	StatusOpen         = "Open"
	StatusAcknowledged = "Acknowledged"
	StatusClosed       = "Closed"
	StatusArchived     = "Archived"
)
