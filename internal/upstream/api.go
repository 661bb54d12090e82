package upstream

import "encoding/json"

// queryResponse models the feature service's query response. The service
// reports failures as a 200 with an embedded error object, so both shapes
// live here.
type queryResponse struct {
	Features []feature   `json:"features"`
	Error    *queryError `json:"error"`
}

type queryError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type feature struct {
	Attributes featureAttributes `json:"attributes"`
}

// featureAttributes is the raw attribute map for one feature. Timestamps are
// kept raw because the service mixes epoch milliseconds and date strings.
type featureAttributes struct {
	ObjectID        *int64          `json:"ObjectId"`
	IssueID         *int64          `json:"issue_id"`
	Status          string          `json:"status"`
	Address         string          `json:"address"`
	Neighborhood    string          `json:"neighborhood"`
	CouncilDistrict string          `json:"council_district"`
	ZipCode         string          `json:"zip_code"`
	CreatedAt       json.RawMessage `json:"created_at"`
	ClosedAt        json.RawMessage `json:"closed_at"`
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
}
