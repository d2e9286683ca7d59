package scanerrors

import "time"

// ScanError represents a persisted scan failure entry
type ScanError struct {
	ID          int64     `json:"id"`
	ScanID      string    `json:"scan_id"`
	URL         string    `json:"url,omitempty"`
	Phase       string    `json:"phase,omitempty"` // probe | render | email | payment
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
