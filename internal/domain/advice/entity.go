package advice

import "time"

// SummaryID identifier type
type SummaryID string

// Summary is an AI-written remediation summary stored for auditing and
// re-use when the same scan's report is rendered again.
type Summary struct {
	ID        SummaryID `json:"id"`
	ScanID    string    `json:"scan_id"`
	URL       string    `json:"url"`
	Result    string    `json:"result"` // JSON string from the model
	CreatedAt time.Time `json:"created_at"`
}
