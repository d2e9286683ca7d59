package scans

import (
	"time"
)

// ScanID identifies one completed or failed evaluation.
type ScanID string

// Standard enum: compliance standard a scan is evaluated against
type Standard string

const (
	StandardWCAG22AA Standard = "WCAG_2_2_AA"
	StandardIL5568   Standard = "IL_5568"
)

// Locale enum
type Locale string

const (
	LocaleHebrew  Locale = "he"
	LocaleEnglish Locale = "en"
)

// Status enum
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IssueSummary value object: aggregated finding counts by impact level
type IssueSummary struct {
	Critical int `json:"critical"`
	Serious  int `json:"serious"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
	Total    int `json:"total"`
}

// Issue is one detected accessibility finding
type Issue struct {
	ID          string `json:"id"`
	Rule        string `json:"rule"`
	WCAG        string `json:"wcag,omitempty"`
	Impact      string `json:"impact"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Selector    string `json:"selector,omitempty"`
	FixSummary  string `json:"fix_summary,omitempty"`
	CodeExample string `json:"code_example,omitempty"`
}

// ScanRequest is a submitted evaluation job
type ScanRequest struct {
	URL      string   `json:"url"`
	Standard Standard `json:"standard"`
	Locale   Locale   `json:"locale"`
}

// Aggregate Root: Scan. Immutable once the probe finishes; a new scan
// always produces a fresh Scan, never a partial mutation of an old one.
type Scan struct {
	ID         ScanID       `json:"scan_id"`
	URL        string       `json:"url"`
	Timestamp  time.Time    `json:"timestamp"`
	Standard   Standard     `json:"standard"`
	Locale     Locale       `json:"locale"`
	Status     Status       `json:"status"`
	Score      int          `json:"score"`
	Summary    IssueSummary `json:"summary"`
	Risk       Risk         `json:"legal_risk"`
	Issues     []Issue      `json:"issues"`
	Coverage   Coverage     `json:"coverage"`
	NextSteps  []string     `json:"next_steps"`
	DurationMS int64        `json:"duration_ms"`
}
