package flow

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Result is one completed evaluation as the server reports it.
type Result struct {
	ScanID    string    `json:"scan_id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Summary   Summary   `json:"summary"`
	Risk      Risk      `json:"legal_risk"`
	Issues    []Issue   `json:"issues"`
	NextSteps []string  `json:"next_steps"`
}

// Summary mirrors the server's per-impact counts.
type Summary struct {
	Critical int `json:"critical"`
	Serious  int `json:"serious"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
	Total    int `json:"total"`
}

// Risk is the server-assigned legal-exposure tier.
type Risk struct {
	Tier      string `json:"level"`
	ReasonKey string `json:"reason_key"`
	FineRange string `json:"estimated_fine"`
}

// Issue is one finding with its fix guidance.
type Issue struct {
	Rule        string `json:"rule"`
	Impact      string `json:"impact"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FixSummary  string `json:"fix_summary,omitempty"`
}

// errSuperseded marks a scan response that arrived after a newer
// submission took over the result slot. Callers drop it silently.
var errSuperseded = errors.New("scan superseded by a newer submission")

// ScanOrchestrator submits scans and owns the single last-scan slot. Each
// submission bumps a generation counter; a response whose generation is
// no longer current is dropped instead of overwriting the newer scan's
// slot out of order.
type ScanOrchestrator struct {
	transport *Transport

	mu   sync.Mutex
	gen  uint64
	last *Result
}

func NewScanOrchestrator(t *Transport) *ScanOrchestrator {
	return &ScanOrchestrator{transport: t}
}

// Submit normalizes the address, runs the scan, and stores the result as
// the active scan. Returns errSuperseded (via Err check in Flow) when a
// newer submission finished first.
func (o *ScanOrchestrator) Submit(ctx context.Context, rawURL string) (*Result, error) {
	addr, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.mu.Unlock()

	var res Result
	if err := o.transport.PostJSON(ctx, "/api/v1/scan",
		map[string]string{"url": addr}, &res, DefaultTimeout); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return nil, errSuperseded
	}
	o.last = &res
	return &res, nil
}

// Last returns the active scan, nil when none.
func (o *ScanOrchestrator) Last() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Clear drops the active scan (the "scan another" action).
func (o *ScanOrchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = nil
	o.gen++ // anything still in flight is now stale
}
