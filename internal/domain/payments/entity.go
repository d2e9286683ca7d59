package payments

import (
	"time"
)

// SessionID identifier type
type SessionID string

// Status enum. The lifecycle only moves forward: pending → completed.
// A session is never reopened once completed; sessions past their TTL
// are deleted, not marked.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Session represents one purchase attempt. It is created before the buyer
// is redirected to the external provider and must survive the round trip.
type Session struct {
	ID          SessionID `json:"session_id"`
	ScanID      string    `json:"scan_id"`
	URL         string    `json:"url"`
	Email       string    `json:"email"`
	Amount      int       `json:"amount"`
	Status      Status    `json:"status"`
	ProcessID   string    `json:"process_id,omitempty"`
	PaymentURL  string    `json:"payment_url,omitempty"`
	Token       string    `json:"token,omitempty"`
	DemoMode    bool      `json:"demo_mode"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Complete advances the session to completed and binds its download token.
// Completing an already-completed session is a no-op so repeated verify
// calls can never double-issue.
func (s *Session) Complete(token string, at time.Time) {
	if s.Status == StatusCompleted {
		return
	}
	s.Status = StatusCompleted
	s.Token = token
	s.CompletedAt = at
}

// Token single-use lifetimes.
const (
	TokenTTL   = 30 * time.Minute
	SessionTTL = 2 * time.Hour
)

// DownloadToken authorizes exactly one fetch of the finished document.
type DownloadToken struct {
	Value     string    `json:"token"`
	SessionID SessionID `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// Usable reports whether the token can still be redeemed at the given time.
func (t *DownloadToken) Usable(now time.Time) bool {
	return !t.Consumed && now.Before(t.ExpiresAt)
}
