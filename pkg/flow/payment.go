package flow

import (
	"context"
	"errors"
)

// Session is the client's view of one purchase attempt.
type Session struct {
	ID         string `json:"session_id"`
	PaymentURL string `json:"payment_url"`
	ScanURL    string `json:"scan_url"`
	Email      string `json:"email"`
	DemoMode   bool   `json:"demo_mode"`
}

// VerifyStatus is the server's answer to a verify/status call.
type VerifyStatus struct {
	Status   string `json:"status"`
	Token    string `json:"pdf_token"`
	Email    string `json:"email"`
	ScanURL  string `json:"scan_url"`
	DemoMode bool   `json:"demo_mode"`
}

// Completed reports whether the payment went through and a token was
// issued.
func (v *VerifyStatus) Completed() bool {
	return v.Status == "completed" && v.Token != ""
}

// PaymentClient creates and verifies payment sessions. The active session
// is persisted to the store before any redirect so it survives the round
// trip; on return it is matched by its stored id, never recreated.
type PaymentClient struct {
	transport *Transport
	store     SessionStore
}

func NewPaymentClient(t *Transport, store SessionStore) *PaymentClient {
	return &PaymentClient{transport: t, store: store}
}

type createRequest struct {
	URL    string `json:"url"`
	Email  string `json:"email"`
	ScanID string `json:"scan_id,omitempty"`
}

// Create opens a payment session for the scan and persists it. Any
// failure surfaces as KindSessionCreate carrying the best server-supplied
// message the transport could extract.
func (p *PaymentClient) Create(ctx context.Context, scanURL, email, scanID string) (*Session, error) {
	var resp struct {
		SessionID  string `json:"session_id"`
		PaymentURL string `json:"payment_url"`
		DemoMode   bool   `json:"demo_mode"`
	}
	err := p.transport.PostJSON(ctx, "/api/v1/payment/create",
		createRequest{URL: scanURL, Email: email, ScanID: scanID}, &resp, DefaultTimeout)
	if err != nil {
		return nil, sessionCreateError(err)
	}
	if resp.SessionID == "" || resp.PaymentURL == "" {
		return nil, &Error{Kind: KindSessionCreate, Message: fallbackMessage}
	}

	sess := &Session{
		ID:         resp.SessionID,
		PaymentURL: resp.PaymentURL,
		ScanURL:    scanURL,
		Email:      email,
		DemoMode:   resp.DemoMode,
	}
	if err := p.store.Save(sess); err != nil {
		return nil, &Error{Kind: KindSessionCreate, Message: err.Error()}
	}
	return sess, nil
}

// Verify asks the server whether the session completed. Safe to repeat: a
// completed session always answers with the same token.
func (p *PaymentClient) Verify(ctx context.Context, sessionID string) (*VerifyStatus, error) {
	var status VerifyStatus
	err := p.transport.PostJSON(ctx, "/api/v1/payment/verify",
		map[string]string{"session_id": sessionID}, &status, DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Resume loads the session persisted before the redirect, nil when none.
func (p *PaymentClient) Resume() (*Session, error) {
	return p.store.Load()
}

// Clear forgets the persisted session (after success or cancellation).
func (p *PaymentClient) Clear() error {
	return p.store.Clear()
}

// sessionCreateError folds a transport failure into KindSessionCreate,
// keeping timeout distinct so the UI can still say "timed out".
func sessionCreateError(err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Kind == KindTimeout {
			return err
		}
		msg := fe.Message
		if msg == "" {
			msg = fallbackMessage
		}
		return &Error{Kind: KindSessionCreate, Status: fe.Status, Message: msg}
	}
	return &Error{Kind: KindSessionCreate, Message: err.Error()}
}
