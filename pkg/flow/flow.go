package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DeliveryMode selects how the finished report reaches the user. One
// pipeline serves all three; only the terminal step differs.
type DeliveryMode string

const (
	// DeliveryDirect downloads the document immediately, no payment.
	DeliveryDirect DeliveryMode = "direct"
	// DeliveryEmail sends the document to the buyer's inbox.
	DeliveryEmail DeliveryMode = "email"
	// DeliveryPaid gates the download behind a payment session.
	DeliveryPaid DeliveryMode = "paid"
)

// Flow ties the pipeline together: scan, purchase, return handling, and
// download. It owns the last-scan and active-session slots as fields so
// two flows in one process never share delivery state.
type Flow struct {
	Mode DeliveryMode

	transport  *Transport
	scans      *ScanOrchestrator
	payments   *PaymentClient
	downloader *Downloader
	machine    *Machine
}

// New builds a flow against the given server origin. The store persists
// the active payment session across the redirect round trip; save is
// invoked with every fetched document.
func New(baseURL string, mode DeliveryMode, store SessionStore, save Saver) *Flow {
	t := NewTransport(baseURL)
	return &Flow{
		Mode:       mode,
		transport:  t,
		scans:      NewScanOrchestrator(t),
		payments:   NewPaymentClient(t, store),
		downloader: NewDownloader(t, save),
		machine:    NewMachine(),
	}
}

// State exposes the current delivery step for rendering.
func (f *Flow) State() UIState { return f.machine.State() }

// LastScan returns the active scan result, nil when none.
func (f *Flow) LastScan() *Result { return f.scans.Last() }

// Scan submits the address and advances the machine. A response
// superseded by a newer submission is dropped without touching the
// machine; every other failure lands back in Idle with an inline error.
func (f *Flow) Scan(ctx context.Context, rawURL string) (*Result, []Effect, error) {
	res, err := f.scans.Submit(ctx, rawURL)
	if err != nil {
		if errors.Is(err, errSuperseded) {
			return nil, nil, nil
		}
		return nil, f.machine.Apply(ScanFailed{Err: err}), err
	}
	return res, f.machine.Apply(ScanSucceeded{Result: res}), nil
}

// OpenPurchase reveals the purchase form.
func (f *Flow) OpenPurchase() []Effect {
	return f.machine.Apply(PurchaseOpened{})
}

// StartPurchase runs the purchase submission end to end: guard checks,
// session creation, and the redirect effect. Guard failures leave the
// machine where it was; creation failures roll back to the purchase form.
func (f *Flow) StartPurchase(ctx context.Context, email string) []Effect {
	if err := f.requireMode(DeliveryPaid); err != nil {
		return []Effect{ShowError{Err: err}}
	}
	last := f.scans.Last()

	effects := f.machine.Apply(PurchaseSubmitted{
		Email:   strings.TrimSpace(email),
		HasScan: last != nil,
	})
	if f.machine.State() != StateProcessing {
		return effects
	}

	sess, err := f.payments.Create(ctx, last.URL, strings.TrimSpace(email), last.ScanID)
	if err != nil {
		return append(effects, f.machine.Apply(PaymentFailed{Err: err})...)
	}
	return append(effects, f.machine.Apply(SessionCreated{Session: sess})...)
}

// HandleReturn processes the post-redirect re-entry for pageURL. It
// returns the address the embedder should display (with the cancellation
// parameter stripped, so it is consumed exactly once) plus the effects to
// run. When a persisted session is found and the payment was not
// cancelled, verification runs here and the machine lands in Success or
// rolls back to the purchase form.
func (f *Flow) HandleReturn(ctx context.Context, pageURL string) (string, []Effect, error) {
	clean := pageURL
	cancelled := false

	if u, err := url.Parse(pageURL); err == nil {
		q := u.Query()
		if q.Get(cancelledParam) == "cancelled" {
			cancelled = true
			q.Del(cancelledParam)
			u.RawQuery = q.Encode()
			clean = u.String()
		}
	}

	sess, err := f.payments.Resume()
	if err != nil {
		return clean, nil, err
	}

	if cancelled {
		effects := f.machine.Apply(Returned{Cancelled: true})
		if sess != nil {
			if err := f.payments.Clear(); err != nil {
				return clean, effects, err
			}
		}
		return clean, effects, nil
	}

	if sess == nil {
		return clean, f.machine.Apply(Returned{}), nil
	}

	effects := f.machine.Apply(Returned{HasSession: true, SessionID: sess.ID})

	status, err := f.payments.Verify(ctx, sess.ID)
	if err != nil {
		return clean, append(effects, f.machine.Apply(PaymentFailed{Err: err})...), err
	}
	if !status.Completed() {
		verr := &Error{Kind: KindSessionCreate, Message: "payment not completed"}
		return clean, append(effects, f.machine.Apply(PaymentFailed{Err: verr})...), verr
	}

	if err := f.payments.Clear(); err != nil {
		return clean, effects, err
	}
	return clean, append(effects, f.machine.Apply(PaymentVerified{Token: status.Token})...), nil
}

// Download redeems the one-time token and saves the document.
func (f *Flow) Download(ctx context.Context, token string) error {
	return f.downloader.Download(ctx, token)
}

// DeliverDirect fetches the report document for the active scan without a
// payment session.
func (f *Flow) DeliverDirect(ctx context.Context) error {
	if err := f.requireMode(DeliveryDirect); err != nil {
		return err
	}
	last := f.scans.Last()
	if last == nil {
		return errNoActiveScan()
	}
	doc, err := f.transport.PostBinary(ctx, "/api/v1/scan/pdf",
		map[string]string{"url": last.URL, "scan_id": last.ScanID}, DocumentTimeout)
	if err != nil {
		return err
	}
	return f.downloader.save(fallbackFilename, doc)
}

// DeliverEmail asks the server to send the report to the address.
func (f *Flow) DeliverEmail(ctx context.Context, email string) error {
	if err := f.requireMode(DeliveryEmail); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return errMissingEmail()
	}
	last := f.scans.Last()
	if last == nil {
		return errNoActiveScan()
	}
	return f.transport.PostJSON(ctx, "/api/v1/send-report",
		map[string]string{"url": last.URL, "email": email, "scan_id": last.ScanID}, nil, DefaultTimeout)
}

// requireMode rejects a delivery action invoked under the wrong mode, so
// an embedder cannot, say, trigger a free download on a paid flow.
func (f *Flow) requireMode(want DeliveryMode) error {
	if f.Mode != want {
		return &Error{Message: fmt.Sprintf("delivery mode is %s, action requires %s", f.Mode, want)}
	}
	return nil
}

// Reset discards the active scan and any persisted session and returns
// the machine to Idle.
func (f *Flow) Reset() ([]Effect, error) {
	f.scans.Clear()
	err := f.payments.Clear()
	return f.machine.Apply(Reset{}), err
}
