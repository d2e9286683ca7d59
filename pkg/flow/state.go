package flow

import "fmt"

// UIState is the visible step of report delivery. Transitions happen only
// through Reduce; there is no direct Idle to Processing edge.
type UIState int

const (
	StateIdle UIState = iota
	StateResults
	StateCtaCard
	StateProcessing
	StateSuccess
)

func (s UIState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResults:
		return "results"
	case StateCtaCard:
		return "cta_card"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is anything that can drive a transition. Events carry facts, not
// intentions: the reducer decides what happens.
type Event interface{ isEvent() }

type (
	// ScanSucceeded is emitted when the orchestrator settles a scan.
	ScanSucceeded struct{ Result *Result }

	// ScanFailed is emitted when a scan submission errors out.
	ScanFailed struct{ Err error }

	// PurchaseOpened is the user revealing the purchase form.
	PurchaseOpened struct{}

	// PurchaseSubmitted is the purchase form being sent. HasScan reflects
	// whether an active scan result exists at submission time.
	PurchaseSubmitted struct {
		Email   string
		HasScan bool
	}

	// SessionCreated is a payment session coming back from the server.
	SessionCreated struct{ Session *Session }

	// PaymentFailed covers both session creation and verification errors.
	PaymentFailed struct{ Err error }

	// Returned is the post-redirect re-entry. Cancelled reflects the
	// provider's cancellation query parameter; HasSession whether a
	// persisted session survived the round trip.
	Returned struct {
		Cancelled  bool
		HasSession bool
		SessionID  string
	}

	// PaymentVerified carries the one-time download token.
	PaymentVerified struct{ Token string }

	// Reset returns to Idle from anywhere, discarding delivery progress.
	Reset struct{}
)

func (ScanSucceeded) isEvent()     {}
func (ScanFailed) isEvent()        {}
func (PurchaseOpened) isEvent()    {}
func (PurchaseSubmitted) isEvent() {}
func (SessionCreated) isEvent()    {}
func (PaymentFailed) isEvent()     {}
func (Returned) isEvent()          {}
func (PaymentVerified) isEvent()   {}
func (Reset) isEvent()             {}

// Effect is a side effect the embedder must perform. The reducer never
// performs I/O itself.
type Effect interface{ isEffect() }

type (
	// Redirect navigates the browsing context to the provider's page.
	Redirect struct{ URL string }

	// ShowError renders an inline error on the current surface.
	ShowError struct{ Err error }

	// ShowNotice renders a non-error message, shown at most once.
	ShowNotice struct{ Message string }

	// StripQueryParam removes a parameter from the visible address so a
	// reload cannot replay it.
	StripQueryParam struct{ Param string }

	// ResumeVerify asks the embedder to verify the persisted session.
	ResumeVerify struct{ SessionID string }

	// EnableDownload arms the download control with a one-time token.
	EnableDownload struct{ Token string }
)

func (Redirect) isEffect()        {}
func (ShowError) isEffect()       {}
func (ShowNotice) isEffect()      {}
func (StripQueryParam) isEffect() {}
func (ResumeVerify) isEffect()    {}
func (EnableDownload) isEffect()  {}

// cancelledParam is the provider's abandonment signal on the return URL.
const cancelledParam = "payment"

const cancelledNotice = "payment cancelled"

// Reduce applies one event to a state and returns the next state plus the
// side effects the embedder must run. It is a pure function so the whole
// delivery flow is testable without a rendered surface.
//
// Guard failures (missing email, no active scan) keep the current state
// and surface an inline error: every failure returns control to an
// interactable state and nothing retries on its own.
func Reduce(state UIState, ev Event) (UIState, []Effect) {
	switch ev := ev.(type) {
	case ScanSucceeded:
		return StateResults, nil

	case ScanFailed:
		return StateIdle, []Effect{ShowError{Err: ev.Err}}

	case PurchaseOpened:
		if state != StateResults {
			return state, nil
		}
		return StateCtaCard, nil

	case PurchaseSubmitted:
		if state != StateResults && state != StateCtaCard {
			return state, nil
		}
		if !ev.HasScan {
			return state, []Effect{ShowError{Err: errNoActiveScan()}}
		}
		if ev.Email == "" {
			return state, []Effect{ShowError{Err: errMissingEmail()}}
		}
		return StateProcessing, nil

	case SessionCreated:
		if state != StateProcessing {
			return state, nil
		}
		return StateProcessing, []Effect{Redirect{URL: ev.Session.PaymentURL}}

	case PaymentFailed:
		// rollback restores the purchase form with the error inline
		return StateCtaCard, []Effect{ShowError{Err: ev.Err}}

	case Returned:
		if ev.Cancelled {
			return StateIdle, []Effect{
				ShowNotice{Message: cancelledNotice},
				StripQueryParam{Param: cancelledParam},
			}
		}
		if ev.HasSession {
			return StateProcessing, []Effect{ResumeVerify{SessionID: ev.SessionID}}
		}
		// plain reload with nothing pending changes nothing
		return state, nil

	case PaymentVerified:
		if state != StateProcessing {
			return state, nil
		}
		return StateSuccess, []Effect{EnableDownload{Token: ev.Token}}

	case Reset:
		return StateIdle, nil

	default:
		return state, nil
	}
}

// Machine is a thin stateful wrapper over Reduce for embedders that want
// to hold the current state in one place.
type Machine struct {
	state UIState
}

func NewMachine() *Machine { return &Machine{state: StateIdle} }

func (m *Machine) State() UIState { return m.state }

// Apply advances the machine and returns the effects to run.
func (m *Machine) Apply(ev Event) []Effect {
	next, effects := Reduce(m.state, ev)
	m.state = next
	return effects
}
