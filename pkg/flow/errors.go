// Package flow implements the client side of the scan-and-purchase
// pipeline: submitting scans, gating the report behind a payment session,
// and redeeming the one-time download token. It owns no rendering; the
// state machine emits effects a UI layer interprets.
package flow

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can pick the right remedy without
// parsing message text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindEmptyAddress: the user submitted a blank site address.
	KindEmptyAddress
	// KindTimeout: the call ran past its deadline. Distinct from server
	// failures because the remedy is retrying, not reporting.
	KindTimeout
	// KindServer: the server answered with a non-success status.
	KindServer
	// KindMalformed: the server answered 2xx but the body did not parse.
	KindMalformed
	// KindNoActiveScan: purchase attempted before any scan completed.
	KindNoActiveScan
	// KindMissingEmail: purchase form submitted without a buyer email.
	KindMissingEmail
	// KindSessionCreate: the payment session could not be opened.
	KindSessionCreate
	// KindTokenInvalid: the download token is unknown, expired, or spent.
	// The remedy is purchasing again, not retrying the network.
	KindTokenInvalid
)

// Error is the single error type the package returns. Status is only set
// for KindServer.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyAddress:
		return "site address is empty"
	case KindTimeout:
		return "operation timed out: " + e.Message
	case KindServer:
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	case KindMalformed:
		return "malformed server response: " + e.Message
	case KindNoActiveScan:
		return "no scan result to purchase a report for"
	case KindMissingEmail:
		return "email is required"
	case KindSessionCreate:
		return "could not start payment: " + e.Message
	case KindTokenInvalid:
		return "download link expired or already used"
	}
	return e.Message
}

// KindOf extracts the Kind from any error in the chain, KindUnknown when
// the error did not come from this package.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// fallbackMessage is surfaced when the server supplies no usable message.
const fallbackMessage = "something went wrong, please try again"

func errEmptyAddress() *Error { return &Error{Kind: KindEmptyAddress} }
func errNoActiveScan() *Error { return &Error{Kind: KindNoActiveScan} }
func errMissingEmail() *Error { return &Error{Kind: KindMissingEmail} }
