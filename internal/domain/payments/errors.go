package payments

import "errors"

// ErrSessionNotFound indicates the session id matches no known session.
var ErrSessionNotFound = errors.New("payment session not found")

// ErrGatewayUnavailable indicates the provider could not be reached.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrTokenInvalid covers unknown, expired, and already-consumed tokens.
// Callers present the same remedy for all three: purchase again.
var ErrTokenInvalid = errors.New("download token expired or invalid")
