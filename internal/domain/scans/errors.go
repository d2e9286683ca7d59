package scans

import "errors"

// ErrNotFound indicates the requested scan does not exist.
var ErrNotFound = errors.New("scan not found")

// ErrProbeFailed indicates the external analyzer could not evaluate the page.
var ErrProbeFailed = errors.New("accessibility probe failed")
