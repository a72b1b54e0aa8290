package controller

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAddressUnavailable   = errors.New("address family disabled")
	ErrAuthenticationFailed = errors.New("bad API key")
	ErrAuthorizationDenied  = errors.New("forbidden")
	ErrRemoteConflict       = errors.New("conflict: record already exists")
	ErrUnexpectedStatus     = errors.New("unexpected status")
	ErrTransportUnreachable = errors.New("transport failure")
	ErrMalformedResponse    = errors.New("malformed provider response")
	ErrDomainAborted        = errors.New("domain aborted")

	errNoResponse = errors.New("provider returned no response")
)

// maxBodyInError bounds how much of a provider response ends up in logs.
const maxBodyInError = 512

// StatusError carries the HTTP status of a failed provider call. It unwraps
// to one of the sentinel errors above.
type StatusError struct {
	Op   string // "fetch", "create" or "update"
	Code int
	Body string
	Err  error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func newStatusError(op string, code int, body []byte, err error) *StatusError {
	return &StatusError{Op: op, Code: code, Body: truncate(body), Err: err}
}

func truncate(body []byte) string {
	b := strings.TrimSpace(string(body))
	if len(b) > maxBodyInError {
		b = b[:maxBodyInError] + "..."
	}
	return b
}

// IsDomainFatal reports whether err must stop every remaining record of the
// current domain.
func IsDomainFatal(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrAuthorizationDenied)
}
