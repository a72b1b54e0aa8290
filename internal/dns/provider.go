package dns

import (
	"context"
	"net/http"
)

// Zone identifies a domain hosted by the provider together with the API
// key used for every request made on its behalf.
type Zone struct {
	Name   string
	APIKey string
}

// RRSet is the payload written to the provider for one name/type pair.
type RRSet struct {
	Name   string   // relative name, "@" for the apex
	Type   string   // "A" or "AAAA"
	TTL    int      // seconds
	Values []string // addresses
}

// Response is the raw answer of a provider API call. Status interpretation
// is left to the caller.
type Response struct {
	StatusCode int
	Body       []byte
}

// Outcome classifies the response in a way shared by every call.
func (r *Response) Outcome() Outcome {
	switch {
	case r.StatusCode == http.StatusUnauthorized:
		return OutcomeAuthFailure
	case r.StatusCode == http.StatusForbidden:
		return OutcomePermissionDenied
	case r.StatusCode == http.StatusConflict:
		return OutcomeConflict
	case r.StatusCode >= 200 && r.StatusCode < 300:
		return OutcomeSuccess
	default:
		return OutcomeUnexpectedStatus
	}
}

// Outcome is the coarse class of a provider API status. Transport failures
// never produce a Response and have no Outcome.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAuthFailure
	OutcomePermissionDenied
	OutcomeConflict
	OutcomeUnexpectedStatus
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthFailure:
		return "auth-failure"
	case OutcomePermissionDenied:
		return "permission-denied"
	case OutcomeConflict:
		return "conflict"
	case OutcomeUnexpectedStatus:
		return "unexpected-status"
	}
	return "unknown"
}

// Provider is the interface that DNS providers must implement.
//
// A non-nil error means the request never produced an HTTP status (network,
// TLS or timeout failure). Any status, including 4xx and 5xx, is returned as
// a Response with a nil error.
type Provider interface {
	Fetch(ctx context.Context, zone Zone, name, recordType string) (*Response, error)
	Create(ctx context.Context, zone Zone, rrset RRSet) (*Response, error)
	Update(ctx context.Context, zone Zone, rrset RRSet) (*Response, error)
}
