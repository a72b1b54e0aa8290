package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yuriy-kovalchuk/yk-ddns/internal/dns"
)

// RemoteState is what a fetch call tells us about the remote record.
type RemoteState int

const (
	RemoteNotFound RemoteState = iota
	RemoteFound
	RemoteFatal
	RemoteUnexpected
	RemoteTransportFailure
)

func (s RemoteState) String() string {
	switch s {
	case RemoteNotFound:
		return "not-found"
	case RemoteFound:
		return "found"
	case RemoteFatal:
		return "fatal"
	case RemoteUnexpected:
		return "unexpected"
	case RemoteTransportFailure:
		return "transport-failure"
	}
	return "unknown"
}

// RemoteRecord is the observed state of a record at the provider.
type RemoteRecord struct {
	Values []string `json:"rrset_values"`
	TTL    int      `json:"rrset_ttl"`
}

// Classification is the result of classifying a fetch call. Remote is set
// only for RemoteFound, Err for every state except RemoteNotFound and
// RemoteFound.
type Classification struct {
	State  RemoteState
	Remote *RemoteRecord
	Err    error
}

// fetchBody mirrors RemoteRecord with both fields required.
type fetchBody struct {
	Values *[]string `json:"rrset_values"`
	TTL    *int      `json:"rrset_ttl"`
}

func decodeRemote(body []byte) (*RemoteRecord, error) {
	var b fetchBody
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, err
	}
	if b.Values == nil || b.TTL == nil {
		return nil, fmt.Errorf("missing rrset_values or rrset_ttl in %q", truncate(body))
	}
	return &RemoteRecord{Values: *b.Values, TTL: *b.TTL}, nil
}

// ClassifyFetch maps the result of a fetch call to a remote state.
func ClassifyFetch(resp *dns.Response, err error) Classification {
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		return Classification{State: RemoteTransportFailure, Err: fmt.Errorf("fetch: %w: %w", ErrTransportUnreachable, err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		remote, err := decodeRemote(resp.Body)
		if err != nil {
			return Classification{
				State: RemoteUnexpected,
				Err:   fmt.Errorf("fetch: %w: %w", ErrMalformedResponse, err),
			}
		}
		return Classification{State: RemoteFound, Remote: remote}
	case http.StatusNotFound:
		return Classification{State: RemoteNotFound}
	}

	statusErr := responseError("fetch", resp)
	if IsDomainFatal(statusErr) {
		return Classification{State: RemoteFatal, Err: statusErr}
	}
	return Classification{State: RemoteUnexpected, Err: statusErr}
}
