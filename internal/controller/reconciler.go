package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-ddns/internal/address"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/config"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/dns"
)

// Action is the decision taken for a record.
type Action string

const (
	ActionSkip     Action = "skip"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionNoChange Action = "none"
)

// Status is the terminal state of a record after a run.
type Status string

const (
	StatusCreated   Status = "created"
	StatusExisted   Status = "already-existed"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusAborted   Status = "aborted"
)

// RecordResult describes what happened to one configured record.
type RecordResult struct {
	Domain string
	Record config.Record
	Value  string // desired address, empty when the family is disabled
	Action Action
	Status Status
	Err    error
}

// FQDN returns the fully qualified name of the record.
func (r RecordResult) FQDN() string {
	return dns.FQDN(r.Record.Name, r.Domain)
}

// Succeeded reports whether the remote record matches the desired state.
func (r RecordResult) Succeeded() bool {
	switch r.Status {
	case StatusCreated, StatusExisted, StatusUpdated, StatusUnchanged:
		return true
	}
	return false
}

// RecordReconciler drives every configured record towards the resolved
// addresses, one domain and one record at a time.
type RecordReconciler struct {
	DNS      dns.Provider
	Log      logr.Logger
	Domains  []config.Domain
	Reporter Reporter
}

// Run reconciles every domain in order and returns one result per
// configured record. It never stops early: a fatal status only skips the
// rest of its own domain.
func (r *RecordReconciler) Run(ctx context.Context, addrs address.Set) Summary {
	var summary Summary
	for _, d := range r.Domains {
		for _, res := range r.reconcileDomain(ctx, d, addrs) {
			if r.Reporter != nil {
				r.Reporter.Report(res)
			}
			summary.Results = append(summary.Results, res)
		}
	}
	return summary
}

func (r *RecordReconciler) reconcileDomain(ctx context.Context, d config.Domain, addrs address.Set) []RecordResult {
	log := r.Log.WithValues("domain", d.Name)
	log.V(1).Info("reconciling domain", "records", len(d.Records))

	zone := dns.Zone{Name: d.Name, APIKey: d.APIKey}
	results := make([]RecordResult, 0, len(d.Records))

	for i, rec := range d.Records {
		res := r.reconcileRecord(ctx, log, zone, rec, addrs)
		if !IsDomainFatal(res.Err) {
			results = append(results, res)
			continue
		}

		cause := res.Err
		res.Status = StatusAborted
		res.Err = fmt.Errorf("%w: %w", ErrDomainAborted, cause)
		results = append(results, res)

		for _, rest := range d.Records[i+1:] {
			value, _ := addrs.Lookup(rest.Type)
			results = append(results, RecordResult{
				Domain: d.Name,
				Record: rest,
				Value:  value,
				Action: ActionSkip,
				Status: StatusAborted,
				Err:    fmt.Errorf("%w: %w", ErrDomainAborted, cause),
			})
		}
		break
	}
	return results
}

func (r *RecordReconciler) reconcileRecord(ctx context.Context, log logr.Logger, zone dns.Zone, rec config.Record, addrs address.Set) RecordResult {
	res := RecordResult{Domain: zone.Name, Record: rec}

	value, ok := addrs.Lookup(rec.Type)
	if !ok {
		res.Action = ActionSkip
		res.Status = StatusSkipped
		res.Err = fmt.Errorf("%w for type %s", ErrAddressUnavailable, rec.Type)
		return res
	}
	res.Value = value
	log = log.WithValues("record", rec.Name, "type", rec.Type)

	cls := ClassifyFetch(r.DNS.Fetch(ctx, zone, rec.Name, rec.Type))
	log.V(1).Info("fetched remote record", "state", cls.State)

	rrset := dns.RRSet{Name: rec.Name, Type: rec.Type, TTL: rec.TTL, Values: []string{value}}

	switch cls.State {
	case RemoteNotFound:
		res.Action = ActionCreate
		res.Status, res.Err = classifyCreate(r.DNS.Create(ctx, zone, rrset))
	case RemoteFound:
		if !Changed(*cls.Remote, rrset.Values, rrset.TTL) {
			res.Action = ActionNoChange
			res.Status = StatusUnchanged
			return res
		}
		log.V(1).Info("remote record differs", "remoteValues", cls.Remote.Values, "remoteTTL", cls.Remote.TTL)
		res.Action = ActionUpdate
		res.Status, res.Err = classifyUpdate(r.DNS.Update(ctx, zone, rrset))
	default:
		res.Action = ActionSkip
		res.Status = StatusSkipped
		res.Err = cls.Err
	}
	return res
}

// classifyCreate maps the result of a create call. 200 means another actor
// created the record first, which counts as success.
func classifyCreate(resp *dns.Response, err error) (Status, error) {
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		return StatusSkipped, fmt.Errorf("create: %w: %w", ErrTransportUnreachable, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return StatusExisted, nil
	case http.StatusCreated:
		return StatusCreated, nil
	}
	return StatusSkipped, responseError("create", resp)
}

// classifyUpdate maps the result of an update call. LiveDNS answers a
// successful PUT with 201, so that is the only success code.
func classifyUpdate(resp *dns.Response, err error) (Status, error) {
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		return StatusSkipped, fmt.Errorf("update: %w: %w", ErrTransportUnreachable, err)
	}
	if resp.StatusCode == http.StatusCreated {
		return StatusUpdated, nil
	}
	return StatusSkipped, responseError("update", resp)
}

// responseError wraps a non-success status in the sentinel matching its
// outcome. A conflict is only meaningful for create.
func responseError(op string, resp *dns.Response) error {
	switch resp.Outcome() {
	case dns.OutcomeAuthFailure:
		return newStatusError(op, resp.StatusCode, resp.Body, ErrAuthenticationFailed)
	case dns.OutcomePermissionDenied:
		return newStatusError(op, resp.StatusCode, resp.Body, ErrAuthorizationDenied)
	case dns.OutcomeConflict:
		if op == "create" {
			return newStatusError(op, resp.StatusCode, resp.Body, ErrRemoteConflict)
		}
	}
	return newStatusError(op, resp.StatusCode, resp.Body, ErrUnexpectedStatus)
}
