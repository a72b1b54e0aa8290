package controller

import (
	"errors"

	"github.com/go-logr/logr"
)

// Reporter receives the final result of every record.
type Reporter interface {
	Report(res RecordResult)
}

// Reporters fans a result out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) Report(res RecordResult) {
	for _, r := range rs {
		r.Report(res)
	}
}

// LogReporter renders each result as one structured log line.
type LogReporter struct {
	Log logr.Logger
}

func (l LogReporter) Report(res RecordResult) {
	log := l.Log.WithValues(
		"record", res.FQDN(),
		"type", res.Record.Type,
		"ttl", res.Record.TTL,
	)
	if res.Value != "" {
		log = log.WithValues("address", res.Value)
	}

	switch res.Status {
	case StatusCreated:
		log.Info("record created")
	case StatusExisted:
		log.Info("record already existed")
	case StatusUpdated:
		log.Info("record updated")
	case StatusUnchanged:
		log.Info("no update needed")
	case StatusAborted:
		log.Error(res.Err, "domain aborted")
	case StatusSkipped:
		switch {
		case errors.Is(res.Err, ErrAddressUnavailable):
			log.Info("skipping record", "reason", "family disabled")
		case errors.Is(res.Err, ErrRemoteConflict):
			log.Error(res.Err, "conflict: record already exists")
		case errors.Is(res.Err, ErrTransportUnreachable):
			log.Error(res.Err, "transport failure, skipping record")
		case errors.Is(res.Err, ErrMalformedResponse):
			log.Error(res.Err, "malformed provider response, skipping record")
		default:
			log.Error(res.Err, "unexpected status, skipping record")
		}
	}
}
