package controller

import (
	"errors"
	"fmt"
	"strings"
)

// Summary collects the results of one run in configuration order.
type Summary struct {
	Results []RecordResult
}

// Counts returns the number of records per terminal status.
func (s Summary) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range s.Results {
		counts[r.Status]++
	}
	return counts
}

// Failed returns the number of records that did not reach the desired state,
// excluding those skipped because their address family was disabled.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		switch {
		case r.Status == StatusAborted:
			n++
		case r.Status == StatusSkipped && !errors.Is(r.Err, ErrAddressUnavailable):
			n++
		}
	}
	return n
}

var statusOrder = []Status{StatusCreated, StatusExisted, StatusUpdated, StatusUnchanged, StatusSkipped, StatusAborted}

// FormatSummary returns a one-line, human-readable account of a run.
// e.g. "3 records: 1 created, 1 updated, 1 skipped"
func FormatSummary(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d records", len(s.Results))

	counts := s.Counts()
	sep := ": "
	for _, st := range statusOrder {
		if n := counts[st]; n > 0 {
			fmt.Fprintf(&b, "%s%d %s", sep, n, st)
			sep = ", "
		}
	}
	return b.String()
}
