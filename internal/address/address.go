// Package address discovers the machine's public IPv4/IPv6 addresses and
// holds them for the duration of one run.
package address

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrWrongFamily is returned when a resolver answers with an address of
// the other family.
var ErrWrongFamily = errors.New("address family mismatch")

// Family is an IP address family.
type Family int

const (
	IPv4 Family = iota
	IPv6
)

func (f Family) String() string {
	if f == IPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// RecordType returns the DNS record type holding addresses of this family.
func (f Family) RecordType() string {
	if f == IPv6 {
		return "AAAA"
	}
	return "A"
}

// FamilyForType maps a record type to its address family.
func FamilyForType(recordType string) (Family, bool) {
	switch recordType {
	case "A":
		return IPv4, true
	case "AAAA":
		return IPv6, true
	}
	return IPv4, false
}

// FamiliesFor returns the families needed to serve the given record types,
// IPv4 first.
func FamiliesFor(recordTypes sets.Set[string]) []Family {
	var families []Family
	for _, f := range []Family{IPv4, IPv6} {
		if recordTypes.Has(f.RecordType()) {
			families = append(families, f)
		}
	}
	return families
}

// Set holds at most one address per family. A nil slot means the family is
// disabled for the run.
type Set struct {
	IPv4 *netip.Addr
	IPv6 *netip.Addr
}

// Get returns the address of a family, if available.
func (s Set) Get(f Family) (netip.Addr, bool) {
	slot := s.IPv4
	if f == IPv6 {
		slot = s.IPv6
	}
	if slot == nil {
		return netip.Addr{}, false
	}
	return *slot, true
}

// Available reports whether the family resolved successfully.
func (s Set) Available(f Family) bool {
	_, ok := s.Get(f)
	return ok
}

// Lookup returns the desired record value for a record type.
func (s Set) Lookup(recordType string) (string, bool) {
	f, ok := FamilyForType(recordType)
	if !ok {
		return "", false
	}
	addr, ok := s.Get(f)
	if !ok {
		return "", false
	}
	return addr.String(), true
}

// With returns a copy of the set with the family slot filled.
func (s Set) With(addr netip.Addr) Set {
	if addr.Is4() {
		s.IPv4 = &addr
	} else {
		s.IPv6 = &addr
	}
	return s
}

// Resolver discovers the public address of one family.
type Resolver interface {
	Resolve(ctx context.Context, family Family) (netip.Addr, error)
}

// Resolve queries every requested family independently. A failing family
// is logged and left unset; it never prevents the other from resolving.
func Resolve(ctx context.Context, log logr.Logger, r Resolver, families []Family) Set {
	var set Set
	for _, f := range families {
		addr, err := r.Resolve(ctx, f)
		if err != nil {
			log.Error(err, "address resolution failed, disabling family for this run", "family", f)
			continue
		}
		log.Info("resolved public address", "family", f, "address", addr)
		set = set.With(addr)
	}
	return set
}

// checkFamily parses an address and verifies it belongs to the family.
func checkFamily(raw string, family Family) (netip.Addr, error) {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parse address %q: %w", raw, err)
	}
	addr = addr.Unmap()
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("parse address %q: zoned address", raw)
	}
	if (family == IPv4) != addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: got %s for %s", ErrWrongFamily, addr, family)
	}
	return addr, nil
}
