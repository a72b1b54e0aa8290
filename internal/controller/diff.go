package controller

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// Changed reports whether the remote record differs from the desired values
// and TTL. Values are compared as sets, the TTL exactly.
func Changed(remote RemoteRecord, values []string, ttl int) bool {
	if remote.TTL != ttl {
		return true
	}
	return !sets.New(remote.Values...).Equal(sets.New(values...))
}
