package dns

import (
	"strings"
)

// Apex is the record name addressing the zone itself.
const Apex = "@"

// FQDN joins a relative record name and a zone name.
// e.g. ("www", "example.com") → "www.example.com"
// e.g. ("@", "example.com") → "example.com"
func FQDN(name, zone string) string {
	zone = strings.TrimSuffix(zone, ".")
	if name == "" || name == Apex {
		return zone
	}
	return strings.TrimSuffix(name, ".") + "." + zone
}
