package config

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// DefaultProvider is used when the configuration does not name one.
const DefaultProvider = "gandi"

// Resolver methods.
const (
	ResolverHTTP = "http"
	ResolverDNS  = "dns"
)

const (
	defaultIPv4URL         = "https://api4.ipify.org?format=txt"
	defaultIPv6URL         = "https://api6.ipify.org?format=txt"
	defaultDNSServer       = "resolver1.opendns.com:53"
	defaultDNSName         = "myip.opendns.com"
	defaultResolverTimeout = "10s"
)

// ResolverConfig selects how the machine's public addresses are discovered.
type ResolverConfig struct {
	Method    string `yaml:"method" toml:"method"`
	IPv4URL   string `yaml:"ipv4_url" toml:"ipv4_url"`
	IPv6URL   string `yaml:"ipv6_url" toml:"ipv6_url"`
	DNSServer string `yaml:"dns_server" toml:"dns_server"`
	DNSName   string `yaml:"dns_name" toml:"dns_name"`
	Timeout   string `yaml:"timeout" toml:"timeout"`
}

func (r *ResolverConfig) applyDefaults() {
	if r.Method == "" {
		r.Method = ResolverHTTP
	}
	if r.IPv4URL == "" {
		r.IPv4URL = defaultIPv4URL
	}
	if r.IPv6URL == "" {
		r.IPv6URL = defaultIPv6URL
	}
	if r.DNSServer == "" {
		r.DNSServer = defaultDNSServer
	}
	if r.DNSName == "" {
		r.DNSName = defaultDNSName
	}
	if r.Timeout == "" {
		r.Timeout = defaultResolverTimeout
	}
}

// TimeoutDuration returns the parsed resolver timeout.
func (r *ResolverConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultResolverTimeout)
	}
	return d
}

func (r *ResolverConfig) validate() error {
	if d, err := time.ParseDuration(r.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("resolver: invalid timeout %q", r.Timeout)
	}
	switch r.Method {
	case ResolverHTTP:
		for _, raw := range []string{r.IPv4URL, r.IPv6URL} {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("resolver: invalid echo url %q", raw)
			}
		}
	case ResolverDNS:
		if _, _, err := net.SplitHostPort(r.DNSServer); err != nil {
			return fmt.Errorf("resolver: invalid dns_server %q: %w", r.DNSServer, err)
		}
	default:
		return fmt.Errorf("resolver: unknown method %q (expected %q or %q)", r.Method, ResolverHTTP, ResolverDNS)
	}
	return nil
}
