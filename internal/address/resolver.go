package address

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/yuriy-kovalchuk/yk-ddns/internal/config"
)

// NewResolver builds the resolver selected by the configuration.
func NewResolver(cfg config.ResolverConfig) (Resolver, error) {
	timeout := cfg.TimeoutDuration()
	switch cfg.Method {
	case config.ResolverHTTP, "":
		return &HTTPResolver{
			URLs:   map[Family]string{IPv4: cfg.IPv4URL, IPv6: cfg.IPv6URL},
			Client: &http.Client{Timeout: timeout},
		}, nil
	case config.ResolverDNS:
		return &DNSResolver{
			Server:  cfg.DNSServer,
			Name:    cfg.DNSName,
			Timeout: timeout,
		}, nil
	}
	return nil, fmt.Errorf("unknown resolver method %q", cfg.Method)
}

// HTTPResolver asks a per-family echo service (ipify style) for the
// caller's address. The response body is the bare address.
type HTTPResolver struct {
	URLs   map[Family]string
	Client *http.Client
}

func (r *HTTPResolver) Resolve(ctx context.Context, family Family) (netip.Addr, error) {
	endpoint, ok := r.URLs[family]
	if !ok || endpoint == "" {
		return netip.Addr{}, fmt.Errorf("no echo url configured for %s", family)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("GET %s returned status %d", endpoint, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("GET %s: read body: %w", endpoint, err)
	}
	return checkFamily(strings.TrimSpace(string(data)), family)
}

// DNSResolver looks up a special name on a resolver that answers with the
// querying client's address (OpenDNS myip.opendns.com). The query travels
// over the family being resolved so the answer reflects that family's
// public address.
type DNSResolver struct {
	Server  string
	Name    string
	Timeout time.Duration
}

func (r *DNSResolver) Resolve(ctx context.Context, family Family) (netip.Addr, error) {
	qtype := dns.TypeA
	network := "udp4"
	if family == IPv6 {
		qtype = dns.TypeAAAA
		network = "udp6"
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(r.Name), qtype)
	client := &dns.Client{Net: network, Timeout: r.Timeout}

	resp, _, err := client.ExchangeContext(ctx, msg, r.Server)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("query %s %s via %s: %w", r.Name, dns.TypeToString[qtype], r.Server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, fmt.Errorf("query %s via %s: %s", r.Name, r.Server, dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		var ip net.IP
		switch v := rr.(type) {
		case *dns.A:
			ip = v.A
		case *dns.AAAA:
			ip = v.AAAA
		default:
			continue
		}
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		return checkFamily(addr.Unmap().String(), family)
	}
	return netip.Addr{}, fmt.Errorf("query %s via %s: no %s answer", r.Name, r.Server, dns.TypeToString[qtype])
}
