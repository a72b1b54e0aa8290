package gandi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-ddns/internal/dns"
)

const (
	defaultBaseURL   = "https://api.gandi.net"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "yk-ddns"
)

func init() {
	dns.Register("gandi", func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider for Gandi LiveDNS.
type Provider struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       logr.Logger
}

// New creates a LiveDNS provider from the given settings map.
// Optional settings: base_url (default https://api.gandi.net), timeout
// (default 30s), user_agent (default yk-ddns).
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	baseURL := defaultBaseURL
	if v := settings["base_url"]; v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("gandi: invalid base_url %q", v)
		}
		baseURL = strings.TrimRight(v, "/")
	}

	timeout := defaultTimeout
	if v := settings["timeout"]; v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("gandi: invalid timeout %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("gandi: timeout must be positive, got %s", parsed)
		}
		timeout = parsed
	}

	userAgent := defaultUserAgent
	if v := settings["user_agent"]; v != "" {
		userAgent = v
	}

	return &Provider{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}, nil
}

// rrsetBody is the JSON body of create and update calls.
type rrsetBody struct {
	Values []string `json:"rrset_values"`
	TTL    int      `json:"rrset_ttl"`
}

func (p *Provider) recordPath(zone dns.Zone, name, recordType string) string {
	return fmt.Sprintf("%s/v5/livedns/domains/%s/records/%s/%s",
		p.baseURL, url.PathEscape(zone.Name), url.PathEscape(name), url.PathEscape(recordType))
}

// doRequest builds and executes an HTTP request against the LiveDNS API and
// returns the status code and the complete body.
func (p *Provider) doRequest(ctx context.Context, zone dns.Zone, method, endpoint string, body interface{}) (*dns.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gandi: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("gandi: build request: %w", err)
	}

	req.Header.Set("Authorization", "Apikey "+zone.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gandi: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gandi: %s %s: read body: %w", method, endpoint, err)
	}

	p.log.V(1).Info("api call", "method", method, "url", endpoint, "status", resp.StatusCode)
	return &dns.Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Fetch retrieves the current rrset for a name/type pair.
func (p *Provider) Fetch(ctx context.Context, zone dns.Zone, name, recordType string) (*dns.Response, error) {
	return p.doRequest(ctx, zone, http.MethodGet, p.recordPath(zone, name, recordType), nil)
}

// Create adds a new rrset.
func (p *Provider) Create(ctx context.Context, zone dns.Zone, rrset dns.RRSet) (*dns.Response, error) {
	body := rrsetBody{Values: rrset.Values, TTL: rrset.TTL}
	return p.doRequest(ctx, zone, http.MethodPost, p.recordPath(zone, rrset.Name, rrset.Type), body)
}

// Update replaces an existing rrset.
func (p *Provider) Update(ctx context.Context, zone dns.Zone, rrset dns.RRSet) (*dns.Response, error) {
	body := rrsetBody{Values: rrset.Values, TTL: rrset.TTL}
	return p.doRequest(ctx, zone, http.MethodPut, p.recordPath(zone, rrset.Name, rrset.Type), body)
}
