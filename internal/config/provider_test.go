package config

import (
	"testing"
	"time"
)

func TestResolverDefaults(t *testing.T) {
	content := `domains:
  - name: example.com
    api_key: secret
    records:
      - {name: www, type: A, ttl: 300}
`
	cfg, err := Load(writeConfig(t, "yk-ddns.yaml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := cfg.Resolver
	if r.Method != ResolverHTTP {
		t.Errorf("expected method %q, got %q", ResolverHTTP, r.Method)
	}
	if r.IPv4URL != defaultIPv4URL {
		t.Errorf("expected ipv4_url %q, got %q", defaultIPv4URL, r.IPv4URL)
	}
	if r.IPv6URL != defaultIPv6URL {
		t.Errorf("expected ipv6_url %q, got %q", defaultIPv6URL, r.IPv6URL)
	}
	if r.TimeoutDuration() != 10*time.Second {
		t.Errorf("expected timeout 10s, got %s", r.TimeoutDuration())
	}
}

func TestProviderSettings_ExpandEnv(t *testing.T) {
	t.Setenv("TEST_LIVEDNS_URL", "https://api.sandbox.gandi.net")
	content := `provider: gandi
settings:
  base_url: ${TEST_LIVEDNS_URL}
  timeout: 5s
resolver:
  method: dns
  dns_server: 127.0.0.1:5353
domains:
  - name: example.com
    api_key: secret
    records:
      - {name: www, type: A, ttl: 300}
`
	cfg, err := Load(writeConfig(t, "yk-ddns.yml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Settings["base_url"] != "https://api.sandbox.gandi.net" {
		t.Errorf("expected expanded base_url, got %q", cfg.Settings["base_url"])
	}
	if cfg.Resolver.Method != ResolverDNS {
		t.Errorf("expected method %q, got %q", ResolverDNS, cfg.Resolver.Method)
	}
	if cfg.Resolver.DNSName != defaultDNSName {
		t.Errorf("expected default dns_name, got %q", cfg.Resolver.DNSName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestResolverValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ResolverConfig
		wantErr bool
	}{
		{"http defaults", ResolverConfig{}, false},
		{"dns defaults", ResolverConfig{Method: ResolverDNS}, false},
		{"unknown method", ResolverConfig{Method: "stun"}, true},
		{"bad timeout", ResolverConfig{Timeout: "later"}, true},
		{"zero timeout", ResolverConfig{Timeout: "0s"}, true},
		{"bad echo url", ResolverConfig{IPv4URL: "ftp://example.com"}, true},
		{"dns server without port", ResolverConfig{Method: ResolverDNS, DNSServer: "1.1.1.1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.cfg
			r.applyDefaults()
			err := r.validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
