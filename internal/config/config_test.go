package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("TEST_GANDI_KEY", "key-from-env")
	content := `domains:
  - name: Example.com.
    api_key: ${TEST_GANDI_KEY}
    records:
      - name: www
        type: a
        ttl: 300
      - name: "@"
        type: AAAA
        ttl: 3600
`
	cfg, err := Load(writeConfig(t, "yk-ddns.yaml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Domain{{
		Name:   "example.com",
		APIKey: "key-from-env",
		Records: []Record{
			{Name: "www", Type: "A", TTL: 300},
			{Name: "@", Type: "AAAA", TTL: 3600},
		},
	}}
	if diff := cmp.Diff(want, cfg.Domains); diff != "" {
		t.Errorf("domains mismatch (-want +got):\n%s", diff)
	}
	if cfg.Provider != DefaultProvider {
		t.Errorf("expected default provider %q, got %q", DefaultProvider, cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	content := `[[domain]]
name = "example.com"
api_key = "abcdef"

[[domain.record]]
name = "www"
type = "A"
ttl = 300

[[domain]]
name = "example.org"
api_key = "ghijkl"

[[domain.record]]
name = "@"
type = "AAAA"
ttl = 1800
`
	cfg, err := Load(writeConfig(t, "takina.toml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(cfg.Domains))
	}
	if cfg.Domains[1].Records[0] != (Record{Name: "@", Type: "AAAA", TTL: 1800}) {
		t.Errorf("unexpected record: %+v", cfg.Domains[1].Records[0])
	}
	if cfg.RecordCount() != 2 {
		t.Errorf("expected 2 records, got %d", cfg.RecordCount())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_UnknownKeys(t *testing.T) {
	tests := map[string]string{
		"cfg.yaml": "domains:\n  - name: example.com\n    apikey: x\n",
		"cfg.toml": "[[domain]]\nname = \"example.com\"\napikey = \"x\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, name, content)); err == nil {
				t.Fatal("expected error for unknown key, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func validConfig() *Config {
	cfg := &Config{
		Domains: []Domain{{
			Name:    "example.com",
			APIKey:  "secret",
			Records: []Record{{Name: "www", Type: "A", TTL: 300}},
		}},
	}
	cfg.normalize()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"apex record", func(c *Config) { c.Domains[0].Records[0].Name = "@" }, nil},
		{"wildcard record", func(c *Config) { c.Domains[0].Records[0].Name = "*" }, nil},
		{"nested record", func(c *Config) { c.Domains[0].Records[0].Name = "a.b" }, nil},
		{"ttl lower bound", func(c *Config) { c.Domains[0].Records[0].TTL = MinTTL }, nil},
		{"ttl upper bound", func(c *Config) { c.Domains[0].Records[0].TTL = MaxTTL }, nil},
		{"ttl too low", func(c *Config) { c.Domains[0].Records[0].TTL = 299 }, ErrInvalidTTL},
		{"ttl too high", func(c *Config) { c.Domains[0].Records[0].TTL = MaxTTL + 1 }, ErrInvalidTTL},
		{"cname type", func(c *Config) { c.Domains[0].Records[0].Type = "CNAME" }, ErrInvalidType},
		{"unknown type", func(c *Config) { c.Domains[0].Records[0].Type = "BOGUS" }, ErrInvalidType},
		{"bad record name", func(c *Config) { c.Domains[0].Records[0].Name = "bad_name!" }, ErrInvalidRecord},
		{"empty record name", func(c *Config) { c.Domains[0].Records[0].Name = "" }, ErrInvalidRecord},
		{"short api key", func(c *Config) { c.Domains[0].APIKey = "ab" }, ErrMissingAPIKey},
		{"bad domain", func(c *Config) { c.Domains[0].Name = "exa mple.com" }, ErrInvalidDomain},
		{"single label domain", func(c *Config) { c.Domains[0].Name = "localhost" }, ErrInvalidDomain},
		{"no domains", func(c *Config) { c.Domains = nil }, ErrInvalidDomain},
		{"duplicate record", func(c *Config) {
			c.Domains[0].Records = append(c.Domains[0].Records, c.Domains[0].Records[0])
		}, ErrInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error wrapping %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Domains[0].APIKey = ""
	cfg.Domains[0].Records[0].TTL = 10
	cfg.Domains[0].Records[0].Type = "MX"

	err := cfg.Validate()
	for _, want := range []error{ErrMissingAPIKey, ErrInvalidTTL, ErrInvalidType} {
		if !errors.Is(err, want) {
			t.Errorf("expected aggregate to contain %v, got %v", want, err)
		}
	}
}

func TestRecordTypes(t *testing.T) {
	cfg := validConfig()
	cfg.Domains = append(cfg.Domains, Domain{
		Name:    "example.org",
		APIKey:  "secret",
		Records: []Record{{Name: "@", Type: "A", TTL: 300}},
	})

	types := cfg.RecordTypes()
	if !types.Has("A") {
		t.Error("expected A in record types")
	}
	if types.Has("AAAA") {
		t.Error("did not expect AAAA in record types")
	}
}
