package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/miekg/dns"
	"go.yaml.in/yaml/v3"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation"
)

// TTL bounds accepted by LiveDNS.
const (
	MinTTL = 300
	MaxTTL = 2_592_000
)

var (
	ErrInvalidDomain = errors.New("invalid domain")
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidType   = errors.New("invalid record type")
	ErrInvalidTTL    = errors.New("invalid TTL")
	ErrMissingAPIKey = errors.New("missing api key")
)

// Config is the complete description of what the updater keeps in sync.
type Config struct {
	Provider string            `yaml:"provider" toml:"provider"`
	Settings map[string]string `yaml:"settings" toml:"settings"`
	Resolver ResolverConfig    `yaml:"resolver" toml:"resolver"`
	Domains  []Domain          `yaml:"domains" toml:"domain"`
}

// Domain is a zone hosted by the provider and the records managed in it.
type Domain struct {
	Name    string   `yaml:"name" toml:"name"`
	APIKey  string   `yaml:"api_key" toml:"api_key"`
	Records []Record `yaml:"records" toml:"record"`
}

// Record is the desired state of one address record.
type Record struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"`
	TTL  int    `yaml:"ttl" toml:"ttl"`
}

// Load reads a configuration file, applies defaults and expands ${ENV}
// references. The format is picked from the extension: .toml for TOML,
// anything else is parsed as YAML. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parsing config file: unknown keys %v", undecoded)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	for k, v := range c.Settings {
		c.Settings[k] = os.ExpandEnv(v)
	}
	c.Resolver.applyDefaults()

	for i := range c.Domains {
		d := &c.Domains[i]
		d.Name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(d.Name), "."))
		d.APIKey = strings.TrimSpace(os.ExpandEnv(d.APIKey))
		for j := range d.Records {
			r := &d.Records[j]
			r.Name = strings.ToLower(strings.TrimSpace(r.Name))
			r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
		}
	}
}

// Validate reports every problem found in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Resolver.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Domains) == 0 {
		errs = append(errs, fmt.Errorf("%w: no domains configured", ErrInvalidDomain))
	}
	for _, d := range c.Domains {
		errs = append(errs, d.validate()...)
	}
	return utilerrors.NewAggregate(errs)
}

func (d *Domain) validate() []error {
	var errs []error
	if msgs := validation.IsDNS1123Subdomain(d.Name); len(msgs) > 0 {
		errs = append(errs, fmt.Errorf("%w %q: %s", ErrInvalidDomain, d.Name, strings.Join(msgs, "; ")))
	} else if dns.CountLabel(d.Name) < 2 {
		errs = append(errs, fmt.Errorf("%w %q: expected at least two labels", ErrInvalidDomain, d.Name))
	}
	if len(d.APIKey) < 3 {
		errs = append(errs, fmt.Errorf("%w for domain %q", ErrMissingAPIKey, d.Name))
	}

	seen := sets.New[string]()
	for _, r := range d.Records {
		key := r.Name + "/" + r.Type
		if seen.Has(key) {
			errs = append(errs, fmt.Errorf("%w %s in %q: duplicate name/type pair", ErrInvalidRecord, key, d.Name))
		}
		seen.Insert(key)
		errs = append(errs, r.validate(d.Name)...)
	}
	return errs
}

func (r *Record) validate(domain string) []error {
	var errs []error
	if !validRecordName(r.Name) {
		errs = append(errs, fmt.Errorf("%w name %q in %q", ErrInvalidRecord, r.Name, domain))
	}
	if t, ok := dns.StringToType[r.Type]; !ok || (t != dns.TypeA && t != dns.TypeAAAA) {
		errs = append(errs, fmt.Errorf("%w %q for %s.%s: expected A or AAAA", ErrInvalidType, r.Type, r.Name, domain))
	}
	if r.TTL < MinTTL || r.TTL > MaxTTL {
		errs = append(errs, fmt.Errorf("%w %d for %s.%s: must be between %d and %d", ErrInvalidTTL, r.TTL, r.Name, domain, MinTTL, MaxTTL))
	}
	return errs
}

// validRecordName accepts the apex marker, a wildcard, or a relative DNS name.
func validRecordName(name string) bool {
	switch name {
	case "@", "*":
		return true
	case "":
		return false
	}
	if strings.HasPrefix(name, "*.") {
		return len(validation.IsWildcardDNS1123Subdomain(name)) == 0
	}
	return len(validation.IsDNS1123Subdomain(name)) == 0
}

// RecordTypes returns the set of record types used by at least one record.
func (c *Config) RecordTypes() sets.Set[string] {
	types := sets.New[string]()
	for _, d := range c.Domains {
		for _, r := range d.Records {
			types.Insert(r.Type)
		}
	}
	return types
}

// RecordCount returns the number of configured records across all domains.
func (c *Config) RecordCount() int {
	n := 0
	for _, d := range c.Domains {
		n += len(d.Records)
	}
	return n
}
