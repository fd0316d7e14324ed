package market

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"swapstats-api/pkg/confkit"
)

// Config lists the price reference sources and names the one gecko_source
// reads from.
type Config struct {
	Default   string                     `yaml:"default"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig is one source. Fields a source type does not use are ignored.
type ProviderConfig struct {
	Type       string        `yaml:"type"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	File       string        `yaml:"file"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// ProviderBuilder constructs a Provider from its configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (Provider, error)

var builders sync.Map // normalised type name -> ProviderBuilder

// RegisterProvider makes a source type available to configs. Sources call it
// from init.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	builders.Store(normaliseType(typeName), builder)
}

func builderFor(typeName string) (ProviderBuilder, bool) {
	v, ok := builders.Load(normaliseType(typeName))
	if !ok {
		return nil, false
	}
	return v.(ProviderBuilder), true
}

func normaliseType(typeName string) string {
	return strings.ToLower(strings.TrimSpace(typeName))
}

// LoadConfig reads and validates a market config file.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("market: read config: %w", err)
	}
	return ParseConfig(data)
}

// MustLoad reads etc/market.yaml from the project root and panics on error.
func MustLoad() *Config {
	cfg, err := LoadConfig(confkit.MustProjectPath("etc/market.yaml"))
	if err != nil {
		panic(err)
	}
	return cfg
}

// ParseConfig decodes YAML after expanding ${ENV} placeholders, then parses
// timeouts and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("market: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every source and settles the default: a lone source
// becomes the default when none is named.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market: providers cannot be empty")
	}
	if c.Default == "" && len(c.Providers) == 1 {
		for name := range c.Providers {
			c.Default = name
		}
	}
	if _, ok := c.Providers[c.Default]; !ok {
		return fmt.Errorf("market: default provider %q not defined", c.Default)
	}
	for name, p := range c.Providers {
		if err := p.prepare(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) prepare(name string) error {
	switch {
	case p == nil:
		return fmt.Errorf("market: provider %s is empty", name)
	case p.BatchSize < 0 || p.MaxRetries < 0:
		return fmt.Errorf("market: provider %s batch_size and max_retries must not be negative", name)
	}
	if _, ok := builderFor(p.Type); !ok {
		return fmt.Errorf("market: provider %s has unsupported type %q", name, p.Type)
	}
	if raw := strings.TrimSpace(p.TimeoutRaw); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return fmt.Errorf("market: provider %s has invalid timeout %q", name, raw)
		}
		p.Timeout = d
	}
	return nil
}

// BuildProviders instantiates every configured source.
func (c *Config) BuildProviders() (map[string]Provider, error) {
	out := make(map[string]Provider, len(c.Providers))
	for name, cfg := range c.Providers {
		builder, ok := builderFor(cfg.Type)
		if !ok {
			return nil, fmt.Errorf("market: provider %s has unsupported type %q", name, cfg.Type)
		}
		p, err := builder(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("market: provider %s: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}
