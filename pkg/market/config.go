package market

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"yidino-api/pkg/confkit"
)

// Config lists the external data sources available to the service.
type Config struct {
	Sources map[string]*SourceConfig `yaml:"sources"`
}

// SourceConfig configures a single upstream API.
type SourceConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	// ID is the opaque identifier the source is queried with: coin id, pair
	// address, mint address, twitter username or telegram chat id.
	ID     string `yaml:"id"`
	APIKey string `yaml:"api_key"`

	TimeoutRaw     string        `yaml:"timeout"`
	Timeout        time.Duration `yaml:"-"`
	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	MaxRetries     int           `yaml:"max_retries"`
}

// Source is anything the registry can build. Concrete sources additionally
// implement CoinSource, PairSource, ChainSource or a package specific contract.
type Source interface {
	SourceName() string
}

// SourceBuilder constructs a Source from configuration.
type SourceBuilder func(name string, cfg *SourceConfig) (Source, error)

var (
	sourceRegistry   = make(map[string]SourceBuilder)
	sourceRegistryMu sync.RWMutex
)

// RegisterSource registers a source constructor under a type name.
func RegisterSource(typeName string, builder SourceBuilder) {
	sourceRegistryMu.Lock()
	defer sourceRegistryMu.Unlock()
	sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupSourceBuilder(typeName string) (SourceBuilder, bool) {
	sourceRegistryMu.RLock()
	defer sourceRegistryMu.RUnlock()
	builder, ok := sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads the sources file from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader decodes, expands and validates a sources document.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Sources == nil {
		c.Sources = make(map[string]*SourceConfig)
	}
	for name, src := range c.Sources {
		if src == nil {
			src = &SourceConfig{}
			c.Sources[name] = src
		}
		src.expandEnv()
		if err := src.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SourceConfig) expandEnv() {
	s.Type = strings.TrimSpace(os.ExpandEnv(s.Type))
	s.BaseURL = strings.TrimSpace(os.ExpandEnv(s.BaseURL))
	s.ID = strings.TrimSpace(os.ExpandEnv(s.ID))
	s.APIKey = strings.TrimSpace(os.ExpandEnv(s.APIKey))
	s.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(s.TimeoutRaw))
	s.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(s.HTTPTimeoutRaw))
}

func (s *SourceConfig) parseDurations(name string) error {
	parse := func(field, raw string) (time.Duration, error) {
		if raw == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("market source %s: invalid %s %q: %w", name, field, raw, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("market source %s: %s must be positive, got %s", name, field, d)
		}
		return d, nil
	}
	var err error
	if s.Timeout, err = parse("timeout", s.TimeoutRaw); err != nil {
		return err
	}
	if s.HTTPTimeout, err = parse("http_timeout", s.HTTPTimeoutRaw); err != nil {
		return err
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("market config: sources cannot be empty")
	}
	for name, src := range c.Sources {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("market config: source name cannot be empty")
		}
		if src == nil {
			return fmt.Errorf("market config: source %s is nil", name)
		}
		if src.Type == "" {
			return fmt.Errorf("market config: source %s must specify type", name)
		}
		if _, ok := lookupSourceBuilder(src.Type); !ok {
			return fmt.Errorf("market config: source %s has unsupported type %q", name, src.Type)
		}
		if src.MaxRetries < 0 {
			return fmt.Errorf("market config: source %s max_retries cannot be negative", name)
		}
	}
	return nil
}

// SourcesOfType returns the configs of the given type keyed by name.
func (c *Config) SourcesOfType(typeName string) map[string]*SourceConfig {
	out := make(map[string]*SourceConfig)
	for name, src := range c.Sources {
		if src != nil && strings.EqualFold(src.Type, typeName) {
			out[name] = src
		}
	}
	return out
}

// BuildSources instantiates every configured source.
func (c *Config) BuildSources() (map[string]Source, error) {
	result := make(map[string]Source, len(c.Sources))
	for name, srcCfg := range c.Sources {
		builder, ok := lookupSourceBuilder(srcCfg.Type)
		if !ok {
			return nil, fmt.Errorf("market source %s: unsupported type %q", name, srcCfg.Type)
		}
		src, err := builder(name, srcCfg)
		if err != nil {
			return nil, fmt.Errorf("market source %s: %w", name, err)
		}
		result[name] = src
	}
	return result, nil
}

// FindSource returns the first source (by name order) implementing T.
func FindSource[T any](sources map[string]Source) (T, bool) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if typed, ok := sources[name].(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// BuildAggregator wires the first coin, pair and chain source found.
func BuildAggregator(sources map[string]Source, opts ...AggregatorOption) *Aggregator {
	wired := make([]AggregatorOption, 0, 3+len(opts))
	if src, ok := FindSource[CoinSource](sources); ok {
		wired = append(wired, WithCoinSource(src))
	}
	if src, ok := FindSource[PairSource](sources); ok {
		wired = append(wired, WithPairSource(src))
	}
	if src, ok := FindSource[ChainSource](sources); ok {
		wired = append(wired, WithChainSource(src))
	}
	return NewAggregator(append(wired, opts...)...)
}

// IsPlaceholder reports whether an identifier is unset or still the
// "YOUR_..." template value shipped in sample configs.
func IsPlaceholder(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || strings.HasPrefix(strings.ToUpper(id), "YOUR_")
}
