package dandi

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk client configuration.
type Config struct {
	// BaseURL overrides the archive instance. Empty means production.
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each API call. Zero means no timeout.
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration with YAML support for both "30s" strings and
// bare integer seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		var i int
		if err := value.Decode(&i); err != nil {
			return fmt.Errorf("invalid duration %q", value.Value)
		}
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// NewClient builds a client from the config.
func (cfg *Config) NewClient() *Client {
	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout.Duration()}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return NewClient(opts...)
}
