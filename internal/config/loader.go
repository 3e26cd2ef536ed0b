package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/numerai-exporter/internal/domain/model"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "NUMERAI_"
	// EnvConfigFile names the optional YAML file.
	EnvConfigFile = EnvPrefix + "CONFIG"

	maxPlaces = 16
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if NUMERAI_CONFIG is set
//  3. env (prefix NUMERAI_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// NUMERAI_UPDATE_INTERVAL -> update_interval (flat keys).
	// List keys take comma-separated values: NUMERAI_PERIODS=1,5,-1.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "periods" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	// Decoding a shorter list onto the defaults would keep their tail.
	cfg.Periods = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if !k.Exists("periods") {
		cfg.Periods = base.Periods
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.UpdateInterval <= 0:
		return fmt.Errorf("%w: update_interval must be positive", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case c.APIURL == "":
		return fmt.Errorf("%w: api_url must not be empty", ErrInvalidConfig)
	case len(c.Periods) == 0:
		return fmt.Errorf("%w: periods must not be empty", ErrInvalidConfig)
	case c.PercentilePlaces < 0 || c.PercentilePlaces > maxPlaces:
		return fmt.Errorf("%w: percentile_places must be within [0, %d]", ErrInvalidConfig, maxPlaces)
	case c.ValuePlaces < 0 || c.ValuePlaces > maxPlaces:
		return fmt.Errorf("%w: value_places must be within [0, %d]", ErrInvalidConfig, maxPlaces)
	case c.ModelConcurrency < 1:
		return fmt.Errorf("%w: model_concurrency must be at least 1", ErrInvalidConfig)
	}
	for _, p := range c.Periods {
		if !model.Period(p).Valid() {
			return fmt.Errorf("%w: period %d must be -1 or positive", ErrInvalidConfig, p)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
