// Package config defines exporter configuration and its loading.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and NUMERAI_ env vars over the defaults.
// - Validation failures wrap ErrInvalidConfig; load failures wrap ErrLoadConfig.
package config

import (
	"time"

	"github.com/okian/numerai-exporter/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the metrics HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// UpdateInterval is the time between two collection passes.
	UpdateInterval time.Duration `koanf:"update_interval"`

	// APIURL is the tournament GraphQL endpoint.
	APIURL string `koanf:"api_url"`

	// PublicID and Secret authenticate against the API. Both empty means anonymous.
	PublicID string `koanf:"public_id"`
	Secret   string `koanf:"secret"`

	// RequestTimeout bounds a single API request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// TournamentID selects the tournament; 11 is Signals.
	TournamentID int `koanf:"tournament_id"`

	// Namespace and Subsystem prefix every exported metric name.
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`

	// Periods lists lookback windows in rounds; -1 means all rounds.
	Periods []int `koanf:"periods"`

	// PercentilePlaces and ValuePlaces set the decimal places of period means.
	PercentilePlaces int `koanf:"percentile_places"`
	ValuePlaces      int `koanf:"value_places"`

	// ZeroIsAbsent treats a zero quantity like a missing one.
	ZeroIsAbsent bool `koanf:"zero_is_absent"`

	// ModelConcurrency caps how many models are processed in parallel.
	ModelConcurrency int `koanf:"model_concurrency"`

	// NMRPriceEnabled publishes the NMR/USD price each pass.
	NMRPriceEnabled bool `koanf:"nmr_price_enabled"`
}

// New creates a Config with defaults.
func New() *Config {
	periods := model.DefaultPeriods()
	ints := make([]int, len(periods))
	for i, p := range periods {
		ints[i] = int(p)
	}
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8000",
		UpdateInterval:   60 * time.Second,
		APIURL:           "https://api-tournament.numer.ai",
		RequestTimeout:   30 * time.Second,
		TournamentID:     11,
		Namespace:        "numerai",
		Subsystem:        "signals",
		Periods:          ints,
		PercentilePlaces: 1,
		ValuePlaces:      4,
		ZeroIsAbsent:     true,
		ModelConcurrency: 1,
		NMRPriceEnabled:  true,
	}
}

// PeriodList returns Periods as domain periods.
func (c *Config) PeriodList() []model.Period {
	out := make([]model.Period, len(c.Periods))
	for i, p := range c.Periods {
		out[i] = model.Period(p)
	}
	return out
}
