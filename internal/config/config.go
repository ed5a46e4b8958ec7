package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jdenly/basiq-api/client"
)

// Prefix is prepended to every environment variable, e.g. BASIQ_API_KEY.
const Prefix = "BASIQ"

// Config holds settings for talking to the Basiq API.
type Config struct {
	// APIKey is the pre-encoded credential sent as "Authorization: Basic <APIKey>".
	APIKey     string `envconfig:"API_KEY" required:"true"`
	BaseURL    string `envconfig:"BASE_URL" default:"https://au-api.basiq.io"`
	APIVersion string `envconfig:"API_VERSION" default:"2.0"`

	// VersionHeader is "token" (header on the token call only) or "all".
	VersionHeader string `envconfig:"VERSION_HEADER" default:"token"`

	// HTTPTimeout of zero leaves requests bounded only by their context.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`

	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	AwaitTimeout time.Duration `envconfig:"AWAIT_TIMEOUT" default:"2m"`
	Debug        bool          `envconfig:"DEBUG" default:"false"`
}

// New loads Config from BASIQ_* environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Str("api_version", cfg.APIVersion).
		Str("version_header", cfg.VersionHeader).
		Dur("http_timeout", cfg.HTTPTimeout).
		Dur("await_timeout", cfg.AwaitTimeout).
		Bool("api_key_present", cfg.APIKey != "").
		Msg("config loaded")

	return &cfg, nil
}

// Validate checks the enumerated settings. The API key itself is opaque.
func (c *Config) Validate() error {
	if _, err := client.ParseVersionHeaderScope(c.VersionHeader); err != nil {
		return fmt.Errorf("BASIQ_VERSION_HEADER: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("BASIQ_LOG_LEVEL: %w", err)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("BASIQ_HTTP_TIMEOUT must not be negative: %s", c.HTTPTimeout)
	}
	return nil
}

// Level returns the parsed zerolog level.
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.LogLevel)
}

// ClientOptions translates the config into client options.
func (c *Config) ClientOptions() []client.Option {
	// Validate has already rejected unknown scopes.
	scope, _ := client.ParseVersionHeaderScope(c.VersionHeader)
	opts := []client.Option{
		client.WithBaseURL(c.BaseURL),
		client.WithAPIVersion(c.APIVersion),
		client.WithVersionHeaderScope(scope),
	}
	if c.HTTPTimeout > 0 {
		opts = append(opts, client.WithHTTPTimeout(c.HTTPTimeout))
	}
	if c.Debug {
		opts = append(opts, client.WithDebugLogging(true))
	}
	return opts
}

// NewClient builds a client from the config.
func (c *Config) NewClient(extra ...client.Option) *client.Client {
	return client.New(c.APIKey, append(c.ClientOptions(), extra...)...)
}
