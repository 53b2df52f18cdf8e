// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/seedmix/internal/app/filter"
)

// Config represents the application configuration.
type Config struct {
	Spotify   SpotifyConfig   `yaml:"spotify"`
	Seeds     SeedsConfig     `yaml:"seeds"`
	Filters   []string        `yaml:"filters"`
	Playlist  PlaylistConfig  `yaml:"playlist"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
	RefreshToken string `yaml:"refresh_token" validate:"required"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// SeedsConfig represents seed artist sources.
type SeedsConfig struct {
	Sources []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// SourceConfig represents a single seed source configuration.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings"`
}

// PlaylistConfig represents playlist build configuration.
type PlaylistConfig struct {
	Name          string `yaml:"name" default:"seedmix"`
	Public        *bool  `yaml:"public" default:"true"`
	MaxIdlePasses int    `yaml:"max_idle_passes" default:"3" validate:"gte=1,lte=20"`
}

// RateLimitConfig represents client-side request throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" default:"10" validate:"gt=0"`
	Burst             int     `yaml:"burst" default:"1" validate:"gte=1"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML content.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	cfg.normalize()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		for i := range c.Seeds.Sources {
			if !strings.HasPrefix(c.Seeds.Sources[i].Type, "lastfm") {
				continue
			}
			if c.Seeds.Sources[i].Settings == nil {
				c.Seeds.Sources[i].Settings = make(map[string]any)
			}
			c.Seeds.Sources[i].Settings["api_key"] = v
		}
	}
}

// normalize lowercases filter names and drops blank entries.
func (c *Config) normalize() {
	filters := make([]string, 0, len(c.Filters))
	for _, name := range c.Filters {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			filters = append(filters, name)
		}
	}
	c.Filters = filters
	for i := range c.Seeds.Sources {
		if c.Seeds.Sources[i].DisplayName == "" {
			c.Seeds.Sources[i].DisplayName = c.Seeds.Sources[i].Type
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	if _, err := filter.ParseSpec(c.Filters); err != nil {
		return errors.Wrap(err, "invalid Filters")
	}
	return nil
}

// IsPublic reports whether created playlists are public. Unset means public.
func (p PlaylistConfig) IsPublic() bool {
	return p.Public == nil || *p.Public
}
