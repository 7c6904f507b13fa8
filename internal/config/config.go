// Package config loads run configuration from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var (
	// ErrInvalid is returned when a configuration value is malformed or out
	// of range.
	ErrInvalid = errors.New("invalid configuration")

	// ErrMissingAPIKey is returned when LASTFM_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing LASTFM_API_KEY environment variable")
)

// Config holds every setting of a run.
type Config struct {
	LastFMAPIKey string `envconfig:"LASTFM_API_KEY"`

	// MaxTags caps the tags kept per Last.fm answer.
	MaxTags int `envconfig:"GENREFIXER_MAX_TAGS" default:"20" validate:"min=1,max=1000"`
	// MinScrobs is the exclusive lower bound on a tag's popularity.
	MinScrobs int  `envconfig:"GENREFIXER_MIN_SCROBS" default:"5" validate:"min=0"`
	SetGenre  bool `envconfig:"GENREFIXER_SET_GENRE" default:"true"`

	// GenreTable overrides the embedded canonical genre table.
	GenreTable string `envconfig:"GENREFIXER_GENRE_TABLE"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	SpotifyID     string `envconfig:"SPOTIFY_ID"`
	SpotifySecret string `envconfig:"SPOTIFY_SECRET" validate:"required_with=SpotifyID"`

	LogLevel  string `envconfig:"GENREFIXER_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"GENREFIXER_LOG_FORMAT" default:"console" validate:"oneof=console json"`

	// ListenAddr is empty unless set, leaving the server on its loopback default.
	ListenAddr string `envconfig:"GENREFIXER_ADDR"`
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks value ranges. It is called again after flags or the
// dialog have changed the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// RequireLastFM returns ErrMissingAPIKey when no Last.fm key is configured.
func (c *Config) RequireLastFM() error {
	if c.LastFMAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// HasSpotify reports whether Spotify catalog credentials are configured.
func (c *Config) HasSpotify() bool {
	return c.SpotifyID != "" && c.SpotifySecret != ""
}
