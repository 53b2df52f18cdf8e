// Package seed resolves seed artists from configured sources.
package seed

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/infra/lastfm"
)

// Provider is the interface for seed artist sources.
// Different implementations resolve artists through various strategies
// (e.g., explicit IDs, catalog search, listening history, Last.fm charts).
type Provider interface {
	// Resolve returns the artists this source contributes, in source order.
	Resolve(ctx context.Context) ([]artist.Artist, error)

	// Name returns the provider name (used in config).
	Name() string
}

// Catalog defines the catalog operations needed by seed providers.
type Catalog interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]artist.Artist, error)
	TopArtists(ctx context.Context, limit int) ([]artist.Artist, error)
	RelatedArtists(ctx context.Context, artistID artist.ID, limit int) ([]artist.Artist, error)
}

// LastFmClient defines the Last.fm operations needed by seed providers.
type LastFmClient interface {
	GetSimilarArtists(ctx context.Context, artistName string, limit int) ([]lastfm.Artist, error)
	GetTagTopArtists(ctx context.Context, tagName string, limit int) ([]lastfm.Artist, error)
}

// decodeSettings decodes provider settings into out, then applies defaults and validation.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
