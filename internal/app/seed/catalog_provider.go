package seed

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/domain/artist"
)

type ArtistProviderConfig struct {
	IDs []string `yaml:"ids" mapstructure:"ids" validate:"required,min=1,dive,required"`
}

// ArtistProvider provides a fixed list of artists given as IDs, URIs or URLs.
type ArtistProvider struct {
	config *ArtistProviderConfig
}

// NewArtistProvider creates a new ArtistProvider.
func NewArtistProvider(settings map[string]any) (*ArtistProvider, error) {
	var config ArtistProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &ArtistProvider{config: &config}, nil
}

// Resolve returns the configured artists. Names are unknown until fetched.
func (p *ArtistProvider) Resolve(ctx context.Context) ([]artist.Artist, error) {
	artists := make([]artist.Artist, 0, len(p.config.IDs))
	for _, raw := range p.config.IDs {
		id := artist.ParseID(raw)
		if id == "" {
			zlog.Warn().Msgf("ignoring unparsable artist reference: value=%s", raw)
			continue
		}
		artists = append(artists, artist.Artist{ID: id})
	}
	return artists, nil
}

// Name returns the provider name.
func (p *ArtistProvider) Name() string {
	return "artist"
}

type SearchProviderConfig struct {
	Query string `yaml:"query" mapstructure:"query" validate:"required"`
	Limit int    `yaml:"limit" mapstructure:"limit" default:"1" validate:"gte=1,lte=50"`
}

// SearchProvider provides the best catalog matches for a search query.
type SearchProvider struct {
	catalog Catalog
	config  *SearchProviderConfig
}

// NewSearchProvider creates a new SearchProvider.
func NewSearchProvider(catalog Catalog, settings map[string]any) (*SearchProvider, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	var config SearchProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &SearchProvider{catalog: catalog, config: &config}, nil
}

// Resolve searches the catalog and returns up to the configured number of matches.
func (p *SearchProvider) Resolve(ctx context.Context) ([]artist.Artist, error) {
	artists, err := p.catalog.SearchArtists(ctx, p.config.Query, p.config.Limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search artists: query=%s", p.config.Query)
	}
	if len(artists) > p.config.Limit {
		artists = artists[:p.config.Limit]
	}
	return artists, nil
}

// Name returns the provider name.
func (p *SearchProvider) Name() string {
	return "search"
}

type TopProviderConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit" default:"5" validate:"gte=1,lte=50"`
}

// TopProvider provides the current user's top artists.
type TopProvider struct {
	catalog Catalog
	config  *TopProviderConfig
}

// NewTopProvider creates a new TopProvider.
func NewTopProvider(catalog Catalog, settings map[string]any) (*TopProvider, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	var config TopProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &TopProvider{catalog: catalog, config: &config}, nil
}

// Resolve returns the user's top artists.
func (p *TopProvider) Resolve(ctx context.Context) ([]artist.Artist, error) {
	artists, err := p.catalog.TopArtists(ctx, p.config.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get top artists")
	}
	return artists, nil
}

// Name returns the provider name.
func (p *TopProvider) Name() string {
	return "top"
}

type RelatedProviderConfig struct {
	ArtistID string `yaml:"artist_id" mapstructure:"artist_id" validate:"required_without=Query"`
	Query    string `yaml:"query" mapstructure:"query" validate:"required_without=ArtistID"`
	Limit    int    `yaml:"limit" mapstructure:"limit" default:"5" validate:"gte=1,lte=20"`
}

// RelatedProvider provides artists related to an anchor artist.
// The anchor is given as an ID, or found by search when only a query is set.
type RelatedProvider struct {
	catalog Catalog
	config  *RelatedProviderConfig
}

// NewRelatedProvider creates a new RelatedProvider.
func NewRelatedProvider(catalog Catalog, settings map[string]any) (*RelatedProvider, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	var config RelatedProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &RelatedProvider{catalog: catalog, config: &config}, nil
}

// Resolve returns the related artists of the anchor.
func (p *RelatedProvider) Resolve(ctx context.Context) ([]artist.Artist, error) {
	anchor := artist.ParseID(p.config.ArtistID)
	if anchor == "" {
		matches, err := p.catalog.SearchArtists(ctx, p.config.Query, 1)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to search anchor artist: query=%s", p.config.Query)
		}
		if len(matches) == 0 {
			return nil, errors.Newf("no artist matches query: %s", p.config.Query)
		}
		anchor = matches[0].ID
		zlog.Debug().Msgf("resolved related anchor: query=%s artist=%s", p.config.Query, matches[0])
	}

	artists, err := p.catalog.RelatedArtists(ctx, anchor, p.config.Limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get related artists: artist_id=%s", anchor)
	}
	return artists, nil
}

// Name returns the provider name.
func (p *RelatedProvider) Name() string {
	return "related"
}
