package seed

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/infra/lastfm"
)

type LastFmSimilarProviderConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	Artist string `yaml:"artist" mapstructure:"artist" validate:"required"`
	Limit  int    `yaml:"limit" mapstructure:"limit" default:"5" validate:"gte=1,lte=50"`
}

type LastFmTagProviderConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	Tag    string `yaml:"tag" mapstructure:"tag" validate:"required"`
	Limit  int    `yaml:"limit" mapstructure:"limit" default:"5" validate:"gte=1,lte=50"`
}

// nameResolver maps Last.fm artist names to catalog artists.
type nameResolver struct {
	catalog Catalog

	// Cache for catalog search results; nil entries record misses
	cache   map[string]*artist.Artist
	cacheMu sync.RWMutex
}

func newNameResolver(catalog Catalog) *nameResolver {
	return &nameResolver{catalog: catalog, cache: make(map[string]*artist.Artist)}
}

// resolve searches each name and keeps the first match. Names without a match are skipped.
func (r *nameResolver) resolve(ctx context.Context, names []string) []artist.Artist {
	artists := make([]artist.Artist, 0, len(names))
	for _, name := range names {
		if a := r.lookup(ctx, name); a != nil {
			artists = append(artists, *a)
		}
	}
	return artists
}

func (r *nameResolver) lookup(ctx context.Context, name string) *artist.Artist {
	key := strings.ToLower(name)

	r.cacheMu.RLock()
	if cached, ok := r.cache[key]; ok {
		r.cacheMu.RUnlock()
		return cached
	}
	r.cacheMu.RUnlock()

	var found *artist.Artist
	matches, err := r.catalog.SearchArtists(ctx, name, 1)
	switch {
	case err != nil:
		zlog.Debug().Msgf("catalog search failed: name=%s error=%v", name, err)
		// Errors are not cached so a later resolve can retry
		return nil
	case len(matches) == 0:
		zlog.Debug().Msgf("no catalog match: name=%s", name)
	default:
		found = &matches[0]
	}

	r.cacheMu.Lock()
	r.cache[key] = found
	r.cacheMu.Unlock()
	return found
}

// LastFmSimilarProvider provides artists Last.fm considers similar to a named artist.
type LastFmSimilarProvider struct {
	lastfm   LastFmClient
	resolver *nameResolver
	config   *LastFmSimilarProviderConfig
}

// NewLastFmSimilarProvider creates a new LastFmSimilarProvider.
func NewLastFmSimilarProvider(catalog Catalog, settings map[string]any) (*LastFmSimilarProvider, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	var config LastFmSimilarProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	lastfmClient, err := lastfm.New(lastfm.Config{APIKey: config.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create last.fm client")
	}

	return &LastFmSimilarProvider{
		lastfm:   lastfmClient,
		resolver: newNameResolver(catalog),
		config:   &config,
	}, nil
}

// Resolve returns the similar artists found in the catalog, most similar first.
func (p *LastFmSimilarProvider) Resolve(ctx context.Context) ([]artist.Artist, error) {
	similar, err := p.lastfm.GetSimilarArtists(ctx, p.config.Artist, p.config.Limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get similar artists: artist=%s", p.config.Artist)
	}
	return p.resolver.resolve(ctx, names(similar)), nil
}

// Name returns the provider name.
func (p *LastFmSimilarProvider) Name() string {
	return "lastfm_similar"
}

// LastFmTagProvider provides the top artists of a Last.fm tag.
type LastFmTagProvider struct {
	lastfm   LastFmClient
	resolver *nameResolver
	config   *LastFmTagProviderConfig
}

// NewLastFmTagProvider creates a new LastFmTagProvider.
func NewLastFmTagProvider(catalog Catalog, settings map[string]any) (*LastFmTagProvider, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	var config LastFmTagProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	lastfmClient, err := lastfm.New(lastfm.Config{APIKey: config.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create last.fm client")
	}

	return &LastFmTagProvider{
		lastfm:   lastfmClient,
		resolver: newNameResolver(catalog),
		config:   &config,
	}, nil
}

// Resolve returns the tag's top artists found in the catalog.
func (p *LastFmTagProvider) Resolve(ctx context.Context) ([]artist.Artist, error) {
	top, err := p.lastfm.GetTagTopArtists(ctx, p.config.Tag, p.config.Limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get tag top artists: tag=%s", p.config.Tag)
	}
	return p.resolver.resolve(ctx, names(top)), nil
}

// Name returns the provider name.
func (p *LastFmTagProvider) Name() string {
	return "lastfm_tag"
}

func names(artists []lastfm.Artist) []string {
	result := make([]string, 0, len(artists))
	for _, a := range artists {
		result = append(result, a.Name)
	}
	return result
}
