package seed

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/infra/config"
)

// NewChainFromConfig creates a provider chain from configuration.
func NewChainFromConfig(cfg *config.Config, catalog Catalog) (*Chain, error) {
	if len(cfg.Seeds.Sources) == 0 {
		return nil, errors.New("no seed sources configured")
	}

	var providers []ProviderWithMetadata

	for i, scfg := range cfg.Seeds.Sources {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating seed provider: index=%d type=%s", i+1, scfg.Type)
		switch scfg.Type {
		case "artist":
			provider, err = NewArtistProvider(scfg.Settings)

		case "search":
			provider, err = NewSearchProvider(catalog, scfg.Settings)

		case "top":
			provider, err = NewTopProvider(catalog, scfg.Settings)

		case "related":
			provider, err = NewRelatedProvider(catalog, scfg.Settings)

		case "lastfm_similar":
			provider, err = NewLastFmSimilarProvider(catalog, scfg.Settings)

		case "lastfm_tag":
			provider, err = NewLastFmTagProvider(catalog, scfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, scfg.Type)
		}

		displayName := scfg.DisplayName
		if displayName == "" {
			displayName = provider.Name()
		}
		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: displayName,
		})

		zlog.Info().Msgf("registered seed provider: index=%d type=%s display_name=%s", i+1, scfg.Type, displayName)
	}

	return NewChain(providers), nil
}
