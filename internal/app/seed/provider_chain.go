package seed

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/domain/artist"
)

// ErrNoSeeds is returned when no provider yields a seed artist.
var ErrNoSeeds = errors.New("no seed artists resolved")

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// Chain resolves seed artists from all providers in order.
type Chain struct {
	providers []ProviderWithMetadata
}

// NewChain creates a new provider chain.
func NewChain(providers []ProviderWithMetadata) *Chain {
	return &Chain{
		providers: providers,
	}
}

// Resolve collects artists from every provider, in provider order, without duplicates.
// A failing provider is skipped.
func (c *Chain) Resolve(ctx context.Context) ([]artist.Artist, error) {
	var all []artist.Artist
	var lastErr error

	for i, pm := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "seed resolution cancelled")
		}
		zlog.Debug().Msgf("trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		artists, err := pm.Provider.Resolve(ctx)
		if err != nil {
			zlog.Warn().Msgf("provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			lastErr = err
			continue
		}

		if len(artists) == 0 {
			zlog.Debug().Msgf("provider returned no artists: provider=%s", pm.DisplayName)
			continue
		}

		before := len(all)
		all = artist.Dedup(append(all, artists...))
		zlog.Info().Msgf("provider returned artists: provider=%s count=%d added=%d total_so_far=%d",
			pm.DisplayName, len(artists), len(all)-before, len(all))
	}

	if len(all) == 0 {
		if lastErr != nil {
			return nil, errors.Mark(errors.Wrap(lastErr, "all providers failed"), ErrNoSeeds)
		}
		return nil, ErrNoSeeds
	}

	return all, nil
}

// Len returns the number of providers in the chain.
func (c *Chain) Len() int {
	return len(c.providers)
}
