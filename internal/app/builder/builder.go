// Package builder materializes a playlist from seed artists by round-robin selection.
package builder

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/seedmix/internal/app/filter"
	"github.com/osa030/seedmix/internal/app/selection"
	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/domain/playlist"
	"github.com/osa030/seedmix/internal/infra/metrics"
)

// TargetSize is the number of tracks after which a build stops collecting.
// A pass is always completed, so a playlist may exceed it by len(seeds)-1.
const TargetSize = 20

// DefaultMaxIdlePasses is used when Config.MaxIdlePasses is not positive.
const DefaultMaxIdlePasses = 3

// Errors
var (
	ErrSelectionExhausted = errors.New("no seed artist yielded a track")
	ErrNoSeedArtists      = errors.New("no seed artists given")
)

// Catalog defines the catalog operations needed to build a playlist.
type Catalog interface {
	selection.Catalog
	CreatePlaylist(ctx context.Context, ownerID, name string, public bool) (string, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
}

// Config holds builder configuration.
type Config struct {
	OwnerID       string // User that owns created playlists, resolved once at startup
	Public        bool   // Visibility of created playlists
	MaxIdlePasses int    // Consecutive passes without a new track before giving up
}

// Builder builds playlists from seed artists.
type Builder struct {
	catalog Catalog
	config  Config
	metrics *metrics.Metrics
}

// New creates a new playlist builder. m may be nil.
func New(catalog Catalog, config Config, m *metrics.Metrics) *Builder {
	if config.MaxIdlePasses <= 0 {
		config.MaxIdlePasses = DefaultMaxIdlePasses
	}
	return &Builder{
		catalog: catalog,
		config:  config,
		metrics: m,
	}
}

// Build collects one top-ranked track per seed artist per pass until at least
// TargetSize tracks are collected, then creates a playlist named name and adds
// the tracks to it in one call.
func (b *Builder) Build(ctx context.Context, seeds []artist.ID, spec filter.Spec, name string) (*playlist.Playlist, error) {
	trackIDs, err := b.Collect(ctx, seeds, spec)
	if err != nil {
		return nil, err
	}

	playlistID, err := b.catalog.CreatePlaylist(ctx, b.config.OwnerID, name, b.config.Public)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playlist")
	}
	zlog.Info().Msgf("playlist created: id=%s name=%q", playlistID, name)

	if err := b.catalog.AddTracksToPlaylist(ctx, playlistID, trackIDs); err != nil {
		return nil, errors.Wrapf(err, "failed to add tracks to playlist %s", playlistID)
	}
	zlog.Info().Msgf("tracks added to playlist: id=%s count=%d", playlistID, len(trackIDs))
	b.metrics.PlaylistBuilt()

	return &playlist.Playlist{
		ID:       playlistID,
		Name:     name,
		Owner:    b.config.OwnerID,
		Public:   b.config.Public,
		TrackIDs: trackIDs,
	}, nil
}

// Collect runs the selection passes of Build without touching any playlist.
func (b *Builder) Collect(ctx context.Context, seeds []artist.ID, spec filter.Spec) ([]string, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeedArtists
	}

	selector := selection.NewSelector(b.catalog, spec)
	trackIDs := make([]string, 0, TargetSize+len(seeds)-1)
	idlePasses := 0
	var lastErr error

	for pass := 1; len(trackIDs) < TargetSize; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "build cancelled")
		}

		added := 0
		for _, artistID := range seeds {
			t, ok, err := selector.TopTrack(ctx, artistID)
			if err != nil {
				// A failing artist contributes nothing this pass
				lastErr = err
				b.metrics.CatalogError(metrics.ModePlaylist)
				zlog.Warn().Msgf("skipping artist for this pass: pass=%d artist=%s error=%v", pass, artistID, err)
				continue
			}
			if !ok {
				zlog.Debug().Msgf("artist has no tracks: pass=%d artist=%s", pass, artistID)
				continue
			}
			trackIDs = append(trackIDs, t.ID)
			added++
			b.metrics.TrackSelected(metrics.ModePlaylist)
			zlog.Debug().Msgf("track selected: pass=%d artist=%s track=%s name=%q", pass, artistID, t.ID, t.Name)
		}

		if added > 0 {
			idlePasses = 0
			lastErr = nil
			continue
		}

		idlePasses++
		zlog.Warn().Msgf("pass produced no tracks: pass=%d idle_passes=%d max=%d", pass, idlePasses, b.config.MaxIdlePasses)
		if idlePasses >= b.config.MaxIdlePasses {
			b.metrics.SelectionExhausted(metrics.ModePlaylist)
			if lastErr != nil {
				return nil, errors.Wrapf(errors.Mark(lastErr, ErrSelectionExhausted),
					"no seed artist yielded a track after %d passes", idlePasses)
			}
			return nil, errors.Wrapf(ErrSelectionExhausted, "after %d passes", idlePasses)
		}
	}

	return trackIDs, nil
}
