// Package selection picks the top-ranked track of an artist.
package selection

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/seedmix/internal/app/filter"
	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/domain/track"
)

// Catalog defines the catalog operation needed to select tracks.
type Catalog interface {
	TopTracks(ctx context.Context, artistID artist.ID) ([]track.Track, error)
}

// Selector ranks an artist's top tracks and picks the first one.
type Selector struct {
	catalog Catalog
	spec    filter.Spec
}

// NewSelector creates a new selector.
func NewSelector(catalog Catalog, spec filter.Spec) *Selector {
	return &Selector{
		catalog: catalog,
		spec:    spec,
	}
}

// Spec returns the ranking spec used by the selector.
func (s *Selector) Spec() filter.Spec {
	return s.spec
}

// TopTrack returns the highest-ranked track of the artist.
// ok is false when the artist has no tracks.
func (s *Selector) TopTrack(ctx context.Context, artistID artist.ID) (t track.Track, ok bool, err error) {
	tracks, err := s.catalog.TopTracks(ctx, artistID)
	if err != nil {
		return track.Track{}, false, errors.Wrapf(err, "failed to get top tracks of artist %s", artistID)
	}

	ranked := filter.Rank(tracks, s.spec)
	if len(ranked) == 0 {
		return track.Track{}, false, nil
	}
	return ranked[0], true, nil
}
