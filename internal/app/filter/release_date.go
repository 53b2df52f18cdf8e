package filter

import "github.com/osa030/seedmix/internal/domain/track"

// ReleaseDateCriterion ranks recently released tracks first.
// Tracks without a known release date sort after dated ones.
type ReleaseDateCriterion struct{}

func (c *ReleaseDateCriterion) Name() string {
	return "release_date"
}

func (c *ReleaseDateCriterion) Description() string {
	return "Most recently released tracks first (album release date, descending)"
}

func (c *ReleaseDateCriterion) Less(a, b track.Track) bool {
	return a.Album.ReleaseDate.After(b.Album.ReleaseDate)
}

func init() {
	Register("release_date", 20, func() Criterion {
		return &ReleaseDateCriterion{}
	})
}
