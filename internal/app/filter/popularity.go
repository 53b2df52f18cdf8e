package filter

import "github.com/osa030/seedmix/internal/domain/track"

// PopularityCriterion ranks more popular tracks first.
type PopularityCriterion struct{}

func (c *PopularityCriterion) Name() string {
	return "popularity"
}

func (c *PopularityCriterion) Description() string {
	return "Most popular tracks first (catalog popularity score, descending)"
}

func (c *PopularityCriterion) Less(a, b track.Track) bool {
	return a.Popularity > b.Popularity
}

func init() {
	Register("popularity", 10, func() Criterion {
		return &PopularityCriterion{}
	})
}
