package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylist_URL(t *testing.T) {
	p := &Playlist{ID: "37i9dQZF1DXcBWIGoYBM5M"}
	assert.Equal(t, "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", p.URL())
}

func TestPlaylist_Len(t *testing.T) {
	tests := []struct {
		name     string
		trackIDs []string
		expected int
	}{
		{name: "empty playlist", trackIDs: nil, expected: 0},
		{name: "multiple tracks", trackIDs: []string{"track-1", "track-2", "track-1"}, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Playlist{ID: "playlist-1", TrackIDs: tt.trackIDs}
			assert.Equal(t, tt.expected, p.Len())
		})
	}
}
