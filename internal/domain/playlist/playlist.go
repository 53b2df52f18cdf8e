// Package playlist provides the Playlist domain entity.
package playlist

import "fmt"

// Playlist represents a Spotify playlist materialized by a build.
type Playlist struct {
	ID       string   // Spotify Playlist ID
	Name     string   // Playlist name
	Owner    string   // Owning user ID
	Public   bool     // Visibility
	TrackIDs []string // Tracks in insertion order
}

// URL returns the Spotify URL of the playlist.
func (p *Playlist) URL() string {
	return fmt.Sprintf("https://open.spotify.com/playlist/%s", p.ID)
}

// Len returns the number of tracks in the playlist.
func (p *Playlist) Len() int {
	return len(p.TrackIDs)
}
