// Package track provides the Track domain entity.
package track

import "time"

// AlbumRef references the album a track belongs to.
type AlbumRef struct {
	ID                   string
	Name                 string
	ReleaseDate          time.Time // Zero if the catalog did not report one
	ReleaseDatePrecision string    // "year", "month" or "day"
}

// Track represents a Spotify track entity.
// Contains only information retrieved from Spotify API.
type Track struct {
	ID         string        // Spotify Track ID
	Name       string        // Track name
	Artists    []string      // Artist names
	Album      AlbumRef      // Parent album
	Duration   time.Duration // Track duration
	URL        string        // Spotify URL
	Popularity int           // Popularity score (0-100)
}

// URI returns the playback URI of the track.
func (t Track) URI() string {
	return "spotify:track:" + t.ID
}

// MainArtist returns the first credited artist, or "" if none.
func (t Track) MainArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Queue is an append-only, insertion-ordered sequence of tracks.
// The zero value is an empty queue ready to use.
type Queue struct {
	tracks []Track
}

// Append adds a track to the tail of the queue.
func (q *Queue) Append(t Track) {
	q.tracks = append(q.tracks, t)
}

// Last returns the most recently appended track.
func (q *Queue) Last() (Track, bool) {
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	return q.tracks[len(q.tracks)-1], true
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Tracks returns a copy of the entries in insertion order.
func (q *Queue) Tracks() []Track {
	result := make([]Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// IDs returns the track IDs in insertion order.
func (q *Queue) IDs() []string {
	ids := make([]string, len(q.tracks))
	for i, t := range q.tracks {
		ids[i] = t.ID
	}
	return ids
}
