// Package artist provides the Artist domain entity.
package artist

import "strings"

// ID is a stable catalog key for an artist.
type ID string

// Artist represents a catalog artist.
type Artist struct {
	ID   ID     // Spotify Artist ID
	Name string // Display name
}

// String returns "Name (ID)".
func (a Artist) String() string {
	return a.Name + " (" + string(a.ID) + ")"
}

// IDs returns the IDs of the given artists, preserving order.
func IDs(artists []Artist) []ID {
	ids := make([]ID, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
	}
	return ids
}

// Dedup removes artists whose ID already appeared earlier in the slice.
func Dedup(artists []Artist) []Artist {
	seen := make(map[ID]bool, len(artists))
	result := make([]Artist, 0, len(artists))
	for _, a := range artists {
		if a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		result = append(result, a)
	}
	return result
}

// ParseID extracts an artist ID from a Spotify URI, URL, or bare ID.
func ParseID(input string) ID {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:artist:ARTIST_ID
	if strings.HasPrefix(input, "spotify:artist:") {
		return ID(strings.TrimPrefix(input, "spotify:artist:"))
	}

	// Handle URL format: https://open.spotify.com/artist/ARTIST_ID or https://open.spotify.com/intl-XX/artist/ARTIST_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/artist/") {
		parts := strings.Split(input, "/artist/")
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return ID(strings.TrimRight(id, "/"))
	}

	return ID(input)
}
