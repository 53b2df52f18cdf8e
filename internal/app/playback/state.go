// Package playback provides the live session controller: a single-threaded
// state machine that selects tracks round-robin from seed artists and reacts
// to user commands.
package playback

import (
	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/domain/track"
)

// State represents the playback state.
type State int

const (
	StateIdle       State = iota // Nothing playing (session start or no track found)
	StatePlaying                 // Track is playing
	StatePaused                  // Track is paused
	StateTerminated              // Session ended, absorbing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// SessionState is a snapshot of a live session.
type SessionState struct {
	ID      string
	State   State
	Queue   []track.Track // Selected tracks in start order; replays are not appended
	Cursor  int           // Index of the next seed artist to try
	Paused  bool
	Seeds   []artist.ID
	Current *track.Track // Last started track, nil before the first one
}

// QueueIDs returns the IDs of the queued tracks.
func (s SessionState) QueueIDs() []string {
	ids := make([]string, len(s.Queue))
	for i, t := range s.Queue {
		ids[i] = t.ID
	}
	return ids
}
